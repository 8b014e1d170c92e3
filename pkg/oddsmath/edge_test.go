package oddsmath_test

import (
	"math"
	"testing"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/oddsmath"
)

func TestEdgePercent(t *testing.T) {
	tests := []struct {
		name      string
		best      float64
		reference float64
		wantEdge  float64
	}{
		{"Equal prices", 2.50, 2.50, 0},
		{"Best above fair", 2.30, 2.10606, 9.21},
		{"Best below reference", 1.90, 2.00, -5.0},
		{"No reference", 2.30, 0, 0},
		{"No best price", 0, 2.10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := oddsmath.EdgePercent(tt.best, tt.reference)
			if math.Abs(got-tt.wantEdge) > 0.01 {
				t.Errorf("EdgePercent(%f, %f) = %f, want %f", tt.best, tt.reference, got, tt.wantEdge)
			}
		})
	}
}

func TestEdgePercent_SignConsistency(t *testing.T) {
	for ref := 1.05; ref < 20; ref += 0.37 {
		if edge := oddsmath.EdgePercent(ref, ref); edge != 0 {
			t.Errorf("edge for equal prices %.2f = %f, want 0", ref, edge)
		}
		if edge := oddsmath.EdgePercent(ref+0.01, ref); edge <= 0 {
			t.Errorf("edge for %.2f over %.2f = %f, want > 0", ref+0.01, ref, edge)
		}
	}
}

func TestIsArbitrage(t *testing.T) {
	tests := []struct {
		name       string
		prices     []float64
		wantArb    bool
		wantMargin float64
		wantSum    float64
	}{
		{
			name:       "No arbitrage",
			prices:     []float64{2.10, 3.40, 3.80},
			wantArb:    false,
			wantMargin: -3.35,
			wantSum:    1.0335,
		},
		{
			name:       "Arbitrage",
			prices:     []float64{2.10, 3.60, 4.20},
			wantArb:    true,
			wantMargin: 0.79,
			wantSum:    0.9921,
		},
		{
			name:    "Missing draw price",
			prices:  []float64{2.10, 0, 4.20},
			wantArb: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isArb, margin, sum := oddsmath.IsArbitrage(tt.prices)

			if isArb != tt.wantArb {
				t.Errorf("isArb = %v, want %v", isArb, tt.wantArb)
			}
			if math.Abs(margin-tt.wantMargin) > 0.01 {
				t.Errorf("margin = %f, want %f", margin, tt.wantMargin)
			}
			if math.Abs(sum-tt.wantSum) > 0.0001 {
				t.Errorf("inverse sum = %f, want %f", sum, tt.wantSum)
			}
		})
	}
}

func TestArbitrageStakes(t *testing.T) {
	prices := []float64{2.10, 3.60, 4.20}
	stakes := oddsmath.ArbitrageStakes(prices, 1000)
	if len(stakes) != 3 {
		t.Fatalf("expected 3 stakes, got %d", len(stakes))
	}

	// Every leg should return roughly the same amount
	first := stakes[0] * prices[0]
	for i := range stakes {
		if ret := stakes[i] * prices[i]; math.Abs(ret-first) > 0.05 {
			t.Errorf("leg %d returns %.2f, leg 0 returns %.2f", i, ret, first)
		}
	}

	if got := oddsmath.ArbitrageStakes([]float64{2.10, 0, 4.20}, 1000); got != nil {
		t.Errorf("expected nil stakes for incomplete prices, got %v", got)
	}
}

func TestExpectedROI(t *testing.T) {
	if got := oddsmath.ExpectedROI(0.50, 2.20); math.Abs(got-0.10) > 1e-9 {
		t.Errorf("ExpectedROI(0.50, 2.20) = %f, want 0.10", got)
	}
	if got := oddsmath.ExpectedROI(0.50, 1.0); got != 0 {
		t.Errorf("ExpectedROI with absent price = %f, want 0", got)
	}
}
