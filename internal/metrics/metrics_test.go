package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

func TestRecordValuation(t *testing.T) {
	m := metrics.New()

	v := models.Valuation{
		SportKey: "soccer_epl",
		Edges: models.EdgeResult{
			Home: models.OutcomeEdge{EdgePercent: 9.2, Method: models.EdgeMethodFair},
			Draw: models.OutcomeEdge{EdgePercent: 1.0, Method: models.EdgeMethodFair},
			Away: models.OutcomeEdge{EdgePercent: -3.0, Method: models.EdgeMethodFair},
		},
		Arbitrage: models.ArbitrageResult{IsArbitrage: true},
	}

	m.RecordValuation(v, 1.5, 2*time.Millisecond)

	if got := testutil.ToFloat64(m.ValuationsTotal.WithLabelValues("soccer_epl")); got != 1 {
		t.Errorf("valuations_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ValueOutcomesTotal.WithLabelValues("soccer_epl", "home", "fair")); got != 1 {
		t.Errorf("home value outcomes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ValueOutcomesTotal.WithLabelValues("soccer_epl", "draw", "fair")); got != 0 {
		t.Errorf("draw below threshold counted: %v", got)
	}
	if got := testutil.ToFloat64(m.ArbitragesTotal.WithLabelValues("soccer_epl")); got != 1 {
		t.Errorf("arbitrages_total = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.RecordError(metrics.StageDecode)
	m.SetClients(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`value_engine_valuation_errors_total{stage="decode"} 1`,
		"value_engine_ws_clients 3",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
