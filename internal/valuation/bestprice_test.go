package valuation_test

import (
	"testing"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/valuation"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

func TestBestPrices(t *testing.T) {
	snap := snapshot(
		bookmaker("unibet", "Unibet", models.MarketKeyH2H, 2.20, 3.40, 3.50),
		bookmaker("bet365", "Bet365", models.MarketKeyH2H, 2.25, 3.30, 3.60),
		bookmaker("pinnacle", "Pinnacle", models.MarketKeyH2H, 2.40, 3.50, 3.70),
	)

	tests := []struct {
		name     string
		allowed  []string
		wantHome models.BestQuote
		wantDraw models.BestQuote
		wantAway models.BestQuote
	}{
		{
			name:     "All bookmakers eligible",
			allowed:  nil,
			wantHome: models.BestQuote{Price: 2.40, Bookmaker: "Pinnacle", BookKey: "pinnacle"},
			wantDraw: models.BestQuote{Price: 3.50, Bookmaker: "Pinnacle", BookKey: "pinnacle"},
			wantAway: models.BestQuote{Price: 3.70, Bookmaker: "Pinnacle", BookKey: "pinnacle"},
		},
		{
			name:     "Unlicensed bookmaker filtered",
			allowed:  []string{"unibet", "bet365"},
			wantHome: models.BestQuote{Price: 2.25, Bookmaker: "Bet365", BookKey: "bet365"},
			wantDraw: models.BestQuote{Price: 3.40, Bookmaker: "Unibet", BookKey: "unibet"},
			wantAway: models.BestQuote{Price: 3.60, Bookmaker: "Bet365", BookKey: "bet365"},
		},
		{
			name:     "Everything filtered",
			allowed:  []string{"svenskaspel"},
			wantHome: models.BestQuote{Bookmaker: models.NoBookmakerLabel},
			wantDraw: models.BestQuote{Bookmaker: models.NoBookmakerLabel},
			wantAway: models.BestQuote{Bookmaker: models.NoBookmakerLabel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := valuation.BestPrices(snap, valuation.NewAllowList(tt.allowed))

			if best.Home != tt.wantHome {
				t.Errorf("Home = %+v, want %+v", best.Home, tt.wantHome)
			}
			if best.Draw != tt.wantDraw {
				t.Errorf("Draw = %+v, want %+v", best.Draw, tt.wantDraw)
			}
			if best.Away != tt.wantAway {
				t.Errorf("Away = %+v, want %+v", best.Away, tt.wantAway)
			}
		})
	}
}

func TestBestPrices_TieKeepsFirstBookmaker(t *testing.T) {
	snap := snapshot(
		bookmaker("unibet", "Unibet", models.MarketKeyH2H, 2.30, 3.40, 3.50),
		bookmaker("betsson", "Betsson", models.MarketKeyH2H, 2.30, 3.40, 3.50),
	)

	best := valuation.BestPrices(snap, nil)
	if best.Home.Bookmaker != "Unibet" || best.Draw.Bookmaker != "Unibet" || best.Away.Bookmaker != "Unibet" {
		t.Errorf("Expected first bookmaker to win ties, got %+v", best)
	}
}

func TestBestPrices_IgnoresMalformedAndForeignQuotes(t *testing.T) {
	odd := bookmaker("betsson", "Betsson", models.MarketKeyH2H, 0, 0, 0)
	odd.Markets[0].Outcomes = []models.OutcomePrice{
		{Name: homeTeam, Price: -3.0},
		{Name: "draw", Price: 9.0},       // Case-sensitive label
		{Name: "Arsenal FC", Price: 9.0}, // Not the fixture's own name
		{Name: awayTeam, Price: 1.0},
	}

	snap := snapshot(
		odd,
		bookmaker("unibet", "Unibet", models.MarketKeyH2HLay, 5.0, 5.0, 5.0), // Lay market is not backable
		bookmaker("bet365", "Bet365", models.MarketKeyH2H, 2.10, 0, 3.20),
	)

	best := valuation.BestPrices(snap, nil)

	if best.Home.Price != 2.10 || best.Home.Bookmaker != "Bet365" {
		t.Errorf("Home = %+v, want 2.10 @ Bet365", best.Home)
	}
	if best.Draw.Price != 0 || best.Draw.Bookmaker != models.NoBookmakerLabel {
		t.Errorf("Draw = %+v, want absent", best.Draw)
	}
	if best.Away.Price != 3.20 {
		t.Errorf("Away = %+v, want 3.20", best.Away)
	}
}

func TestBestPrices_Dominance(t *testing.T) {
	books := []models.Bookmaker{
		bookmaker("unibet", "Unibet", models.MarketKeyH2H, 2.05, 3.60, 3.30),
		bookmaker("bet365", "Bet365", models.MarketKeyH2H, 2.15, 3.25, 3.45),
		bookmaker("betsson", "Betsson", models.MarketKeyH2H, 2.10, 3.70, 3.10),
		bookmaker("paf", "Paf", models.MarketKeyH2H, 1.95, 3.55, 3.80),
	}
	snap := snapshot(books...)

	allowLists := [][]string{nil, {"unibet"}, {"bet365", "paf"}, {"betsson", "unibet", "paf"}}
	for _, keys := range allowLists {
		allowed := valuation.NewAllowList(keys)
		best := valuation.BestPrices(snap, allowed)

		for _, outcome := range models.Outcomes {
			highest := 0.0
			for _, b := range books {
				if !allowed.Allows(b.Key) {
					continue
				}
				for _, q := range b.Markets[0].Outcomes {
					if o, _ := snap.OutcomeFor(q.Name); o == outcome && q.Price > highest {
						highest = q.Price
					}
				}
			}

			if got := best.Get(outcome).Price; got != highest {
				t.Errorf("allow-list %v: %s best = %.2f, want max %.2f", keys, outcome, got, highest)
			}
		}
	}
}
