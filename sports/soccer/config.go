package soccer

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// Reference link kinds accepted in REFERENCE_CHAIN
const (
	KindLay       = "lay"       // Exchange lay market
	KindExchange  = "exchange"  // Exchange back market
	KindBookmaker = "bookmaker" // Reference bookmaker back market
)

// Kelly probability sources
const (
	ProbabilitySourceRaw  = "raw"  // 1 / reference price, margin included
	ProbabilitySourceFair = "fair" // De-vigged probability
)

// SwedishLicensedBookmakers is the default allow-list for best-price aggregation
var SwedishLicensedBookmakers = []string{
	"unibet",
	"bet365",
	"betsson",
	"nordicbet",
	"leovegas",
	"coolbet",
	"expekt",
	"comeon",
	"casumo",
	"betway",
	"paf",
	"svenskaspel",
	"betfair_ex_eu", // Exchange holds a licence
	"mrgreen",
	"888sport",
	"bethard",
	"snabbare",
	"hajper",
	"speedybet",
	"campobet",
	"betinia",
	"no_account_bet",
}

// DefaultReferenceChain is the reference priority, highest first
var DefaultReferenceChain = []string{
	"betfair_ex_eu:h2h_lay:lay",
	"betfair_ex_eu:h2h:exchange",
	"pinnacle:h2h:bookmaker",
	"betfair_sb_uk:h2h:bookmaker",
}

// archiveLeagues maps feed sport keys to archive league codes
var archiveLeagues = map[string]string{
	"soccer_epl":                "E0",
	"soccer_sweden_allsvenskan": "SWE",
}

// ReferenceLink is one parsed entry of the reference chain
type ReferenceLink struct {
	BookKey   string
	MarketKey string
	Kind      string
}

// Source returns the reference source kind the link yields
func (l ReferenceLink) Source() models.ReferenceSource {
	if l.Kind == KindLay {
		return models.ReferenceSourceLay
	}
	return models.ReferenceSourceBackSharp
}

// String renders the link in book:market:kind form
func (l ReferenceLink) String() string {
	return l.BookKey + ":" + l.MarketKey + ":" + l.Kind
}

// Config holds soccer valuation configuration
type Config struct {
	AllowedBookmakers      []string
	ReferenceChain         []ReferenceLink
	MinEdgePct             float64       // Consumer-side filter only
	DefaultBankroll        float64       // Used when a stake request omits the bankroll
	KellyMultiplier        float64       // Fractional Kelly in (0, 1]
	KellyMaxPct            float64       // Stake cap as % of bankroll
	KellyProbabilitySource string        // raw | fair
	AnalysisMaxAge         time.Duration // Freshness window for cached match context
}

// NewConfig creates a soccer configuration with defaults and environment overrides
func NewConfig() (*Config, error) {
	chain, err := ParseReferenceChain(getEnvStringSlice("REFERENCE_CHAIN", DefaultReferenceChain))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AllowedBookmakers:      getEnvStringSlice("ALLOWED_BOOKMAKERS", SwedishLicensedBookmakers),
		ReferenceChain:         chain,
		MinEdgePct:             getEnvFloat("MIN_EDGE_PCT", 1.5),
		DefaultBankroll:        getEnvFloat("DEFAULT_BANKROLL", 5000),
		KellyMultiplier:        getEnvFloat("KELLY_MULTIPLIER", 0.30),
		KellyMaxPct:            getEnvFloat("KELLY_MAX_PCT", 100),
		KellyProbabilitySource: strings.ToLower(getEnv("KELLY_PROBABILITY_SOURCE", ProbabilitySourceRaw)),
		AnalysisMaxAge:         getEnvDuration("ANALYSIS_MAX_AGE", 6*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot honour
func (c *Config) Validate() error {
	if c.KellyMultiplier <= 0 || c.KellyMultiplier > 1 {
		return fmt.Errorf("kelly multiplier must be in (0, 1], got %.2f", c.KellyMultiplier)
	}
	if c.KellyMaxPct <= 0 || c.KellyMaxPct > 100 {
		return fmt.Errorf("kelly max pct must be in (0, 100], got %.2f", c.KellyMaxPct)
	}
	if c.DefaultBankroll < 0 {
		return fmt.Errorf("default bankroll must be >= 0, got %.2f", c.DefaultBankroll)
	}
	switch c.KellyProbabilitySource {
	case ProbabilitySourceRaw, ProbabilitySourceFair:
	default:
		return fmt.Errorf("unknown kelly probability source %q", c.KellyProbabilitySource)
	}
	if len(c.ReferenceChain) == 0 {
		return fmt.Errorf("reference chain is empty")
	}
	return nil
}

// ArchiveLeague returns the archive league code for a feed sport key
func ArchiveLeague(sportKey string) (string, bool) {
	code, ok := archiveLeagues[sportKey]
	return code, ok
}

// ParseReferenceChain parses book:market:kind entries in priority order
func ParseReferenceChain(entries []string) ([]ReferenceLink, error) {
	links := make([]ReferenceLink, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid reference link %q: want book:market:kind", entry)
		}

		link := ReferenceLink{BookKey: parts[0], MarketKey: parts[1], Kind: parts[2]}
		switch link.Kind {
		case KindLay, KindExchange, KindBookmaker:
		default:
			return nil, fmt.Errorf("invalid reference link %q: unknown kind %q", entry, link.Kind)
		}
		if link.BookKey == "" || link.MarketKey == "" {
			return nil, fmt.Errorf("invalid reference link %q: empty book or market", entry)
		}

		links = append(links, link)
	}
	return links, nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
