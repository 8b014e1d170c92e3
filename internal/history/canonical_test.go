package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/history"
)

// Known live-feed / archive alias pairs that must land on the same canonical name
var aliasPairs = []struct {
	live    string
	archive string
	want    string
}{
	{"Arsenal FC", "Arsenal", "Arsenal"},
	{"AFC Bournemouth", "Bournemouth", "Bournemouth"},
	{"Manchester United", "Manchester Utd", "Manchester Utd"},
	{"Man United", "Man Utd", "Man Utd"},
	{"Malmö FF", "Malmo FF", "Malmo"},
	{"Djurgårdens IF", "Djurgarden IF", ""}, // Genitive s is not stripped
	{"IFK Göteborg", "IFK Goteborg", "IFK Goteborg"},
	{"BK Häcken", "Hacken BK", ""}, // Leading BK is not stripped
	{"Varbergs BoIS FC", "Varbergs BoIS", "Varbergs"},
	{"Mjällby AIF", "Mjallby AIF", "Mjallby AIF"},
	{"  Chelsea  ", "Chelsea", "Chelsea"},
}

func TestCanonicalize_AliasPairs(t *testing.T) {
	for _, tt := range aliasPairs {
		t.Run(tt.live, func(t *testing.T) {
			live := history.Canonicalize(tt.live)
			archive := history.Canonicalize(tt.archive)

			if tt.want == "" {
				// Not bridged by the heuristic; left for manual curation
				assert.NotEqual(t, live, archive)
				return
			}

			assert.Equal(t, tt.want, live)
			assert.Equal(t, tt.want, archive)
		})
	}
}

func TestCanonicalize_KnownCollisions(t *testing.T) {
	assert.Equal(t, history.Canonicalize("AFC Bournemouth"), history.Canonicalize("Bournemouth FC"))
	assert.Equal(t, history.Canonicalize("Hammarby IF"), history.Canonicalize("Hammarby IS"))
}

func TestCanonicalize_Idempotent(t *testing.T) {
	names := []string{"Arsenal FC", "AFC Wimbledon", "Newcastle United", "Örebro SK", "IF Elfsborg", "Malmö FF"}
	for _, name := range names {
		once := history.Canonicalize(name)
		assert.Equal(t, once, history.Canonicalize(once), "canonicalizing %q twice", name)
	}
}
