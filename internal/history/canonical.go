package history

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// clubSuffixes are stripped from the end of a name, in order
var clubSuffixes = []string{" FC", " FF", " IF", " IS", " BK", " BoIS"}

const (
	clubPrefix   = "AFC "
	unitedSuffix = " United"
	utdSuffix    = " Utd"
)

// Canonicalize maps a team name from either the live feed or the archive onto a shared form.
//
// Rules, applied in order:
//   - fold accents (Malmö → Malmo)
//   - strip trailing FC, FF, IF, IS, BK, BoIS
//   - strip leading AFC
//   - rewrite trailing United as Utd
//
// The mapping is lossy and not bijective. Known collisions: "AFC Bournemouth" and
// "Bournemouth FC" both become "Bournemouth"; "Hammarby IF" and "Hammarby IS" both become
// "Hammarby".
func Canonicalize(name string) string {
	name = foldAccents(strings.TrimSpace(name))

	for _, suffix := range clubSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	name = strings.TrimPrefix(name, clubPrefix)
	if strings.HasSuffix(name, unitedSuffix) {
		name = strings.TrimSuffix(name, unitedSuffix) + utdSuffix
	}

	return strings.TrimSpace(name)
}

func foldAccents(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		return name
	}
	return folded
}
