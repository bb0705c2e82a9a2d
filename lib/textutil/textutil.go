package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/cases"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// FoldKey is the key names are compared and sorted by: unicode case folded,
// trimmed, with inner whitespace collapsed into a single space.
func FoldKey(name string) string {
	name = strings.TrimSpace(name)
	name = whitespaceRegex.ReplaceAllString(name, " ")
	// a Caser keeps state, so one per call
	return cases.Fold().String(name)
}

// NormalizeName folds name and removes all of its whitespace.
func NormalizeName(name string) string {
	return whitespaceRegex.ReplaceAllString(FoldKey(name), "")
}

// ClosestMatch returns the candidate most similar to name using Jaro-Winkler
// similarity on normalized names. ok is false if there are no candidates.
func ClosestMatch(name string, candidates []string) (best string, ok bool) {
	target := NormalizeName(name)

	var bestScore float64 = -1
	for _, c := range candidates {
		score := matchr.JaroWinkler(target, NormalizeName(c), false)
		if score > bestScore {
			bestScore = score
			best = c
			ok = true
		}
	}
	return best, ok
}
