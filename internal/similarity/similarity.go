// Package similarity scores how alike two asset descriptions are. The
// resolution order and blend weights below were tuned against real-world
// messy upload data; changing them changes ranking behavior and requires
// re-validation of the matching scenarios.
package similarity

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"
)

const (
	tokenSetWeight    = 0.5
	trigramWeight     = 0.3
	levenshteinWeight = 0.2

	wholeWordScore   = 0.92
	containmentFloor = 0.75
	containmentScale = 0.95
	subsetDiscount   = 0.9
	minTokenLength   = 3
)

// strategy attempts to resolve a similarity score for a pair of prepared
// strings. The boolean reports whether the strategy applies; the first
// applicable strategy wins.
type strategy func(a, b string) (float64, bool)

var strategies = []strategy{
	exactMatch,
	wholeWordMatch,
	substringMatch,
}

var trigramDice = func() *metrics.SorensenDice {
	m := metrics.NewSorensenDice()
	m.CaseSensitive = false
	m.NgramSize = 3
	return m
}()

// Score returns a similarity in [0,1] between two strings. Equal strings
// score 1.0; if either is empty the score is 0.
func Score(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))

	if a == "" || b == "" {
		return 0
	}

	for _, s := range strategies {
		if score, ok := s(a, b); ok {
			return score
		}
	}

	return blended(a, b)
}

// exactMatch handles case-insensitive equality.
func exactMatch(a, b string) (float64, bool) {
	if a == b {
		return 1.0, true
	}
	return 0, false
}

// wholeWordMatch handles single-token uploads like "Chiller" matching
// "Air Cooled Chiller".
func wholeWordMatch(a, b string) (float64, bool) {
	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)

	if len(aTokens) == 1 && containsToken(bTokens, aTokens[0]) {
		return wholeWordScore, true
	}
	if len(bTokens) == 1 && containsToken(aTokens, bTokens[0]) {
		return wholeWordScore, true
	}
	return 0, false
}

// substringMatch handles containment in either direction, scaled by the
// length ratio with a floor.
func substringMatch(a, b string) (float64, bool) {
	if !strings.Contains(a, b) && !strings.Contains(b, a) {
		return 0, false
	}

	shorter, longer := len(a), len(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}

	score := float64(shorter) / float64(longer) * containmentScale
	if score < containmentFloor {
		score = containmentFloor
	}
	return score, true
}

// blended combines token-set, trigram and edit-distance measures with fixed
// weights (0.5/0.3/0.2).
func blended(a, b string) float64 {
	tokenSet := tokenSetSimilarity(a, b)
	trigram := strutil.Similarity(a, b, trigramDice)
	edit := levenshteinSimilarity(a, b)

	return tokenSetWeight*tokenSet + trigramWeight*trigram + levenshteinWeight*edit
}

// tokenSetSimilarity is Jaccard over tokens longer than 2 characters,
// boosted by containment of the smaller token set at a discount; the larger
// of the two wins.
func tokenSetSimilarity(a, b string) float64 {
	aSet := tokenSet(a)
	bSet := tokenSet(b)

	if len(aSet) == 0 || len(bSet) == 0 {
		return 0
	}

	intersection := 0
	for token := range aSet {
		if _, ok := bSet[token]; ok {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}

	union := len(aSet) + len(bSet) - intersection
	jaccard := float64(intersection) / float64(union)

	smaller := len(aSet)
	if len(bSet) < smaller {
		smaller = len(bSet)
	}
	containment := float64(intersection) / float64(smaller) * subsetDiscount

	if containment > jaccard {
		return containment
	}
	return jaccard
}

func levenshteinSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-distance) / float64(maxLen)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(s) {
		if len(token) >= minTokenLength {
			set[token] = struct{}{}
		}
	}
	return set
}

func containsToken(tokens []string, want string) bool {
	for _, token := range tokens {
		if token == want {
			return true
		}
	}
	return false
}
