package normalize

import (
	"sort"
	"strings"
)

var expansionKeys []string

func init() {
	expansionKeys = make([]string, 0, len(abbreviationExpansions))
	for k := range abbreviationExpansions {
		expansionKeys = append(expansionKeys, k)
	}
	sort.Strings(expansionKeys)
}

// Expand returns the ordered set of search terms for an uploaded
// description: the original text and its normalized form first, followed by
// full-form synonyms for any recognized abbreviation. Containment only
// triggers an expansion for keys longer than 2 characters, so tiny fragments
// like "WC" or "DB" never match mid-word.
func Expand(text string) []string {
	normalized := Normalize(text)

	terms := make([]string, 0, 4)
	seen := make(map[string]struct{})

	appendTerm := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}

	appendTerm(text)
	appendTerm(normalized)

	for _, key := range expansionKeys {
		switch {
		case normalized == key:
		case len(key) > 2 && strings.Contains(normalized, key):
		default:
			continue
		}
		for _, expansion := range abbreviationExpansions[key] {
			appendTerm(expansion)
		}
	}

	return terms
}
