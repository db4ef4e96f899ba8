// Package normalize implements the deterministic text cleanup and
// abbreviation expansion applied to uploaded asset descriptions before
// matching.
package normalize

import (
	"regexp"
	"sort"
	"strings"
)

type typoRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var (
	typoRules []typoRule

	// Numeric capacity suffixes like "500 KW", "1.5TR", "2000 CFM".
	unitSuffixPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:KW|HP|TR|TONS|TON|CFM|LPM|GPM|KVA|BTU|W)\b`)

	// Trailing instance or position codes like "-01", "/04", "-UNIT2".
	instanceCodePattern = regexp.MustCompile(`[-/]\s*(?:UNIT\s*)?\d+\s*$`)

	// Embedded alphanumeric model codes like "FCU12", "XR1500-2A".
	modelCodePattern = regexp.MustCompile(`\b[A-Z]{2,}\d+(?:-\d+)?[A-Z]*\b`)

	// Anything that is not a letter, digit or space collapses to one space.
	punctuationPattern = regexp.MustCompile(`[^A-Z0-9]+`)
)

func init() {
	// Deterministic rule order regardless of map iteration.
	keys := make([]string, 0, len(typoCorrections))
	for k := range typoCorrections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	typoRules = make([]typoRule, 0, len(keys))
	for _, k := range keys {
		typoRules = append(typoRules, typoRule{
			pattern:     regexp.MustCompile(`\b` + k + `\b`),
			replacement: typoCorrections[k],
		})
	}
}

// Normalize applies the full cleanup pipeline to an uploaded asset
// description. It is pure and idempotent: Normalize(Normalize(x)) ==
// Normalize(x). No step reorders words.
func Normalize(text string) string {
	s := strings.ToUpper(strings.TrimSpace(text))
	if s == "" {
		return ""
	}

	for _, rule := range typoRules {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}

	// Collapsing punctuation can expose new matches ("PUMP 5.5-KW" becomes
	// "PUMP 5 5 KW", where "5 KW" is a capacity suffix), so the strip passes
	// run until the text stops changing.
	for {
		next := unitSuffixPattern.ReplaceAllString(s, " ")
		next = instanceCodePattern.ReplaceAllString(next, " ")
		next = stripModelCodes(next)
		next = punctuationPattern.ReplaceAllString(next, " ")
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}

// stripModelCodes removes embedded model codes while leaving recognized
// abbreviations like "FM200" in place so they can still expand.
func stripModelCodes(s string) string {
	return modelCodePattern.ReplaceAllStringFunc(s, func(code string) string {
		if _, ok := abbreviationExpansions[code]; ok {
			return code
		}
		return " "
	})
}

// Tokens splits normalized text into its whitespace-delimited tokens.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}
