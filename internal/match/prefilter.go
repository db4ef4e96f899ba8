package match

import (
	"strings"

	"github.com/buildscope/assetmatch/internal/model"
	"github.com/buildscope/assetmatch/internal/normalize"
)

// prefilterFallbackPercent is the safety valve: when token filtering leaves
// fewer than this percentage of the catalog, the filter is discarded and the
// full catalog is scored instead.
const prefilterFallbackPercent = 5

// Candidates reduces the catalog to entries sharing tokens with the search
// terms before the expensive scoring pass. A catalog entry survives when any
// of its name or description tokens intersects the search token set, or has
// a substring relationship with any search token.
func Candidates(terms []string, catalog []model.CanonicalAssetRecord) []model.CanonicalAssetRecord {
	searchTokens := collectTokens(terms)
	if len(searchTokens) == 0 {
		return catalog
	}

	filtered := make([]model.CanonicalAssetRecord, 0, len(catalog))
	for _, record := range catalog {
		if matchesTokens(record, searchTokens) {
			filtered = append(filtered, record)
		}
	}

	// Over-aggressive filtering silently hides the correct match; fall back
	// to the full catalog when the subset is too small.
	if len(filtered)*100 < len(catalog)*prefilterFallbackPercent {
		return catalog
	}

	return filtered
}

func matchesTokens(record model.CanonicalAssetRecord, searchTokens []string) bool {
	nameTokens := significantTokens(record.AssetName)

	for _, token := range nameTokens {
		for _, search := range searchTokens {
			if token == search ||
				strings.Contains(token, search) ||
				strings.Contains(search, token) {
				return true
			}
		}
	}

	for _, token := range significantTokens(record.Description) {
		for _, search := range searchTokens {
			if token == search {
				return true
			}
		}
	}

	return false
}

// collectTokens builds the search token set (tokens longer than 2 chars)
// from the normalized text plus every expanded abbreviation term.
func collectTokens(terms []string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, term := range terms {
		for _, token := range significantTokens(term) {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func significantTokens(text string) []string {
	var tokens []string
	for _, token := range normalize.Tokens(text) {
		if len(token) > 2 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
