package match

import (
	"math"
	"sort"
	"strings"

	"github.com/buildscope/assetmatch/internal/model"
	"github.com/buildscope/assetmatch/internal/normalize"
	"github.com/buildscope/assetmatch/internal/similarity"
)

// Sub-score weights. The weighted total may exceed 1.0 once the learning
// boost is added; displayed confidence is clamped to 100.
const (
	nameWeight         = 0.75
	categoryWeight     = 0.10
	brandWeight        = 0.05
	modelWeight        = 0.03
	standardCodeWeight = 0.15
)

// Booster supplies the learning boost for a (text, asset) pair. A nil
// Booster scores every pair as 0.
type Booster interface {
	Boost(uploadedText, assetID string) float64
}

// Config holds configuration options for the scorer.
type Config struct {
	// MinScore is the confidence floor below which candidates are discarded.
	MinScore float64
	// MaxAlternatives bounds the alternative list returned with each match.
	MaxAlternatives int
}

// DefaultConfig returns the default scorer configuration.
func DefaultConfig() Config {
	return Config{
		MinScore:        0.30,
		MaxAlternatives: 14,
	}
}

// Scorer resolves uploaded rows against a catalog.
type Scorer struct {
	booster Booster
	cfg     Config
}

// NewScorer creates a scorer with the default configuration.
func NewScorer(booster Booster) *Scorer {
	return NewScorerWithConfig(booster, DefaultConfig())
}

// NewScorerWithConfig creates a scorer with custom configuration.
func NewScorerWithConfig(booster Booster, cfg Config) *Scorer {
	if cfg.MinScore <= 0 {
		cfg.MinScore = DefaultConfig().MinScore
	}
	if cfg.MaxAlternatives <= 0 {
		cfg.MaxAlternatives = DefaultConfig().MaxAlternatives
	}
	return &Scorer{booster: booster, cfg: cfg}
}

type scoredCandidate struct {
	record    model.CanonicalAssetRecord
	breakdown model.ScoreBreakdown
	total     float64
}

// Resolve scores every prefiltered candidate for a row and assembles the
// ranked match result. Scoring never fails: an empty or hopeless row yields
// a match with a nil suggestion and confidence 0.
func (s *Scorer) Resolve(row model.UploadedAssetRow, catalog []model.CanonicalAssetRecord) model.AssetMatch {
	terms := normalize.Expand(row.AssetType)
	candidates := Candidates(terms, catalog)

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, record := range candidates {
		// Hard veto: incompatible categories score 0 regardless of text.
		if !IsCompatible(row.AssetType, record.Category) {
			continue
		}

		breakdown := s.scoreCandidate(row, terms, record)
		total := nameWeight*breakdown.NameScore +
			categoryWeight*breakdown.CategoryScore +
			brandWeight*breakdown.BrandScore +
			modelWeight*breakdown.ModelScore +
			standardCodeWeight*breakdown.StandardCodeScore +
			breakdown.LearningBoost

		if total < s.cfg.MinScore {
			continue
		}

		scored = append(scored, scoredCandidate{
			record:    record,
			breakdown: breakdown,
			total:     total,
		})
	}

	if len(scored) == 0 {
		return model.AssetMatch{
			Row:        row,
			Confidence: 0,
			Explanation: model.MatchExplanation{
				Method: model.MethodNone,
				Note:   "no candidate cleared the confidence floor",
			},
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].total != scored[j].total {
			return scored[i].total > scored[j].total
		}
		return scored[i].record.AssetName < scored[j].record.AssetName
	})

	top := scored[0]
	suggested := top.record
	breakdown := top.breakdown

	alternatives := make([]model.CanonicalAssetRecord, 0, s.cfg.MaxAlternatives)
	for _, candidate := range scored[1:] {
		if len(alternatives) == s.cfg.MaxAlternatives {
			break
		}
		if candidate.record.ID == suggested.ID {
			continue
		}
		alternatives = append(alternatives, candidate.record)
	}

	return model.AssetMatch{
		Row:                row,
		SuggestedMatch:     &suggested,
		AlternativeMatches: alternatives,
		Confidence:         clampConfidence(top.total),
		Explanation: model.MatchExplanation{
			Method:    model.MethodScored,
			Breakdown: &breakdown,
		},
	}
}

func (s *Scorer) scoreCandidate(row model.UploadedAssetRow, terms []string, record model.CanonicalAssetRecord) model.ScoreBreakdown {
	breakdown := model.ScoreBreakdown{
		NameScore:         maxTermScore(terms, record.AssetName),
		CategoryScore:     categoryScore(terms, record.Category),
		StandardCodeScore: standardCodeScore(row.AssetType, record.StandardCode),
	}

	if brand := row.Brand; !isPlaceholder(brand) {
		breakdown.BrandScore = fieldScore(brand, record)
	}
	if modelName := row.Model; !isPlaceholder(modelName) {
		breakdown.ModelScore = fieldScore(modelName, record)
	}
	if s.booster != nil {
		breakdown.LearningBoost = s.booster.Boost(row.AssetType, record.ID)
	}

	return breakdown
}

// maxTermScore is the best similarity between any expanded search term and
// the target text.
func maxTermScore(terms []string, target string) float64 {
	best := 0.0
	for _, term := range terms {
		if score := similarity.Score(term, target); score > best {
			best = score
		}
	}
	return best
}

// categoryScore treats alias-equivalent categories as identical before
// falling back to text similarity.
func categoryScore(terms []string, category string) float64 {
	candidate, candidateKnown := CanonicalCategory(category)

	best := 0.0
	for _, term := range terms {
		if candidateKnown {
			if termDomain, ok := CanonicalCategory(term); ok && termDomain == candidate {
				return 1.0
			}
		}
		if score := similarity.Score(term, category); score > best {
			best = score
		}
	}
	return best
}

// standardCodeScore is 1.0 when the uploaded text equals, contains, or is a
// hyphen-segment of the candidate's standard code.
func standardCodeScore(uploadedText, code string) float64 {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0
	}

	raw := strings.ToUpper(strings.TrimSpace(uploadedText))
	normalized := normalize.Normalize(uploadedText)

	for _, text := range []string{raw, normalized} {
		if text == "" {
			continue
		}
		if text == code || strings.Contains(text, code) {
			return 1.0
		}
		for _, segment := range strings.Split(code, "-") {
			if segment != "" && text == segment {
				return 1.0
			}
		}
	}

	return 0
}

func fieldScore(value string, record model.CanonicalAssetRecord) float64 {
	nameScore := similarity.Score(value, record.AssetName)
	descScore := similarity.Score(value, record.Description)
	if descScore > nameScore {
		return descScore
	}
	return nameScore
}

var placeholders = map[string]struct{}{
	"":        {},
	"N/A":     {},
	"NA":      {},
	"NONE":    {},
	"NIL":     {},
	"-":       {},
	"UNKNOWN": {},
}

func isPlaceholder(value string) bool {
	_, ok := placeholders[strings.ToUpper(strings.TrimSpace(value))]
	return ok
}

func clampConfidence(total float64) int {
	confidence := int(math.Round(total * 100))
	if confidence > 100 {
		return 100
	}
	if confidence < 0 {
		return 0
	}
	return confidence
}
