package model

// MatchMethod indicates how a suggested match was produced.
type MatchMethod string

// Match method constants.
const (
	// MethodScored indicates the suggestion came from the full scoring pipeline.
	MethodScored MatchMethod = "SCORED"
	// MethodLearned indicates a prior human correction short-circuited scoring.
	MethodLearned MatchMethod = "LEARNED"
	// MethodNone indicates no candidate cleared the confidence floor.
	MethodNone MatchMethod = "NONE"
)

// ScoreBreakdown holds the per-component sub-scores for one candidate.
// Each component is in [0,1]; LearningBoost may push the weighted total
// above 1.0 before the confidence clamp.
type ScoreBreakdown struct {
	NameScore         float64
	CategoryScore     float64
	BrandScore        float64
	ModelScore        float64
	StandardCodeScore float64
	LearningBoost     float64
}

// MatchExplanation describes why a suggestion was (or was not) made.
type MatchExplanation struct {
	Method    MatchMethod
	Note      string
	Breakdown *ScoreBreakdown
}

// AssetMatch is the resolution result for one uploaded row. It is never
// mutated after creation; a changed user selection is a new in-memory
// choice, not an edit of the match record.
type AssetMatch struct {
	Row                UploadedAssetRow
	SuggestedMatch     *CanonicalAssetRecord
	AlternativeMatches []CanonicalAssetRecord
	Confidence         int // Integer percentage in [0,100]
	Explanation        MatchExplanation
}

// Matched reports whether the engine produced a confident suggestion.
func (m *AssetMatch) Matched() bool {
	return m.SuggestedMatch != nil
}
