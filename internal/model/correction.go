package model

import "time"

// LearningCorrection records a human-confirmed mapping from uploaded text to
// a canonical asset. Corrections are never deleted; their influence decays
// once LastUsed falls outside the decay window.
type LearningCorrection struct {
	LastUsed       time.Time
	OrganizationID string
	UploadedText   string
	NormalizedText string
	AssetID        string
	Frequency      int
}
