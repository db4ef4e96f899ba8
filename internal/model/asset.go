// Package model defines the core domain models used throughout the application.
package model

// UploadedAssetRow is one row of a user-supplied inventory upload.
// Rows are immutable once parsed and are not persisted by the engine.
type UploadedAssetRow struct {
	AssetType string // Raw free-text asset description (required)
	Brand     string // Optional manufacturer/brand
	Model     string // Optional model designation
	Quantity  int
	RowIndex  int // Stable position in the upload for traceability
}

// MaintenanceTask is a scheduled task attached to a canonical asset.
type MaintenanceTask struct {
	Name         string
	Frequency    string
	HoursPerYear float64
}

// CanonicalAssetRecord is one entry in the industry-standard asset catalog.
// Records are owned by the catalog store and read-only from the engine's
// perspective.
type CanonicalAssetRecord struct {
	ID           string
	StandardCode string
	AssetName    string
	Category     string
	Description  string
	Tasks        []MaintenanceTask
}
