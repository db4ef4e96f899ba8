// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/buildscope/assetmatch/internal/model"
)

// CatalogStore provides read access to the canonical asset catalog.
type CatalogStore interface {
	FetchCatalog(ctx context.Context) ([]model.CanonicalAssetRecord, error)
	FetchCategories(ctx context.Context) ([]string, error)
	FetchByIDs(ctx context.Context, ids []string) (map[string]model.CanonicalAssetRecord, error)
}

// CorrectionStore persists the per-organization correction history.
type CorrectionStore interface {
	// LoadCorrections returns corrections for an organization ordered by
	// frequency descending, capped by the store.
	LoadCorrections(ctx context.Context, organizationID string) ([]model.LearningCorrection, error)
	// UpsertCorrection inserts a correction at frequency 1, or increments
	// frequency and refreshes last_used when the (org, text, asset) triple
	// already exists.
	UpsertCorrection(ctx context.Context, organizationID, uploadedText, normalizedText, assetID string) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	CatalogStore
	CorrectionStore

	// Catalog management
	SaveAssets(ctx context.Context, assets []model.CanonicalAssetRecord) error
	CountAssets(ctx context.Context) (int, error)

	// Correction inspection
	CorrectionCount(ctx context.Context, organizationID string) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
