// Package engine implements the resolution service that orchestrates
// normalization, candidate selection, scoring and learning for uploaded
// asset batches.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/buildscope/assetmatch/internal/common"
	"github.com/buildscope/assetmatch/internal/learning"
	"github.com/buildscope/assetmatch/internal/match"
	"github.com/buildscope/assetmatch/internal/model"
	"github.com/buildscope/assetmatch/internal/service"
	"github.com/google/uuid"
)

// ResolutionEngine orchestrates the resolution of uploaded rows against the
// canonical catalog. All scoring is pure; the only failure-prone steps are
// the two persistence boundaries (catalog load, correction read/write).
type ResolutionEngine struct {
	storage service.Storage
	learner *learning.Store
	scorer  *match.Scorer
	cache   *resultCache
	cfg     Config
}

// Config holds configuration options for the resolution engine.
type Config struct {
	CacheTTL       time.Duration
	CacheSize      int
	PersistTimeout time.Duration
	Scorer         match.Config
	Learning       learning.Config
	Clock          learning.Clock
	// Progress, when set, is called after each row resolves with the count
	// of rows done and the batch total. Batches served from the cache do
	// not report progress.
	Progress func(done, total int)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		CacheTTL:       5 * time.Minute,
		CacheSize:      50,
		PersistTimeout: 10 * time.Second,
		Scorer:         match.DefaultConfig(),
		Learning:       learning.DefaultConfig(),
	}
}

// New creates a resolution engine with the given storage and defaults.
func New(storage service.Storage) *ResolutionEngine {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates a resolution engine with custom configuration.
func NewWithConfig(storage service.Storage, cfg Config) *ResolutionEngine {
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultConfig().PersistTimeout
	}

	learner := learning.NewWithConfig(storage, cfg.Learning, cfg.Clock)

	return &ResolutionEngine{
		storage: storage,
		learner: learner,
		scorer:  match.NewScorerWithConfig(learner, cfg.Scorer),
		cache:   newResultCache(cfg.CacheTTL, cfg.CacheSize),
		cfg:     cfg,
	}
}

// MatchOne resolves a single uploaded row. It is cache-aware: a repeated
// identical request within the TTL is served from the cache.
func (e *ResolutionEngine) MatchOne(ctx context.Context, row model.UploadedAssetRow, organizationID string) (model.AssetMatch, error) {
	results, err := e.MatchBatch(ctx, []model.UploadedAssetRow{row}, organizationID)
	if err != nil {
		return model.AssetMatch{}, err
	}
	return results[0], nil
}

// MatchBatch resolves a batch of uploaded rows. Catalog-load failure fails
// the whole batch; learning-load failure degrades to matching without
// history boosts.
func (e *ResolutionEngine) MatchBatch(ctx context.Context, rows []model.UploadedAssetRow, organizationID string) ([]model.AssetMatch, error) {
	if len(rows) == 0 {
		return []model.AssetMatch{}, nil
	}

	key := batchKey(organizationID, rows)
	if cached, ok := e.cache.get(key); ok {
		common.LogDebug("Serving batch from cache", common.Fields{
			"organization": organizationID,
			"rows":         len(rows),
		})
		return cached, nil
	}

	catalog, err := e.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	e.loadLearning(ctx, organizationID)

	batchID := uuid.NewString()
	slog.Info("Resolving batch",
		"batch_id", batchID,
		"organization", organizationID,
		"rows", len(rows),
		"catalog_size", len(catalog))

	byID := make(map[string]model.CanonicalAssetRecord, len(catalog))
	for _, record := range catalog {
		byID[record.ID] = record
	}

	results := make([]model.AssetMatch, len(rows))
	matched := 0
	for i, row := range rows {
		results[i] = e.resolveRow(row, catalog, byID, organizationID)
		if results[i].Matched() {
			matched++
		}
		if e.cfg.Progress != nil {
			e.cfg.Progress(i+1, len(rows))
		}
	}

	slog.Info("Batch resolved",
		"batch_id", batchID,
		"matched", matched,
		"unmatched", len(rows)-matched)

	e.cache.put(key, results)
	return results, nil
}

// resolveRow checks the learned short-circuit first, then falls back to the
// full scoring pipeline.
func (e *ResolutionEngine) resolveRow(row model.UploadedAssetRow, catalog []model.CanonicalAssetRecord, byID map[string]model.CanonicalAssetRecord, organizationID string) model.AssetMatch {
	if organizationID != "" {
		if assetID, ok := e.learner.LearnedAssetID(row.AssetType); ok {
			if record, found := byID[assetID]; found {
				return e.learnedMatch(row, record, catalog)
			}
		}
	}

	return e.scorer.Resolve(row, catalog)
}

// learnedMatch builds a full-confidence result from a prior human
// correction. Alternatives are still computed for user reference.
func (e *ResolutionEngine) learnedMatch(row model.UploadedAssetRow, record model.CanonicalAssetRecord, catalog []model.CanonicalAssetRecord) model.AssetMatch {
	scored := e.scorer.Resolve(row, catalog)

	alternatives := make([]model.CanonicalAssetRecord, 0, len(scored.AlternativeMatches)+1)
	if scored.SuggestedMatch != nil && scored.SuggestedMatch.ID != record.ID {
		alternatives = append(alternatives, *scored.SuggestedMatch)
	}
	for _, alt := range scored.AlternativeMatches {
		if alt.ID != record.ID {
			alternatives = append(alternatives, alt)
		}
	}

	return model.AssetMatch{
		Row:                row,
		SuggestedMatch:     &record,
		AlternativeMatches: alternatives,
		Confidence:         100,
		Explanation: model.MatchExplanation{
			Method: model.MethodLearned,
			Note:   "confirmed by a prior correction for this organization",
		},
	}
}

// RecordCorrection persists a human correction, updates the learning mirror
// and invalidates the result cache so the next resolution reflects it.
func (e *ResolutionEngine) RecordCorrection(ctx context.Context, organizationID, uploadedText, assetID string) error {
	if organizationID == "" || uploadedText == "" || assetID == "" {
		return common.NewUserError("organization, uploaded text and asset id are all required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.PersistTimeout)
	defer cancel()

	if err := e.learner.RecordCorrection(ctx, organizationID, uploadedText, assetID); err != nil {
		common.LogError(err, "Failed to record correction", common.Fields{
			"organization": organizationID,
			"asset_id":     assetID,
		})
		message := "could not save the correction"
		if common.IsRetryable(err) {
			message = "could not save the correction; please retry"
		}
		return common.NewUserError(message, err)
	}

	e.cache.clear()
	common.LogInfo("Correction recorded", common.Fields{
		"organization": organizationID,
		"asset_id":     assetID,
	})
	return nil
}

// ClearCache drops all cached batch results.
func (e *ResolutionEngine) ClearCache() {
	e.cache.clear()
}

func (e *ResolutionEngine) loadCatalog(ctx context.Context) ([]model.CanonicalAssetRecord, error) {
	var catalog []model.CanonicalAssetRecord

	operation := func() error {
		opCtx, cancel := context.WithTimeout(ctx, e.cfg.PersistTimeout)
		defer cancel()

		var err error
		catalog, err = e.storage.FetchCatalog(opCtx)
		return err
	}

	err := common.WithRetry(ctx, operation, service.RetryOptions{MaxAttempts: 2})
	if err != nil {
		// There is no safe default catalog; the whole batch fails.
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	if len(catalog) == 0 {
		return nil, common.ErrEmptyCatalog
	}

	return catalog, nil
}

// loadLearning loads the organization's correction history. Failure is not
// fatal: matching proceeds without history-based boosts.
func (e *ResolutionEngine) loadLearning(ctx context.Context, organizationID string) {
	if organizationID == "" {
		e.learner.Reset()
		return
	}

	loadCtx, cancel := context.WithTimeout(ctx, e.cfg.PersistTimeout)
	defer cancel()

	if err := e.learner.Load(loadCtx, organizationID); err != nil {
		e.learner.Reset()
		common.LogWarn("Proceeding without learning context", common.Fields{
			"organization": organizationID,
			"error":        err.Error(),
		})
	}
}
