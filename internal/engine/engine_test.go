package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/buildscope/assetmatch/internal/common"
	"github.com/buildscope/assetmatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStorage is an in-memory service.Storage with call counters.
type mockStorage struct {
	mu          sync.Mutex
	catalog     []model.CanonicalAssetRecord
	corrections map[string][]model.LearningCorrection

	fetchCatalogCalls    int
	loadCorrectionsCalls int
	upsertCalls          int

	fetchErr  error
	loadErr   error
	upsertErr error
}

func newMockStorage(catalog []model.CanonicalAssetRecord) *mockStorage {
	return &mockStorage{
		catalog:     catalog,
		corrections: make(map[string][]model.LearningCorrection),
	}
}

func (m *mockStorage) FetchCatalog(_ context.Context) ([]model.CanonicalAssetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCatalogCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.catalog, nil
}

func (m *mockStorage) FetchCategories(_ context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockStorage) FetchByIDs(_ context.Context, ids []string) (map[string]model.CanonicalAssetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]model.CanonicalAssetRecord)
	for _, record := range m.catalog {
		for _, id := range ids {
			if record.ID == id {
				result[id] = record
			}
		}
	}
	return result, nil
}

func (m *mockStorage) LoadCorrections(_ context.Context, organizationID string) ([]model.LearningCorrection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCorrectionsCalls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.corrections[organizationID], nil
}

func (m *mockStorage) UpsertCorrection(_ context.Context, organizationID, uploadedText, normalizedText, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}

	existing := m.corrections[organizationID]
	for i := range existing {
		if existing[i].NormalizedText == normalizedText && existing[i].AssetID == assetID {
			existing[i].Frequency++
			existing[i].LastUsed = time.Now()
			return nil
		}
	}
	m.corrections[organizationID] = append(existing, model.LearningCorrection{
		OrganizationID: organizationID,
		UploadedText:   uploadedText,
		NormalizedText: normalizedText,
		AssetID:        assetID,
		Frequency:      1,
		LastUsed:       time.Now(),
	})
	return nil
}

func (m *mockStorage) SaveAssets(_ context.Context, _ []model.CanonicalAssetRecord) error {
	return nil
}

func (m *mockStorage) CountAssets(_ context.Context) (int, error) {
	return len(m.catalog), nil
}

func (m *mockStorage) CorrectionCount(_ context.Context, organizationID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.corrections[organizationID]), nil
}

func (m *mockStorage) Migrate(_ context.Context) error { return nil }

func (m *mockStorage) Close() error { return nil }

func (m *mockStorage) callCounts() (catalog, load int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCatalogCalls, m.loadCorrectionsCalls
}

func engineCatalog() []model.CanonicalAssetRecord {
	return []model.CanonicalAssetRecord{
		{
			ID:           "ahu-1",
			StandardCode: "AHU-001",
			AssetName:    "Air Handling Unit",
			Category:     "HVAC",
			Description:  "Central station air handling unit",
		},
		{
			ID:           "pkg-1",
			StandardCode: "PKG-001",
			AssetName:    "Packaged Air Conditioning Unit",
			Category:     "HVAC",
			Description:  "Rooftop packaged DX unit",
		},
		{
			ID:           "wc-1",
			StandardCode: "PLB-010",
			AssetName:    "Water Closet",
			Category:     "Plumbing",
			Description:  "Floor mounted water closet",
		},
	}
}

func TestMatchBatchCacheCorrectness(t *testing.T) {
	storage := newMockStorage(engineCatalog())
	eng := New(storage)

	rows := []model.UploadedAssetRow{
		{AssetType: "AHU UNIT-02", Brand: "Carrier", Model: "39M", Quantity: 3, RowIndex: 0},
	}

	first, err := eng.MatchBatch(context.Background(), rows, "org-1")
	require.NoError(t, err)

	second, err := eng.MatchBatch(context.Background(), rows, "org-1")
	require.NoError(t, err)

	assert.Equal(t, first, second, "cached results must be identical")

	catalogCalls, loadCalls := storage.callCounts()
	assert.Equal(t, 1, catalogCalls, "second call must not re-load the catalog")
	assert.Equal(t, 1, loadCalls, "second call must not re-load corrections")

	// An explicit invalidation bypasses the cached result.
	eng.ClearCache()
	_, err = eng.MatchBatch(context.Background(), rows, "org-1")
	require.NoError(t, err)

	catalogCalls, _ = storage.callCounts()
	assert.Equal(t, 2, catalogCalls)
}

func TestMatchBatchCacheExpiry(t *testing.T) {
	storage := newMockStorage(engineCatalog())
	cfg := DefaultConfig()
	cfg.CacheTTL = 50 * time.Millisecond
	eng := NewWithConfig(storage, cfg)

	rows := []model.UploadedAssetRow{{AssetType: "Chiller"}}

	_, err := eng.MatchBatch(context.Background(), rows, "org-1")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = eng.MatchBatch(context.Background(), rows, "org-1")
	require.NoError(t, err)

	catalogCalls, _ := storage.callCounts()
	assert.Equal(t, 2, catalogCalls, "expired cache entry must be recomputed")
}

func TestRecordCorrectionInvalidatesCache(t *testing.T) {
	storage := newMockStorage(engineCatalog())
	eng := New(storage)

	rows := []model.UploadedAssetRow{{AssetType: "Packge Unit"}}

	_, err := eng.MatchBatch(context.Background(), rows, "org-1")
	require.NoError(t, err)

	require.NoError(t, eng.RecordCorrection(context.Background(), "org-1", "Packge Unit", "pkg-1"))

	_, err = eng.MatchBatch(context.Background(), rows, "org-1")
	require.NoError(t, err)

	catalogCalls, _ := storage.callCounts()
	assert.Equal(t, 2, catalogCalls, "correction must invalidate the cache")
}

func TestLearningDominance(t *testing.T) {
	storage := newMockStorage(engineCatalog())
	eng := New(storage)

	require.NoError(t, eng.RecordCorrection(context.Background(), "org-1", "Packge Unit", "ahu-1"))

	results, err := eng.MatchBatch(context.Background(), []model.UploadedAssetRow{
		{AssetType: "Packge Unit"},
	}, "org-1")
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	require.NotNil(t, result.SuggestedMatch)
	assert.Equal(t, "ahu-1", result.SuggestedMatch.ID)
	assert.Equal(t, 100, result.Confidence)
	assert.Equal(t, model.MethodLearned, result.Explanation.Method)

	// Alternatives are still computed for user reference, minus the learned asset.
	for _, alt := range result.AlternativeMatches {
		assert.NotEqual(t, "ahu-1", alt.ID)
	}
}

func TestMatchBatchCatalogFailure(t *testing.T) {
	storage := newMockStorage(nil)
	storage.fetchErr = errors.New("connection refused")
	eng := New(storage)

	_, err := eng.MatchBatch(context.Background(), []model.UploadedAssetRow{{AssetType: "Chiller"}}, "org-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
}

func TestMatchBatchEmptyCatalog(t *testing.T) {
	storage := newMockStorage(nil)
	eng := New(storage)

	_, err := eng.MatchBatch(context.Background(), []model.UploadedAssetRow{{AssetType: "Chiller"}}, "org-1")

	assert.ErrorIs(t, err, common.ErrEmptyCatalog)
}

func TestMatchBatchLearningFailureDegrades(t *testing.T) {
	storage := newMockStorage(engineCatalog())
	storage.loadErr = errors.New("corrections table locked")
	eng := New(storage)

	results, err := eng.MatchBatch(context.Background(), []model.UploadedAssetRow{
		{AssetType: "Air Handling Unit"},
	}, "org-1")

	require.NoError(t, err, "learning failure must not fail the batch")
	require.Len(t, results, 1)
	require.NotNil(t, results[0].SuggestedMatch)
	assert.Equal(t, "ahu-1", results[0].SuggestedMatch.ID)
}

func TestMatchBatchEmptyRows(t *testing.T) {
	storage := newMockStorage(engineCatalog())
	eng := New(storage)

	results, err := eng.MatchBatch(context.Background(), nil, "org-1")

	require.NoError(t, err)
	assert.Empty(t, results)

	catalogCalls, _ := storage.callCounts()
	assert.Equal(t, 0, catalogCalls)
}

func TestMatchBatchReportsProgress(t *testing.T) {
	storage := newMockStorage(engineCatalog())

	type call struct{ done, total int }
	var calls []call

	cfg := DefaultConfig()
	cfg.Progress = func(done, total int) {
		calls = append(calls, call{done, total})
	}
	eng := NewWithConfig(storage, cfg)

	rows := []model.UploadedAssetRow{
		{AssetType: "AHU UNIT-02"},
		{AssetType: "Water Closet"},
		{AssetType: "Chiller"},
	}

	_, err := eng.MatchBatch(context.Background(), rows, "org-1")
	require.NoError(t, err)

	require.Len(t, calls, len(rows), "progress fires once per row")
	assert.Equal(t, call{1, 3}, calls[0])
	assert.Equal(t, call{3, 3}, calls[len(calls)-1])

	// A cached batch resolves no rows, so it reports nothing.
	_, err = eng.MatchBatch(context.Background(), rows, "org-1")
	require.NoError(t, err)
	assert.Len(t, calls, len(rows))
}

func TestMatchOne(t *testing.T) {
	storage := newMockStorage(engineCatalog())
	eng := New(storage)

	result, err := eng.MatchOne(context.Background(), model.UploadedAssetRow{AssetType: "Water Closet"}, "org-1")

	require.NoError(t, err)
	require.NotNil(t, result.SuggestedMatch)
	assert.Equal(t, "wc-1", result.SuggestedMatch.ID)
}

func TestRecordCorrectionValidation(t *testing.T) {
	eng := New(newMockStorage(engineCatalog()))

	assert.Error(t, eng.RecordCorrection(context.Background(), "", "Packge Unit", "pkg-1"))
	assert.Error(t, eng.RecordCorrection(context.Background(), "org-1", "", "pkg-1"))
	assert.Error(t, eng.RecordCorrection(context.Background(), "org-1", "Packge Unit", ""))
}

func TestRecordCorrectionPersistenceFailure(t *testing.T) {
	storage := newMockStorage(engineCatalog())
	storage.upsertErr = errors.New("disk full")
	eng := New(storage)

	err := eng.RecordCorrection(context.Background(), "org-1", "Packge Unit", "pkg-1")

	require.Error(t, err)
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
	assert.NotContains(t, userErr.UserMessage, "retry", "a non-transient failure must not suggest retrying")
}

func TestRecordCorrectionTimeoutSuggestsRetry(t *testing.T) {
	storage := newMockStorage(engineCatalog())
	storage.upsertErr = context.DeadlineExceeded
	eng := New(storage)

	err := eng.RecordCorrection(context.Background(), "org-1", "Packge Unit", "pkg-1")

	require.Error(t, err)
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "retry")
}
