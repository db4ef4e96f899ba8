package storage

import (
	"context"
	"testing"

	"github.com/buildscope/assetmatch/internal/common"
	"github.com/buildscope/assetmatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, storage.Migrate(context.Background()))
	return storage
}

func testCatalog() []model.CanonicalAssetRecord {
	return []model.CanonicalAssetRecord{
		{
			ID:           "ahu-1",
			StandardCode: "AHU-001",
			AssetName:    "Air Handling Unit",
			Category:     "HVAC",
			Description:  "Central station air handling unit",
			Tasks: []model.MaintenanceTask{
				{Name: "Replace filters", Frequency: "Quarterly", HoursPerYear: 8},
				{Name: "Inspect belts", Frequency: "Annually", HoursPerYear: 2},
			},
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

func TestMigrate(t *testing.T) {
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	require.NoError(t, storage.Migrate(ctx))

	version, err := storage.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running migrations again is a no-op.
	require.NoError(t, storage.Migrate(ctx))

	version, err = storage.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSaveAndFetchCatalog(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveAssets(ctx, testCatalog()))

	catalog, err := storage.FetchCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 2)

	// Ordered by asset name.
	assert.Equal(t, "Air Handling Unit", catalog[0].AssetName)
	assert.Equal(t, "Water Closet", catalog[1].AssetName)

	require.Len(t, catalog[0].Tasks, 2)
	assert.Equal(t, "Replace filters", catalog[0].Tasks[0].Name)
	assert.InDelta(t, 8.0, catalog[0].Tasks[0].HoursPerYear, 0.001)
	assert.Empty(t, catalog[1].Tasks)

	count, err := storage.CountAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveAssetsUpsert(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveAssets(ctx, testCatalog()))

	updated := testCatalog()
	updated[0].AssetName = "Air Handling Unit (Central)"
	updated[0].Tasks = []model.MaintenanceTask{
		{Name: "Replace filters", Frequency: "Monthly", HoursPerYear: 24},
	}
	require.NoError(t, storage.SaveAssets(ctx, updated))

	catalog, err := storage.FetchCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 2, "re-importing must not duplicate records")

	assert.Equal(t, "Air Handling Unit (Central)", catalog[0].AssetName)
	require.Len(t, catalog[0].Tasks, 1, "task list must be replaced, not appended")
	assert.Equal(t, "Monthly", catalog[0].Tasks[0].Frequency)
}

func TestSaveAssetsRejectsDuplicateIDs(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	assets := []model.CanonicalAssetRecord{
		{ID: "ahu-1", AssetName: "Air Handling Unit", Category: "HVAC"},
		{ID: "ahu-1", AssetName: "Air Handling Unit (Rooftop)", Category: "HVAC"},
	}

	err := storage.SaveAssets(ctx, assets)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	// The batch is rejected wholesale.
	count, err := storage.CountAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSaveAssetsValidation(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	err := storage.SaveAssets(ctx, []model.CanonicalAssetRecord{{AssetName: "No ID"}})
	assert.Error(t, err)

	err = storage.SaveAssets(ctx, []model.CanonicalAssetRecord{{ID: "x-1"}})
	assert.Error(t, err)

	// A failed batch leaves the catalog untouched.
	count, err := storage.CountAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFetchByIDs(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveAssets(ctx, testCatalog()))

	records, err := storage.FetchByIDs(ctx, []string{"ahu-1", "missing"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	record, ok := records["ahu-1"]
	require.True(t, ok)
	assert.Equal(t, "Air Handling Unit", record.AssetName)
	assert.Len(t, record.Tasks, 2)

	empty, err := storage.FetchByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFetchCategories(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveAssets(ctx, testCatalog()))

	categories, err := storage.FetchCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"HVAC", "Plumbing"}, categories)
}

func TestCorrections(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	t.Run("upsert and load", func(t *testing.T) {
		require.NoError(t, storage.UpsertCorrection(ctx, "org-1", "Packge Unit", "PACKAGE UNIT", "pkg-1"))

		corrections, err := storage.LoadCorrections(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, corrections, 1)

		assert.Equal(t, "org-1", corrections[0].OrganizationID)
		assert.Equal(t, "Packge Unit", corrections[0].UploadedText)
		assert.Equal(t, "PACKAGE UNIT", corrections[0].NormalizedText)
		assert.Equal(t, "pkg-1", corrections[0].AssetID)
		assert.Equal(t, 1, corrections[0].Frequency)
		assert.False(t, corrections[0].LastUsed.IsZero())
	})

	t.Run("repeat correction reinforces", func(t *testing.T) {
		require.NoError(t, storage.UpsertCorrection(ctx, "org-1", "PACKGE UNIT", "PACKAGE UNIT", "pkg-1"))

		corrections, err := storage.LoadCorrections(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, corrections, 1)
		assert.Equal(t, 2, corrections[0].Frequency)
	})

	t.Run("ordered by frequency", func(t *testing.T) {
		require.NoError(t, storage.UpsertCorrection(ctx, "org-1", "Chiler", "CHILLER", "ch-1"))

		corrections, err := storage.LoadCorrections(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, corrections, 2)
		assert.Equal(t, "pkg-1", corrections[0].AssetID, "most reinforced correction comes first")
	})

	t.Run("organizations are isolated", func(t *testing.T) {
		corrections, err := storage.LoadCorrections(ctx, "org-2")
		require.NoError(t, err)
		assert.Empty(t, corrections)

		count, err := storage.CorrectionCount(ctx, "org-1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("validation", func(t *testing.T) {
		assert.Error(t, storage.UpsertCorrection(ctx, "", "text", "TEXT", "a-1"))
		assert.Error(t, storage.UpsertCorrection(ctx, "org-1", "", "TEXT", "a-1"))
		assert.Error(t, storage.UpsertCorrection(ctx, "org-1", "text", "TEXT", ""))

		_, err := storage.LoadCorrections(ctx, "")
		assert.Error(t, err)
	})
}
