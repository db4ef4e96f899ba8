package engine

import (
	"testing"
	"time"

	"github.com/buildscope/assetmatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache(t *testing.T) {
	sample := []model.AssetMatch{
		{Row: model.UploadedAssetRow{AssetType: "Chiller"}, Confidence: 92},
	}

	t.Run("basic operations", func(t *testing.T) {
		cache := newResultCache(5*time.Minute, 50)

		_, found := cache.get("missing")
		assert.False(t, found)

		cache.put("key1", sample)

		got, found := cache.get("key1")
		require.True(t, found)
		assert.Equal(t, sample, got)
		assert.Equal(t, 1, cache.size())

		cache.clear()
		assert.Equal(t, 0, cache.size())
		_, found = cache.get("key1")
		assert.False(t, found)
	})

	t.Run("expired entries are evicted on read", func(t *testing.T) {
		cache := newResultCache(50*time.Millisecond, 50)
		cache.put("key2", sample)

		_, found := cache.get("key2")
		assert.True(t, found)

		time.Sleep(100 * time.Millisecond)

		_, found = cache.get("key2")
		assert.False(t, found)
		assert.Equal(t, 0, cache.size())
	})

	t.Run("size pressure evicts the oldest entry", func(t *testing.T) {
		cache := newResultCache(5*time.Minute, 2)

		cache.put("oldest", sample)
		time.Sleep(5 * time.Millisecond)
		cache.put("middle", sample)
		time.Sleep(5 * time.Millisecond)
		cache.put("newest", sample)

		assert.Equal(t, 2, cache.size())
		_, found := cache.get("oldest")
		assert.False(t, found)
		_, found = cache.get("newest")
		assert.True(t, found)
	})
}

func TestBatchKey(t *testing.T) {
	rows := []model.UploadedAssetRow{
		{AssetType: "AHU UNIT-02", Brand: "Carrier", Model: "39M"},
		{AssetType: "Chiller"},
	}

	t.Run("deterministic for identical input", func(t *testing.T) {
		assert.Equal(t, batchKey("org-1", rows), batchKey("org-1", rows))
	})

	t.Run("sensitive to organization", func(t *testing.T) {
		assert.NotEqual(t, batchKey("org-1", rows), batchKey("org-2", rows))
	})

	t.Run("sensitive to row fields", func(t *testing.T) {
		changed := []model.UploadedAssetRow{
			{AssetType: "AHU UNIT-02", Brand: "Trane", Model: "39M"},
			{AssetType: "Chiller"},
		}
		assert.NotEqual(t, batchKey("org-1", rows), batchKey("org-1", changed))
	})
}
