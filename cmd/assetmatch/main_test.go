package main

import (
	"testing"

	"github.com/buildscope/assetmatch/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	defer viper.Reset()

	t.Run("accepts valid level and format", func(t *testing.T) {
		viper.Set("logging.level", "debug")
		viper.Set("logging.format", "json")

		require.NoError(t, setupLogging())
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		viper.Set("logging.level", "verbose")
		viper.Set("logging.format", "console")

		err := setupLogging()
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		viper.Set("logging.level", "info")
		viper.Set("logging.format", "xml")

		err := setupLogging()
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}
