package main

import (
	"context"
	"fmt"

	"github.com/buildscope/assetmatch/internal/config"
	"github.com/buildscope/assetmatch/internal/engine"
	"github.com/buildscope/assetmatch/internal/service"
	"github.com/buildscope/assetmatch/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/assetmatch/assetmatch.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine initializes storage plus the resolution engine on top of it.
// The caller owns closing the returned storage.
func initEngine(ctx context.Context) (*engine.ResolutionEngine, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(store), store, nil
}

// organizationID returns the configured organization, which may be empty
// when resolving without learning context.
func organizationID() string {
	return viper.GetString("organization")
}
