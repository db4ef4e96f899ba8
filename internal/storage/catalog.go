package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/buildscope/assetmatch/internal/common"
	"github.com/buildscope/assetmatch/internal/model"
)

// SaveAssets inserts or replaces canonical asset records, including their
// maintenance tasks, in a single transaction.
func (s *SQLiteStorage) SaveAssets(ctx context.Context, assets []model.CanonicalAssetRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(assets) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO assets (id, standard_code, asset_name, category, description, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			standard_code = excluded.standard_code,
			asset_name = excluded.asset_name,
			category = excluded.category,
			description = excluded.description,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare asset upsert: %w", err)
	}
	defer func() { _ = upsert.Close() }()

	insertTask, err := tx.PrepareContext(ctx, `
		INSERT INTO asset_tasks (asset_id, name, frequency, hours_per_year)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare task insert: %w", err)
	}
	defer func() { _ = insertTask.Close() }()

	seen := make(map[string]struct{}, len(assets))
	for _, asset := range assets {
		if err := validateString(asset.ID, "asset ID"); err != nil {
			return err
		}
		if err := validateString(asset.AssetName, "asset name"); err != nil {
			return err
		}
		if _, dup := seen[asset.ID]; dup {
			return fmt.Errorf("asset %s: %w", asset.ID, common.ErrDuplicateEntry)
		}
		seen[asset.ID] = struct{}{}

		if _, err := upsert.ExecContext(ctx,
			asset.ID, asset.StandardCode, asset.AssetName, asset.Category, asset.Description,
		); err != nil {
			return fmt.Errorf("failed to save asset %s: %w", asset.ID, err)
		}

		// Replace the task list wholesale; tasks have no stable identity
		// of their own.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM asset_tasks WHERE asset_id = ?`, asset.ID,
		); err != nil {
			return fmt.Errorf("failed to clear tasks for asset %s: %w", asset.ID, err)
		}

		for _, task := range asset.Tasks {
			if _, err := insertTask.ExecContext(ctx,
				asset.ID, task.Name, task.Frequency, task.HoursPerYear,
			); err != nil {
				return fmt.Errorf("failed to save task for asset %s: %w", asset.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assets: %w", err)
	}
	return nil
}

// FetchCatalog returns every canonical asset record, tasks included, ordered
// by asset name.
func (s *SQLiteStorage) FetchCatalog(ctx context.Context) ([]model.CanonicalAssetRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, standard_code, asset_name, category, description
		FROM assets
		ORDER BY asset_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	assets, order, err := scanAssets(rows)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return []model.CanonicalAssetRecord{}, nil
	}

	if err := s.attachTasks(ctx, assets); err != nil {
		return nil, err
	}

	catalog := make([]model.CanonicalAssetRecord, 0, len(order))
	for _, id := range order {
		catalog = append(catalog, *assets[id])
	}
	return catalog, nil
}

// FetchCategories returns the distinct catalog categories, ordered by name.
func (s *SQLiteStorage) FetchCategories(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM assets
		WHERE category != ''
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// FetchByIDs returns the catalog records for the given IDs, keyed by ID.
// Missing IDs are silently absent from the result.
func (s *SQLiteStorage) FetchByIDs(ctx context.Context, ids []string) (map[string]model.CanonicalAssetRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return map[string]model.CanonicalAssetRecord{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, standard_code, asset_name, category, description
		FROM assets
		WHERE id IN (%s)
	`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets by ID: %w", err)
	}
	defer func() { _ = rows.Close() }()

	assets, _, err := scanAssets(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTasks(ctx, assets); err != nil {
		return nil, err
	}

	result := make(map[string]model.CanonicalAssetRecord, len(assets))
	for id, record := range assets {
		result[id] = *record
	}
	return result, nil
}

// CountAssets returns the number of catalog records.
func (s *SQLiteStorage) CountAssets(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return count, nil
}

// scanAssets reads catalog rows into a map keyed by ID, preserving scan
// order separately so callers can return records in query order.
func scanAssets(rows *sql.Rows) (map[string]*model.CanonicalAssetRecord, []string, error) {
	assets := make(map[string]*model.CanonicalAssetRecord)
	var order []string

	for rows.Next() {
		var record model.CanonicalAssetRecord
		var standardCode, description sql.NullString

		if err := rows.Scan(&record.ID, &standardCode, &record.AssetName, &record.Category, &description); err != nil {
			return nil, nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		record.StandardCode = standardCode.String
		record.Description = description.String

		assets[record.ID] = &record
		order = append(order, record.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate assets: %w", err)
	}
	return assets, order, nil
}

// attachTasks loads the maintenance tasks for every asset in the map.
func (s *SQLiteStorage) attachTasks(ctx context.Context, assets map[string]*model.CanonicalAssetRecord) error {
	if len(assets) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT asset_id, name, frequency, hours_per_year
		FROM asset_tasks
		ORDER BY asset_id, id
	`)
	if err != nil {
		return fmt.Errorf("failed to query asset tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var assetID string
		var task model.MaintenanceTask
		var frequency sql.NullString

		if err := rows.Scan(&assetID, &task.Name, &frequency, &task.HoursPerYear); err != nil {
			return fmt.Errorf("failed to scan asset task: %w", err)
		}
		task.Frequency = frequency.String

		if record, ok := assets[assetID]; ok {
			record.Tasks = append(record.Tasks, task)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate asset tasks: %w", err)
	}
	return nil
}
