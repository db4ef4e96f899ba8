package storage

import (
	"context"
	"fmt"

	"github.com/buildscope/assetmatch/internal/model"
)

// maxLoadedCorrections bounds how much correction history a single
// organization can pull into memory.
const maxLoadedCorrections = 200

// LoadCorrections returns an organization's correction history, most
// frequently reinforced first.
func (s *SQLiteStorage) LoadCorrections(ctx context.Context, organizationID string) ([]model.LearningCorrection, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(organizationID, "organization ID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT organization_id, uploaded_text, normalized_text, asset_id, frequency, last_used
		FROM learning_corrections
		WHERE organization_id = ?
		ORDER BY frequency DESC, last_used DESC
		LIMIT ?
	`, organizationID, maxLoadedCorrections)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.LearningCorrection
	for rows.Next() {
		var correction model.LearningCorrection
		if err := rows.Scan(
			&correction.OrganizationID,
			&correction.UploadedText,
			&correction.NormalizedText,
			&correction.AssetID,
			&correction.Frequency,
			&correction.LastUsed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, correction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corrections: %w", err)
	}
	return corrections, nil
}

// UpsertCorrection records a human correction. Repeating the same
// correction reinforces it: the frequency increments and last_used resets.
func (s *SQLiteStorage) UpsertCorrection(ctx context.Context, organizationID, uploadedText, normalizedText, assetID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(organizationID, "organization ID"); err != nil {
		return err
	}
	if err := validateString(uploadedText, "uploaded text"); err != nil {
		return err
	}
	if err := validateString(normalizedText, "normalized text"); err != nil {
		return err
	}
	if err := validateString(assetID, "asset ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learning_corrections (organization_id, uploaded_text, normalized_text, asset_id, frequency, last_used)
		VALUES (?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(organization_id, normalized_text, asset_id) DO UPDATE SET
			uploaded_text = excluded.uploaded_text,
			frequency = frequency + 1,
			last_used = CURRENT_TIMESTAMP
	`, organizationID, uploadedText, normalizedText, assetID)
	if err != nil {
		return fmt.Errorf("failed to upsert correction: %w", err)
	}
	return nil
}

// CorrectionCount returns how many corrections an organization has recorded.
func (s *SQLiteStorage) CorrectionCount(ctx context.Context, organizationID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(organizationID, "organization ID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM learning_corrections WHERE organization_id = ?
	`, organizationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count corrections: %w", err)
	}
	return count, nil
}
