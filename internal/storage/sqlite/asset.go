package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/internal/storage"
)

// SaveAsset registers an imported media file under its project.
func (s *Storage) SaveAsset(ctx context.Context, in models.AssetIn) (models.Asset, error) {
	const op = "storage.sqlite.SaveAsset"

	stmt, err := s.db.Prepare("INSERT INTO assets(project_id, file_path, asset_type, duration_ms, width, height, file_size_bytes) VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, in.ProjectID, in.FilePath, in.AssetType, in.DurationMs, in.Width, in.Height, in.FileSizeBytes)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
				return models.Asset{}, fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
			}
			if sqliteErr.Code == sqlite3.ErrConstraint {
				return models.Asset{}, fmt.Errorf("%s: %w", op, storage.ErrConstraint)
			}
		}

		return models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.Asset(ctx, id)
}

// Asset returns asset by id.
func (s *Storage) Asset(ctx context.Context, id int64) (models.Asset, error) {
	const op = "storage.sqlite.Asset"

	stmt, err := s.db.Prepare("SELECT id, project_id, file_path, asset_type, duration_ms, width, height, file_size_bytes, imported_at FROM assets WHERE id = ?")
	if err != nil {
		return models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, id)

	var asset models.Asset
	err = row.Scan(
		&asset.ID,
		&asset.ProjectID,
		&asset.FilePath,
		&asset.AssetType,
		&asset.DurationMs,
		&asset.Width,
		&asset.Height,
		&asset.FileSizeBytes,
		&asset.ImportedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Asset{}, fmt.Errorf("%s: %w", op, storage.ErrAssetNotFound)
		}

		return models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	return asset, nil
}

// AssetsByProject returns all assets of a project.
//
// If error occures during parsing, returns already parsed assets.
func (s *Storage) AssetsByProject(ctx context.Context, projectID int64) ([]models.Asset, error) {
	const op = "storage.sqlite.AssetsByProject"

	stmt, err := s.db.Prepare("SELECT id, project_id, file_path, asset_type, duration_ms, width, height, file_size_bytes, imported_at FROM assets WHERE project_id = ?")
	if err != nil {
		return []models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, projectID)
	if err != nil {
		return []models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	assets := make([]models.Asset, 0)
	for rows.Next() {
		var asset models.Asset
		if err = rows.Scan(
			&asset.ID,
			&asset.ProjectID,
			&asset.FilePath,
			&asset.AssetType,
			&asset.DurationMs,
			&asset.Width,
			&asset.Height,
			&asset.FileSizeBytes,
			&asset.ImportedAt,
		); err != nil {
			return assets, fmt.Errorf("%s: %w", op, err)
		}
		assets = append(assets, asset)
	}

	return assets, nil
}

// DeleteAsset deletes asset by id.
// Clips referencing it keep their placement and become gaps.
func (s *Storage) DeleteAsset(ctx context.Context, id int64) error {
	const op = "storage.sqlite.DeleteAsset"

	stmt, err := s.db.Prepare("DELETE FROM assets WHERE id = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affectedRows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affectedRows == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAssetNotFound)
	}

	return nil
}
