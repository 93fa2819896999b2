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

// CreateTrackWithClip creates a track with its seed clip in one transaction.
//
// The new track goes to the end of the project's stacking order,
// the clip covers the whole asset (both trim offsets zero).
// Either both rows commit or none do.
func (s *Storage) CreateTrackWithClip(ctx context.Context, projectID, assetID int64, trackType string, startTimeMs int64) (models.TrackWithClip, error) {
	const op = "storage.sqlite.CreateTrackWithClip"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var exists int64
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id = ?", projectID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
		}

		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		assetProjectID  int64
		assetDurationMs *int64
	)
	err = tx.QueryRowContext(ctx, "SELECT project_id, duration_ms FROM assets WHERE id = ?", assetID).
		Scan(&assetProjectID, &assetDurationMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, storage.ErrAssetNotFound)
		}

		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}
	if assetProjectID != projectID {
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, storage.ErrAssetWrongProject)
	}

	var durationMs int64
	if assetDurationMs != nil {
		durationMs = *assetDurationMs
	}

	var orderIndex int64
	err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(order_index) + 1, 0) FROM tracks WHERE project_id = ?", projectID).
		Scan(&orderIndex)
	if err != nil {
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := tx.ExecContext(
		ctx,
		"INSERT INTO tracks(project_id, track_type, order_index) VALUES(?, ?, ?)",
		projectID, trackType, orderIndex,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, storage.ErrOrderConflict)
		}

		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}

	trackID, err := res.LastInsertId()
	if err != nil {
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err = tx.ExecContext(
		ctx,
		"INSERT INTO clips(track_id, asset_id, start_time_ms, duration_ms) VALUES(?, ?, ?, ?)",
		trackID, assetID, startTimeMs, durationMs,
	)
	if err != nil {
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}

	clipID, err := res.LastInsertId()
	if err != nil {
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := refreshProjectDuration(ctx, tx, projectID); err != nil {
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TrackWithClip{
		Track: models.Track{
			ID:         trackID,
			ProjectID:  projectID,
			TrackType:  trackType,
			OrderIndex: orderIndex,
		},
		Clip: models.Clip{
			ID:          clipID,
			TrackID:     trackID,
			AssetID:     &assetID,
			StartTimeMs: startTimeMs,
			DurationMs:  durationMs,
			Volume:      1.0,
		},
	}, nil
}

// Track returns track by id.
func (s *Storage) Track(ctx context.Context, id int64) (models.Track, error) {
	const op = "storage.sqlite.Track"

	stmt, err := s.db.Prepare("SELECT id, project_id, track_type, order_index, is_locked, is_muted FROM tracks WHERE id = ?")
	if err != nil {
		return models.Track{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, id)

	var track models.Track
	err = row.Scan(&track.ID, &track.ProjectID, &track.TrackType, &track.OrderIndex, &track.IsLocked, &track.IsMuted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Track{}, fmt.Errorf("%s: %w", op, storage.ErrTrackNotFound)
		}

		return models.Track{}, fmt.Errorf("%s: %w", op, err)
	}

	return track, nil
}

// TracksByProject returns tracks ordered by order_index ascending.
// This ordering defines the stacking order.
func (s *Storage) TracksByProject(ctx context.Context, projectID int64) ([]models.Track, error) {
	const op = "storage.sqlite.TracksByProject"

	stmt, err := s.db.Prepare("SELECT id, project_id, track_type, order_index, is_locked, is_muted FROM tracks WHERE project_id = ? ORDER BY order_index ASC")
	if err != nil {
		return []models.Track{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, projectID)
	if err != nil {
		return []models.Track{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tracks := make([]models.Track, 0)
	var track models.Track
	for rows.Next() {
		if err = rows.Scan(&track.ID, &track.ProjectID, &track.TrackType, &track.OrderIndex, &track.IsLocked, &track.IsMuted); err != nil {
			return tracks, fmt.Errorf("%s: %w", op, err)
		}
		tracks = append(tracks, track)
	}

	return tracks, nil
}

// UpdateTrackFlags updates lock/mute flags. Nil fields are kept.
func (s *Storage) UpdateTrackFlags(ctx context.Context, id int64, flags models.TrackFlags) error {
	const op = "storage.sqlite.UpdateTrackFlags"

	stmt, err := s.db.Prepare("UPDATE tracks SET is_locked = COALESCE(?, is_locked), is_muted = COALESCE(?, is_muted) WHERE id = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, flags.IsLocked, flags.IsMuted, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affectedRows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affectedRows == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrTrackNotFound)
	}

	return nil
}

// DeleteTrack deletes track with its clips and closes the gap
// in the project's order_index sequence.
func (s *Storage) DeleteTrack(ctx context.Context, id int64) error {
	const op = "storage.sqlite.DeleteTrack"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var projectID int64
	if err := tx.QueryRowContext(ctx, "SELECT project_id FROM tracks WHERE id = ?", id).Scan(&projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, storage.ErrTrackNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM tracks WHERE id = ?", id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := densifyTrackOrder(ctx, tx, projectID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := refreshProjectDuration(ctx, tx, projectID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ReorderTracks rewrites order_index values to match the given id order.
// The ids must be exactly the project's tracks.
func (s *Storage) ReorderTracks(ctx context.Context, projectID int64, orderedIDs []int64) error {
	const op = "storage.sqlite.ReorderTracks"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT id FROM tracks WHERE project_id = ?", projectID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	current := make(map[int64]struct{})
	for rows.Next() {
		var trackID int64
		if err := rows.Scan(&trackID); err != nil {
			rows.Close()
			return fmt.Errorf("%s: %w", op, err)
		}
		current[trackID] = struct{}{}
	}
	rows.Close()

	if len(orderedIDs) != len(current) {
		return fmt.Errorf("%s: %w", op, storage.ErrBadTrackOrder)
	}
	for _, trackID := range orderedIDs {
		if _, ok := current[trackID]; !ok {
			return fmt.Errorf("%s: %w", op, storage.ErrBadTrackOrder)
		}
		delete(current, trackID)
	}

	// Two passes keep (project_id, order_index) unique
	// while indices move to arbitrary new slots.
	for i, trackID := range orderedIDs {
		if _, err := tx.ExecContext(ctx, "UPDATE tracks SET order_index = ? WHERE id = ?", -int64(i)-1, trackID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	for i, trackID := range orderedIDs {
		if _, err := tx.ExecContext(ctx, "UPDATE tracks SET order_index = ? WHERE id = ?", int64(i), trackID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// densifyTrackOrder rewrites order_index to 0..n-1 keeping
// the current relative order. Indices only decrease, so the
// unique constraint cannot trip mid-loop.
func densifyTrackOrder(ctx context.Context, tx *sql.Tx, projectID int64) error {
	rows, err := tx.QueryContext(ctx, "SELECT id FROM tracks WHERE project_id = ? ORDER BY order_index ASC", projectID)
	if err != nil {
		return err
	}

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, "UPDATE tracks SET order_index = ? WHERE id = ?", int64(i), id); err != nil {
			return err
		}
	}

	return nil
}
