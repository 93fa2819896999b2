package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/internal/storage"
)

// SaveClip places a clip on an existing track.
//
// A nil asset id places a gap clip. When duration is not given
// it is copied from the asset (0 for a gap or a still); an
// explicit duration must be positive.
func (s *Storage) SaveClip(ctx context.Context, in models.ClipIn) (models.Clip, error) {
	const op = "storage.sqlite.SaveClip"

	if in.DurationMs != nil && *in.DurationMs <= 0 {
		return models.Clip{}, fmt.Errorf("%s: %w", op, storage.ErrConstraint)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var projectID int64
	if err := tx.QueryRowContext(ctx, "SELECT project_id FROM tracks WHERE id = ?", in.TrackID).Scan(&projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Clip{}, fmt.Errorf("%s: %w", op, storage.ErrTrackNotFound)
		}

		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}

	var durationMs int64
	if in.AssetID != nil {
		var (
			assetProjectID  int64
			assetDurationMs *int64
		)
		err := tx.QueryRowContext(ctx, "SELECT project_id, duration_ms FROM assets WHERE id = ?", *in.AssetID).
			Scan(&assetProjectID, &assetDurationMs)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.Clip{}, fmt.Errorf("%s: %w", op, storage.ErrAssetNotFound)
			}

			return models.Clip{}, fmt.Errorf("%s: %w", op, err)
		}
		if assetProjectID != projectID {
			return models.Clip{}, fmt.Errorf("%s: %w", op, storage.ErrAssetWrongProject)
		}
		if assetDurationMs != nil {
			durationMs = *assetDurationMs
		}
	}
	if in.DurationMs != nil {
		durationMs = *in.DurationMs
	}

	res, err := tx.ExecContext(
		ctx,
		"INSERT INTO clips(track_id, asset_id, start_time_ms, duration_ms) VALUES(?, ?, ?, ?)",
		in.TrackID, in.AssetID, in.StartTimeMs, durationMs,
	)
	if err != nil {
		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := refreshProjectDuration(ctx, tx, projectID); err != nil {
		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Clip{
		ID:          id,
		TrackID:     in.TrackID,
		AssetID:     in.AssetID,
		StartTimeMs: in.StartTimeMs,
		DurationMs:  durationMs,
		Volume:      1.0,
	}, nil
}

// Clip returns clip by id.
func (s *Storage) Clip(ctx context.Context, id int64) (models.Clip, error) {
	const op = "storage.sqlite.Clip"

	stmt, err := s.db.Prepare("SELECT id, track_id, asset_id, start_time_ms, duration_ms, asset_start_offset_ms, asset_end_offset_ms, volume, is_muted FROM clips WHERE id = ?")
	if err != nil {
		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, id)

	var clip models.Clip
	err = row.Scan(
		&clip.ID,
		&clip.TrackID,
		&clip.AssetID,
		&clip.StartTimeMs,
		&clip.DurationMs,
		&clip.AssetStartOffsetMs,
		&clip.AssetEndOffsetMs,
		&clip.Volume,
		&clip.IsMuted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Clip{}, fmt.Errorf("%s: %w", op, storage.ErrClipNotFound)
		}

		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}

	return clip, nil
}

// ClipsByTrack returns clips sorted by start time ascending,
// ties broken by id. This defines the arrangement order.
func (s *Storage) ClipsByTrack(ctx context.Context, trackID int64) ([]models.Clip, error) {
	const op = "storage.sqlite.ClipsByTrack"

	stmt, err := s.db.Prepare("SELECT id, track_id, asset_id, start_time_ms, duration_ms, asset_start_offset_ms, asset_end_offset_ms, volume, is_muted FROM clips WHERE track_id = ? ORDER BY start_time_ms ASC, id ASC")
	if err != nil {
		return []models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, trackID)
	if err != nil {
		return []models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	clips := make([]models.Clip, 0)
	for rows.Next() {
		var clip models.Clip
		if err = rows.Scan(
			&clip.ID,
			&clip.TrackID,
			&clip.AssetID,
			&clip.StartTimeMs,
			&clip.DurationMs,
			&clip.AssetStartOffsetMs,
			&clip.AssetEndOffsetMs,
			&clip.Volume,
			&clip.IsMuted,
		); err != nil {
			return clips, fmt.Errorf("%s: %w", op, err)
		}
		clips = append(clips, clip)
	}

	return clips, nil
}

// UpdateClipStart moves a clip along its track's timeline.
func (s *Storage) UpdateClipStart(ctx context.Context, id, startTimeMs int64) error {
	const op = "storage.sqlite.UpdateClipStart"

	return s.updateClip(ctx, op, id, "UPDATE clips SET start_time_ms = ? WHERE id = ?", startTimeMs, id)
}

// UpdateClipTrim writes a validated trim window.
func (s *Storage) UpdateClipTrim(ctx context.Context, id int64, trim models.ClipTrim) error {
	const op = "storage.sqlite.UpdateClipTrim"

	return s.updateClip(
		ctx, op, id,
		"UPDATE clips SET asset_start_offset_ms = ?, asset_end_offset_ms = ?, duration_ms = ? WHERE id = ?",
		trim.AssetStartOffsetMs, trim.AssetEndOffsetMs, trim.DurationMs, id,
	)
}

// UpdateClipPlayback updates volume/mute. Nil fields are kept.
func (s *Storage) UpdateClipPlayback(ctx context.Context, id int64, volume *float64, isMuted *bool) error {
	const op = "storage.sqlite.UpdateClipPlayback"

	return s.updateClip(
		ctx, op, id,
		"UPDATE clips SET volume = COALESCE(?, volume), is_muted = COALESCE(?, is_muted) WHERE id = ?",
		volume, isMuted, id,
	)
}

// updateClip runs a single clip update inside a transaction
// together with the project duration refresh.
func (s *Storage) updateClip(ctx context.Context, op string, id int64, query string, args ...any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	projectID, err := clipProject(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
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

// DeleteClip deletes clip by id.
func (s *Storage) DeleteClip(ctx context.Context, id int64) error {
	const op = "storage.sqlite.DeleteClip"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	projectID, err := clipProject(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM clips WHERE id = ?", id); err != nil {
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

func clipProject(ctx context.Context, tx *sql.Tx, clipID int64) (int64, error) {
	var projectID int64
	err := tx.QueryRowContext(
		ctx,
		"SELECT t.project_id FROM clips c JOIN tracks t ON c.track_id = t.id WHERE c.id = ?",
		clipID,
	).Scan(&projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrClipNotFound
		}

		return 0, err
	}

	return projectID, nil
}
