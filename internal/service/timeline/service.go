package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/icut-app/icut/internal/lib/logger/sl"
	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/internal/service"
	"github.com/icut-app/icut/internal/storage"
)

// Timeline owns the consistency rules around tracks and clips:
// stacking order, lock gating and trim bounds.
type Timeline struct {
	log          *slog.Logger
	trackStorage TrackStorage
	clipStorage  ClipStorage
	assetStorage AssetStorage
}

type TrackStorage interface {
	CreateTrackWithClip(ctx context.Context, projectID, assetID int64, trackType string, startTimeMs int64) (models.TrackWithClip, error)
	Track(ctx context.Context, id int64) (models.Track, error)
	TracksByProject(ctx context.Context, projectID int64) ([]models.Track, error)
	UpdateTrackFlags(ctx context.Context, id int64, flags models.TrackFlags) error
	DeleteTrack(ctx context.Context, id int64) error
	ReorderTracks(ctx context.Context, projectID int64, orderedIDs []int64) error
}

type ClipStorage interface {
	SaveClip(ctx context.Context, in models.ClipIn) (models.Clip, error)
	Clip(ctx context.Context, id int64) (models.Clip, error)
	ClipsByTrack(ctx context.Context, trackID int64) ([]models.Clip, error)
	UpdateClipStart(ctx context.Context, id, startTimeMs int64) error
	UpdateClipTrim(ctx context.Context, id int64, trim models.ClipTrim) error
	UpdateClipPlayback(ctx context.Context, id int64, volume *float64, isMuted *bool) error
	DeleteClip(ctx context.Context, id int64) error
}

type AssetStorage interface {
	Asset(ctx context.Context, id int64) (models.Asset, error)
}

func New(
	log *slog.Logger,
	trackStorage TrackStorage,
	clipStorage ClipStorage,
	assetStorage AssetStorage,
) *Timeline {
	return &Timeline{
		log:          log,
		trackStorage: trackStorage,
		clipStorage:  clipStorage,
		assetStorage: assetStorage,
	}
}

// NewTrackWithClip appends a track to the project's stacking order
// and seeds it with one clip covering the whole asset.
//
// The write is atomic. A concurrent creation racing for the same
// order_index aborts the transaction; the whole operation is retried
// once with a fresh index before the error surfaces.
func (t *Timeline) NewTrackWithClip(ctx context.Context, projectID, assetID int64, trackType string, startTimeMs int64) (models.TrackWithClip, error) {
	const op = "Timeline.NewTrackWithClip"

	log := t.log.With(
		slog.String("op", op),
	)

	if startTimeMs < 0 {
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, service.ErrInvalidStart)
	}

	log.Info(
		"creating track with clip",
		slog.Int64("projectID", projectID),
		slog.Int64("assetID", assetID),
		slog.String("type", trackType),
	)

	res, err := t.trackStorage.CreateTrackWithClip(ctx, projectID, assetID, trackType, startTimeMs)
	if errors.Is(err, storage.ErrOrderConflict) {
		log.Warn("track order conflict, retrying", slog.Int64("projectID", projectID))
		res, err = t.trackStorage.CreateTrackWithClip(ctx, projectID, assetID, trackType, startTimeMs)
	}
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrProjectNotFound):
			log.Warn("project not found", slog.Int64("projectID", projectID))
			return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, service.ErrProjectNotFound)
		case errors.Is(err, storage.ErrAssetNotFound):
			log.Warn("asset not found", slog.Int64("assetID", assetID))
			return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, service.ErrAssetNotFound)
		case errors.Is(err, storage.ErrAssetWrongProject):
			log.Warn("asset belongs to another project", slog.Int64("assetID", assetID))
			return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, service.ErrAssetWrongProject)
		}
		log.Error("failed to create track with clip", sl.Err(err))
		return models.TrackWithClip{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info(
		"created track with clip",
		slog.Int64("trackID", res.Track.ID),
		slog.Int64("clipID", res.Clip.ID),
		slog.Int64("orderIndex", res.Track.OrderIndex),
	)

	return res, nil
}

// TracksByProject returns tracks in stacking order.
func (t *Timeline) TracksByProject(ctx context.Context, projectID int64) ([]models.Track, error) {
	const op = "Timeline.TracksByProject"

	tracks, err := t.trackStorage.TracksByProject(ctx, projectID)
	if err != nil {
		t.log.Error("failed to list tracks", slog.String("op", op), sl.Err(err))
		return []models.Track{}, fmt.Errorf("%s: %w", op, err)
	}

	return tracks, nil
}

// ClipsByTrack returns clips in arrangement order.
func (t *Timeline) ClipsByTrack(ctx context.Context, trackID int64) ([]models.Clip, error) {
	const op = "Timeline.ClipsByTrack"

	clips, err := t.clipStorage.ClipsByTrack(ctx, trackID)
	if err != nil {
		t.log.Error("failed to list clips", slog.String("op", op), sl.Err(err))
		return []models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}

	return clips, nil
}

// AddClip places a clip on an existing unlocked track.
// A nil asset id places a gap clip; a nil duration copies the
// asset's, an explicit one must be positive.
func (t *Timeline) AddClip(ctx context.Context, in models.ClipIn) (models.Clip, error) {
	const op = "Timeline.AddClip"

	log := t.log.With(
		slog.String("op", op),
	)

	if in.StartTimeMs < 0 {
		return models.Clip{}, fmt.Errorf("%s: %w", op, service.ErrInvalidStart)
	}
	if in.DurationMs != nil && *in.DurationMs <= 0 {
		return models.Clip{}, fmt.Errorf("%s: %w", op, service.ErrInvalidTrim)
	}

	if err := t.requireUnlocked(ctx, in.TrackID); err != nil {
		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}

	clip, err := t.clipStorage.SaveClip(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTrackNotFound):
			log.Warn("track not found", slog.Int64("trackID", in.TrackID))
			return models.Clip{}, fmt.Errorf("%s: %w", op, service.ErrTrackNotFound)
		case errors.Is(err, storage.ErrAssetNotFound):
			log.Warn("asset not found")
			return models.Clip{}, fmt.Errorf("%s: %w", op, service.ErrAssetNotFound)
		case errors.Is(err, storage.ErrAssetWrongProject):
			log.Warn("asset belongs to another project")
			return models.Clip{}, fmt.Errorf("%s: %w", op, service.ErrAssetWrongProject)
		}
		log.Error("failed to save clip", sl.Err(err))
		return models.Clip{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("placed clip", slog.Int64("id", clip.ID), slog.Int64("trackID", clip.TrackID))

	return clip, nil
}

// MoveClip changes a clip's position on its track's timeline.
func (t *Timeline) MoveClip(ctx context.Context, clipID, startTimeMs int64) error {
	const op = "Timeline.MoveClip"

	log := t.log.With(
		slog.String("op", op),
	)

	if startTimeMs < 0 {
		return fmt.Errorf("%s: %w", op, service.ErrInvalidStart)
	}

	clip, err := t.clip(ctx, clipID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.requireUnlocked(ctx, clip.TrackID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.clipStorage.UpdateClipStart(ctx, clipID, startTimeMs); err != nil {
		log.Error("failed to move clip", slog.Int64("id", clipID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("moved clip", slog.Int64("id", clipID), slog.Int64("start", startTimeMs))

	return nil
}

// UpdateClipTrim writes a trim window after validating it against
// the source asset: 0 <= start < end <= asset duration (when known),
// and the placed duration stays positive.
func (t *Timeline) UpdateClipTrim(ctx context.Context, clipID int64, trim models.ClipTrim) error {
	const op = "Timeline.UpdateClipTrim"

	log := t.log.With(
		slog.String("op", op),
	)

	clip, err := t.clip(ctx, clipID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.requireUnlocked(ctx, clip.TrackID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.validateTrim(ctx, clip, trim); err != nil {
		log.Warn("rejected trim", slog.Int64("id", clipID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.clipStorage.UpdateClipTrim(ctx, clipID, trim); err != nil {
		log.Error("failed to trim clip", slog.Int64("id", clipID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info(
		"trimmed clip",
		slog.Int64("id", clipID),
		slog.Int64("start", trim.AssetStartOffsetMs),
		slog.Int64("end", trim.AssetEndOffsetMs),
	)

	return nil
}

// UpdateClipPlayback updates volume/mute. Nil fields are kept.
func (t *Timeline) UpdateClipPlayback(ctx context.Context, clipID int64, volume *float64, isMuted *bool) error {
	const op = "Timeline.UpdateClipPlayback"

	clip, err := t.clip(ctx, clipID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.requireUnlocked(ctx, clip.TrackID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.clipStorage.UpdateClipPlayback(ctx, clipID, volume, isMuted); err != nil {
		t.log.Error("failed to update clip playback", slog.String("op", op), slog.Int64("id", clipID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteClip deletes a clip from an unlocked track.
func (t *Timeline) DeleteClip(ctx context.Context, clipID int64) error {
	const op = "Timeline.DeleteClip"

	log := t.log.With(
		slog.String("op", op),
	)

	clip, err := t.clip(ctx, clipID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.requireUnlocked(ctx, clip.TrackID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.clipStorage.DeleteClip(ctx, clipID); err != nil {
		if errors.Is(err, storage.ErrClipNotFound) {
			log.Warn("clip not found", slog.Int64("id", clipID))
			return fmt.Errorf("%s: %w", op, service.ErrClipNotFound)
		}
		log.Error("failed to delete clip", slog.Int64("id", clipID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("deleted clip", slog.Int64("id", clipID))

	return nil
}

// SetTrackFlags updates a track's lock/mute flags.
func (t *Timeline) SetTrackFlags(ctx context.Context, trackID int64, flags models.TrackFlags) error {
	const op = "Timeline.SetTrackFlags"

	log := t.log.With(
		slog.String("op", op),
	)

	if err := t.trackStorage.UpdateTrackFlags(ctx, trackID, flags); err != nil {
		if errors.Is(err, storage.ErrTrackNotFound) {
			log.Warn("track not found", slog.Int64("id", trackID))
			return fmt.Errorf("%s: %w", op, service.ErrTrackNotFound)
		}
		log.Error("failed to update track flags", slog.Int64("id", trackID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteTrack deletes an unlocked track with its clips and closes
// the gap in the project's stacking order.
func (t *Timeline) DeleteTrack(ctx context.Context, trackID int64) error {
	const op = "Timeline.DeleteTrack"

	log := t.log.With(
		slog.String("op", op),
	)

	if err := t.requireUnlocked(ctx, trackID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := t.trackStorage.DeleteTrack(ctx, trackID); err != nil {
		if errors.Is(err, storage.ErrTrackNotFound) {
			log.Warn("track not found", slog.Int64("id", trackID))
			return fmt.Errorf("%s: %w", op, service.ErrTrackNotFound)
		}
		log.Error("failed to delete track", slog.Int64("id", trackID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("deleted track", slog.Int64("id", trackID))

	return nil
}

// ReorderTracks rewrites the stacking order to the given id order.
// The ids must be exactly the project's tracks.
func (t *Timeline) ReorderTracks(ctx context.Context, projectID int64, orderedIDs []int64) error {
	const op = "Timeline.ReorderTracks"

	log := t.log.With(
		slog.String("op", op),
	)

	if err := t.trackStorage.ReorderTracks(ctx, projectID, orderedIDs); err != nil {
		if errors.Is(err, storage.ErrBadTrackOrder) {
			log.Warn("bad track order", slog.Int64("projectID", projectID))
			return fmt.Errorf("%s: %w", op, service.ErrBadTrackOrder)
		}
		log.Error("failed to reorder tracks", slog.Int64("projectID", projectID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("reordered tracks", slog.Int64("projectID", projectID), slog.Int("count", len(orderedIDs)))

	return nil
}

func (t *Timeline) clip(ctx context.Context, id int64) (models.Clip, error) {
	clip, err := t.clipStorage.Clip(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrClipNotFound) {
			return models.Clip{}, service.ErrClipNotFound
		}

		return models.Clip{}, err
	}

	return clip, nil
}

// requireUnlocked rejects clip mutations on locked tracks.
func (t *Timeline) requireUnlocked(ctx context.Context, trackID int64) error {
	track, err := t.trackStorage.Track(ctx, trackID)
	if err != nil {
		if errors.Is(err, storage.ErrTrackNotFound) {
			return service.ErrTrackNotFound
		}

		return err
	}

	if track.IsLocked {
		return service.ErrTrackLocked
	}

	return nil
}

func (t *Timeline) validateTrim(ctx context.Context, clip models.Clip, trim models.ClipTrim) error {
	if trim.DurationMs <= 0 {
		return service.ErrInvalidTrim
	}
	if trim.AssetStartOffsetMs < 0 || trim.AssetStartOffsetMs >= trim.AssetEndOffsetMs {
		return service.ErrInvalidTrim
	}

	if clip.AssetID == nil {
		return nil
	}

	asset, err := t.assetStorage.Asset(ctx, *clip.AssetID)
	if err != nil {
		if errors.Is(err, storage.ErrAssetNotFound) {
			// Asset vanished under the clip: it is a gap now,
			// no source bound to check.
			return nil
		}

		return err
	}

	if asset.DurationMs != nil && trim.AssetEndOffsetMs > *asset.DurationMs {
		return service.ErrInvalidTrim
	}

	return nil
}
