package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ptr "github.com/icut-app/icut/internal/lib/utils/pointers"
	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/internal/service"
	"github.com/icut-app/icut/internal/storage"
)

type stubStorage struct {
	tracks map[int64]models.Track
	clips  map[int64]models.Clip
	assets map[int64]models.Asset

	createCalls int
	createErrs  []error

	movedTo      *int64
	savedTrim    *models.ClipTrim
	deletedClips []int64
}

func newStubStorage() *stubStorage {
	return &stubStorage{
		tracks: make(map[int64]models.Track),
		clips:  make(map[int64]models.Clip),
		assets: make(map[int64]models.Asset),
	}
}

func (s *stubStorage) CreateTrackWithClip(_ context.Context, projectID, assetID int64, trackType string, startTimeMs int64) (models.TrackWithClip, error) {
	s.createCalls++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return models.TrackWithClip{}, err
		}
	}

	return models.TrackWithClip{
		Track: models.Track{ID: 1, ProjectID: projectID, TrackType: trackType},
		Clip:  models.Clip{ID: 1, TrackID: 1, AssetID: &assetID, StartTimeMs: startTimeMs, Volume: 1.0},
	}, nil
}

func (s *stubStorage) Track(_ context.Context, id int64) (models.Track, error) {
	track, ok := s.tracks[id]
	if !ok {
		return models.Track{}, storage.ErrTrackNotFound
	}
	return track, nil
}

func (s *stubStorage) TracksByProject(_ context.Context, _ int64) ([]models.Track, error) {
	return []models.Track{}, nil
}

func (s *stubStorage) UpdateTrackFlags(_ context.Context, id int64, flags models.TrackFlags) error {
	track, ok := s.tracks[id]
	if !ok {
		return storage.ErrTrackNotFound
	}
	if flags.IsLocked != nil {
		track.IsLocked = *flags.IsLocked
	}
	if flags.IsMuted != nil {
		track.IsMuted = *flags.IsMuted
	}
	s.tracks[id] = track
	return nil
}

func (s *stubStorage) DeleteTrack(_ context.Context, id int64) error {
	if _, ok := s.tracks[id]; !ok {
		return storage.ErrTrackNotFound
	}
	delete(s.tracks, id)
	return nil
}

func (s *stubStorage) ReorderTracks(_ context.Context, _ int64, _ []int64) error {
	return nil
}

func (s *stubStorage) SaveClip(_ context.Context, in models.ClipIn) (models.Clip, error) {
	clip := models.Clip{ID: int64(len(s.clips) + 1), TrackID: in.TrackID, AssetID: in.AssetID, StartTimeMs: in.StartTimeMs, Volume: 1.0}
	s.clips[clip.ID] = clip
	return clip, nil
}

func (s *stubStorage) Clip(_ context.Context, id int64) (models.Clip, error) {
	clip, ok := s.clips[id]
	if !ok {
		return models.Clip{}, storage.ErrClipNotFound
	}
	return clip, nil
}

func (s *stubStorage) ClipsByTrack(_ context.Context, _ int64) ([]models.Clip, error) {
	return []models.Clip{}, nil
}

func (s *stubStorage) UpdateClipStart(_ context.Context, _ int64, startTimeMs int64) error {
	s.movedTo = &startTimeMs
	return nil
}

func (s *stubStorage) UpdateClipTrim(_ context.Context, _ int64, trim models.ClipTrim) error {
	s.savedTrim = &trim
	return nil
}

func (s *stubStorage) UpdateClipPlayback(_ context.Context, _ int64, _ *float64, _ *bool) error {
	return nil
}

func (s *stubStorage) DeleteClip(_ context.Context, id int64) error {
	s.deletedClips = append(s.deletedClips, id)
	return nil
}

func (s *stubStorage) Asset(_ context.Context, id int64) (models.Asset, error) {
	asset, ok := s.assets[id]
	if !ok {
		return models.Asset{}, storage.ErrAssetNotFound
	}
	return asset, nil
}

func newTimeline(s *stubStorage) *Timeline {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, s, s, s)
}

func TestNewTrackWithClipRetriesOnce(t *testing.T) {
	s := newStubStorage()
	s.createErrs = []error{storage.ErrOrderConflict}

	res, err := newTimeline(s).NewTrackWithClip(context.Background(), 1, 2, models.TrackTypeVideo, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, s.createCalls)
	assert.EqualValues(t, 1, res.Track.ID)
}

func TestNewTrackWithClipGivesUpAfterRetry(t *testing.T) {
	s := newStubStorage()
	s.createErrs = []error{storage.ErrOrderConflict, storage.ErrOrderConflict}

	_, err := newTimeline(s).NewTrackWithClip(context.Background(), 1, 2, models.TrackTypeVideo, 0)
	require.Error(t, err)

	assert.Equal(t, 2, s.createCalls)
}

func TestNewTrackWithClipNegativeStart(t *testing.T) {
	s := newStubStorage()

	_, err := newTimeline(s).NewTrackWithClip(context.Background(), 1, 2, models.TrackTypeVideo, -1)
	assert.ErrorIs(t, err, service.ErrInvalidStart)
	assert.Zero(t, s.createCalls)
}

func TestLockedTrackRejectsClipMutations(t *testing.T) {
	s := newStubStorage()
	s.tracks[1] = models.Track{ID: 1, ProjectID: 1, IsLocked: true}
	s.clips[5] = models.Clip{ID: 5, TrackID: 1, StartTimeMs: 100, DurationMs: 500}

	timeline := newTimeline(s)

	t.Run("add", func(t *testing.T) {
		_, err := timeline.AddClip(context.Background(), models.ClipIn{TrackID: 1})
		assert.ErrorIs(t, err, service.ErrTrackLocked)
	})
	t.Run("move", func(t *testing.T) {
		err := timeline.MoveClip(context.Background(), 5, 200)
		assert.ErrorIs(t, err, service.ErrTrackLocked)
		assert.Nil(t, s.movedTo)
	})
	t.Run("trim", func(t *testing.T) {
		err := timeline.UpdateClipTrim(context.Background(), 5, models.ClipTrim{AssetEndOffsetMs: 100, DurationMs: 100})
		assert.ErrorIs(t, err, service.ErrTrackLocked)
	})
	t.Run("delete clip", func(t *testing.T) {
		err := timeline.DeleteClip(context.Background(), 5)
		assert.ErrorIs(t, err, service.ErrTrackLocked)
		assert.Empty(t, s.deletedClips)
	})
	t.Run("delete track", func(t *testing.T) {
		err := timeline.DeleteTrack(context.Background(), 1)
		assert.ErrorIs(t, err, service.ErrTrackLocked)
	})
}

func TestUnlockedTrackAllowsClipMutations(t *testing.T) {
	s := newStubStorage()
	s.tracks[1] = models.Track{ID: 1, ProjectID: 1}
	s.clips[5] = models.Clip{ID: 5, TrackID: 1, StartTimeMs: 100, DurationMs: 500}

	timeline := newTimeline(s)

	require.NoError(t, timeline.MoveClip(context.Background(), 5, 200))
	require.NotNil(t, s.movedTo)
	assert.EqualValues(t, 200, *s.movedTo)

	require.NoError(t, timeline.DeleteClip(context.Background(), 5))
	assert.Equal(t, []int64{5}, s.deletedClips)
}

func TestAddClipDurationValidation(t *testing.T) {
	testCases := []struct {
		desc       string
		durationMs *int64
		expectErr  error
	}{
		{
			desc:       "positive duration",
			durationMs: ptr.Ptr[int64](500),
		},
		{
			desc: "nil duration copies the asset's",
		},
		{
			desc:       "zero duration",
			durationMs: ptr.Ptr[int64](0),
			expectErr:  service.ErrInvalidTrim,
		},
		{
			desc:       "negative duration",
			durationMs: ptr.Ptr[int64](-500),
			expectErr:  service.ErrInvalidTrim,
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			s := newStubStorage()
			s.tracks[1] = models.Track{ID: 1, ProjectID: 1}

			clip, err := newTimeline(s).AddClip(context.Background(), models.ClipIn{
				TrackID:    1,
				DurationMs: tC.durationMs,
			})

			if tC.expectErr != nil {
				assert.ErrorIs(t, err, tC.expectErr)
				assert.Empty(t, s.clips)
			} else {
				require.NoError(t, err)
				assert.Contains(t, s.clips, clip.ID)
			}
		})
	}
}

func TestUpdateClipTrimValidation(t *testing.T) {
	testCases := []struct {
		desc          string
		assetDuration *int64
		trim          models.ClipTrim
		expectErr     error
	}{
		{
			desc:          "valid window",
			assetDuration: ptr.Ptr[int64](12000),
			trim:          models.ClipTrim{AssetStartOffsetMs: 1000, AssetEndOffsetMs: 8000, DurationMs: 7000},
		},
		{
			desc:          "zero duration",
			assetDuration: ptr.Ptr[int64](12000),
			trim:          models.ClipTrim{AssetStartOffsetMs: 0, AssetEndOffsetMs: 100, DurationMs: 0},
			expectErr:     service.ErrInvalidTrim,
		},
		{
			desc:          "negative start offset",
			assetDuration: ptr.Ptr[int64](12000),
			trim:          models.ClipTrim{AssetStartOffsetMs: -1, AssetEndOffsetMs: 100, DurationMs: 100},
			expectErr:     service.ErrInvalidTrim,
		},
		{
			desc:          "start not before end",
			assetDuration: ptr.Ptr[int64](12000),
			trim:          models.ClipTrim{AssetStartOffsetMs: 5000, AssetEndOffsetMs: 5000, DurationMs: 100},
			expectErr:     service.ErrInvalidTrim,
		},
		{
			desc:          "end beyond asset",
			assetDuration: ptr.Ptr[int64](12000),
			trim:          models.ClipTrim{AssetStartOffsetMs: 0, AssetEndOffsetMs: 12001, DurationMs: 100},
			expectErr:     service.ErrInvalidTrim,
		},
		{
			desc:          "end at asset bound",
			assetDuration: ptr.Ptr[int64](12000),
			trim:          models.ClipTrim{AssetStartOffsetMs: 0, AssetEndOffsetMs: 12000, DurationMs: 12000},
		},
		{
			desc: "unknown asset duration skips bound",
			trim: models.ClipTrim{AssetStartOffsetMs: 0, AssetEndOffsetMs: 99999, DurationMs: 100},
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			s := newStubStorage()
			s.tracks[1] = models.Track{ID: 1, ProjectID: 1}
			assetID := int64(7)
			s.assets[assetID] = models.Asset{ID: assetID, ProjectID: 1, DurationMs: tC.assetDuration}
			s.clips[5] = models.Clip{ID: 5, TrackID: 1, AssetID: &assetID, DurationMs: 500}

			err := newTimeline(s).UpdateClipTrim(context.Background(), 5, tC.trim)

			if tC.expectErr != nil {
				assert.ErrorIs(t, err, tC.expectErr)
				assert.Nil(t, s.savedTrim)
			} else {
				require.NoError(t, err)
				require.NotNil(t, s.savedTrim)
				assert.Equal(t, tC.trim, *s.savedTrim)
			}
		})
	}
}

func TestUpdateClipTrimGapClip(t *testing.T) {
	s := newStubStorage()
	s.tracks[1] = models.Track{ID: 1, ProjectID: 1}
	s.clips[5] = models.Clip{ID: 5, TrackID: 1, DurationMs: 500}

	err := newTimeline(s).UpdateClipTrim(context.Background(), 5, models.ClipTrim{
		AssetStartOffsetMs: 0,
		AssetEndOffsetMs:   100,
		DurationMs:         100,
	})
	require.NoError(t, err)
}
