package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ptr "github.com/icut-app/icut/internal/lib/utils/pointers"
	"github.com/icut-app/icut/internal/models"
)

func TestClipGapSerializesNullAsset(t *testing.T) {
	clip := models.Clip{ID: 1, TrackID: 2, DurationMs: 100, Volume: 1.0}

	data, err := json.Marshal(clip)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"asset_id":null`)
}

func TestProjectInOmittedFieldsStayNil(t *testing.T) {
	var in models.ProjectIn
	require.NoError(t, json.Unmarshal([]byte(`{"name":"demo"}`), &in))

	assert.Equal(t, "demo", in.Name)
	assert.Nil(t, in.FrameRate)
	assert.Nil(t, in.ResolutionWidth)
	assert.Nil(t, in.ResolutionHeight)
}

func TestTrackFlagsPartialDecode(t *testing.T) {
	var flags models.TrackFlags
	require.NoError(t, json.Unmarshal([]byte(`{"is_locked":true}`), &flags))

	require.NotNil(t, flags.IsLocked)
	assert.True(t, *flags.IsLocked)
	assert.Nil(t, flags.IsMuted)
}

func TestClipInExplicitDuration(t *testing.T) {
	var in models.ClipIn
	require.NoError(t, json.Unmarshal([]byte(`{"track_id":3,"asset_id":7,"start_time_ms":250,"duration_ms":400}`), &in))

	assert.Equal(t, models.ClipIn{
		TrackID:     3,
		AssetID:     ptr.Ptr[int64](7),
		StartTimeMs: 250,
		DurationMs:  ptr.Ptr[int64](400),
	}, in)
}
