package tests

import (
	"net/url"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/require"

	ptr "github.com/icut-app/icut/internal/lib/utils/pointers"
	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/tests/suite"
)

func newExpect(t *testing.T) *httpexpect.Expect {
	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}

	return httpexpect.Default(t, u.String())
}

func createProject(e *httpexpect.Expect, token string) int64 {
	id := e.POST("/projects").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProjectIn{
			Name: suite.RandomProjectName(),
		}).
		Expect().
		Status(200).
		JSON().
		Path("$.project.id").
		Number().
		Raw()

	return int64(id)
}

func createAsset(e *httpexpect.Expect, token string, projectID, durationMs int64) int64 {
	id := e.POST("/assets").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.AssetIn{
			ProjectID:     projectID,
			FilePath:      "/media/" + gofakeit.Word() + ".mp4",
			AssetType:     models.AssetTypeVideo,
			DurationMs:    ptr.Ptr(durationMs),
			FileSizeBytes: int64(gofakeit.Number(1000, 1000000)),
		}).
		Expect().
		Status(200).
		JSON().
		Path("$.asset.id").
		Number().
		Raw()

	return int64(id)
}

func createTrack(e *httpexpect.Expect, token string, projectID, assetID int64) int64 {
	id := e.POST("/timeline/tracks").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"project_id": projectID,
			"asset_id":   assetID,
			"track_type": models.TrackTypeVideo,
		}).
		Expect().
		Status(200).
		JSON().
		Path("$.track.id").
		Number().
		Raw()

	return int64(id)
}

func TestCreateTrackWithClip(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	projectID := createProject(e, token)
	assetID := createAsset(e, token, projectID, 12000)

	json := e.POST("/timeline/tracks").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"project_id":    projectID,
			"asset_id":      assetID,
			"track_type":    models.TrackTypeVideo,
			"start_time_ms": 5000,
		}).
		Expect().
		Status(200).
		JSON()

	json.Object().Keys().ContainsOnly("track", "clip")

	json.Path("$.track.project_id").Number().IsEqual(projectID)
	json.Path("$.track.order_index").Number().IsEqual(0)
	json.Path("$.track.is_locked").Boolean().IsFalse()

	// seeded clip covers the whole asset
	json.Path("$.clip.asset_id").Number().IsEqual(assetID)
	json.Path("$.clip.start_time_ms").Number().IsEqual(5000)
	json.Path("$.clip.duration_ms").Number().IsEqual(12000)
	json.Path("$.clip.asset_start_offset_ms").Number().IsEqual(0)
	json.Path("$.clip.asset_end_offset_ms").Number().IsEqual(0)
	json.Path("$.clip.volume").Number().IsEqual(1)

	// the project duration follows the clip
	e.GET("/projects/{id}", projectID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().
		Path("$.project.duration_ms").Number().IsEqual(17000)
}

func TestCreateTrackWithClipUnknownAsset(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	projectID := createProject(e, token)

	e.POST("/timeline/tracks").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"project_id": projectID,
			"asset_id":   int64(1 << 40),
			"track_type": models.TrackTypeVideo,
		}).
		Expect().
		Status(404).
		JSON().
		Path("$.error").String().IsEqualFold("asset not found")

	// nothing may be left behind
	e.GET("/timeline/projects/{id}/tracks", projectID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().
		Path("$.tracks").Array().IsEmpty()
}

func TestTrackOrderAppends(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	projectID := createProject(e, token)
	assetID := createAsset(e, token, projectID, 8000)

	first := createTrack(e, token, projectID, assetID)
	second := createTrack(e, token, projectID, assetID)

	json := e.GET("/timeline/projects/{id}/tracks", projectID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON()

	tracks := json.Path("$.tracks").Array()
	tracks.Length().IsEqual(2)
	tracks.Value(0).Object().Value("id").Number().IsEqual(first)
	tracks.Value(0).Object().Value("order_index").Number().IsEqual(0)
	tracks.Value(1).Object().Value("id").Number().IsEqual(second)
	tracks.Value(1).Object().Value("order_index").Number().IsEqual(1)
}

func TestReorderTracks(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	projectID := createProject(e, token)
	assetID := createAsset(e, token, projectID, 8000)

	first := createTrack(e, token, projectID, assetID)
	second := createTrack(e, token, projectID, assetID)

	e.PUT("/timeline/projects/{id}/tracks/order", projectID).
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string][]int64{
			"track_ids": {second, first},
		}).
		Expect().
		Status(200)

	json := e.GET("/timeline/projects/{id}/tracks", projectID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON()

	tracks := json.Path("$.tracks").Array()
	tracks.Value(0).Object().Value("id").Number().IsEqual(second)
	tracks.Value(1).Object().Value("id").Number().IsEqual(first)
}

func TestReorderTracksRejectsPartialList(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	projectID := createProject(e, token)
	assetID := createAsset(e, token, projectID, 8000)

	first := createTrack(e, token, projectID, assetID)
	createTrack(e, token, projectID, assetID)

	e.PUT("/timeline/projects/{id}/tracks/order", projectID).
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string][]int64{
			"track_ids": {first},
		}).
		Expect().
		Status(409)
}

func TestLockedTrackRejectsMutations(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	projectID := createProject(e, token)
	assetID := createAsset(e, token, projectID, 8000)
	trackID := createTrack(e, token, projectID, assetID)

	e.PATCH("/timeline/tracks/{id}", trackID).
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.TrackFlags{
			IsLocked: ptr.Ptr(true),
		}).
		Expect().
		Status(200)

	e.POST("/timeline/clips").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ClipIn{
			TrackID: trackID,
			AssetID: ptr.Ptr(assetID),
		}).
		Expect().
		Status(409).
		JSON().
		Path("$.error").String().IsEqualFold("track is locked")

	e.DELETE("/timeline/tracks/{id}", trackID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(409)

	// unlock and the same delete goes through
	e.PATCH("/timeline/tracks/{id}", trackID).
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.TrackFlags{
			IsLocked: ptr.Ptr(false),
		}).
		Expect().
		Status(200)

	e.DELETE("/timeline/tracks/{id}", trackID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200)
}

func TestClipTrim(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	projectID := createProject(e, token)
	assetID := createAsset(e, token, projectID, 12000)
	trackID := createTrack(e, token, projectID, assetID)

	clipID := int64(e.GET("/timeline/tracks/{id}/clips", trackID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().
		Path("$.clips[0].id").
		Number().
		Raw())

	e.PATCH("/timeline/clips/{id}", clipID).
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"trim": models.ClipTrim{
				AssetStartOffsetMs: 1000,
				AssetEndOffsetMs:   8000,
				DurationMs:         7000,
			},
		}).
		Expect().
		Status(200)

	json := e.GET("/timeline/tracks/{id}/clips", trackID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON()

	json.Path("$.clips[0].asset_start_offset_ms").Number().IsEqual(1000)
	json.Path("$.clips[0].asset_end_offset_ms").Number().IsEqual(8000)
	json.Path("$.clips[0].duration_ms").Number().IsEqual(7000)
}

func TestClipTrimBeyondAsset(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	projectID := createProject(e, token)
	assetID := createAsset(e, token, projectID, 12000)
	trackID := createTrack(e, token, projectID, assetID)

	clipID := int64(e.GET("/timeline/tracks/{id}/clips", trackID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().
		Path("$.clips[0].id").
		Number().
		Raw())

	e.PATCH("/timeline/clips/{id}", clipID).
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"trim": models.ClipTrim{
				AssetStartOffsetMs: 0,
				AssetEndOffsetMs:   20000,
				DurationMs:         20000,
			},
		}).
		Expect().
		Status(422).
		JSON().
		Path("$.error").String().IsEqualFold("invalid trim window")
}

func TestClipMove(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	projectID := createProject(e, token)
	assetID := createAsset(e, token, projectID, 6000)
	trackID := createTrack(e, token, projectID, assetID)

	clipID := int64(e.GET("/timeline/tracks/{id}/clips", trackID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().
		Path("$.clips[0].id").
		Number().
		Raw())

	e.PATCH("/timeline/clips/{id}", clipID).
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"start_time_ms": 4000,
		}).
		Expect().
		Status(200)

	e.GET("/projects/{id}", projectID).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().
		Path("$.project.duration_ms").Number().IsEqual(10000)
}
