package tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/icut-app/icut/tests/suite"
)

func TestSaveFileReference(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	path, err := suite.TempMediaFile(t.TempDir(), "bookmark.mp4")
	require.NoError(t, err)

	e.POST("/refs").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]string{"path": path}).
		Expect().
		Status(200).
		JSON().
		Path("$.path").String().IsEqual(path)

	// saving again is a no-op
	e.POST("/refs").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]string{"path": path}).
		Expect().
		Status(200)

	files := e.GET("/refs").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().
		Path("$.files").Array()

	// the sidecar persists between runs, other bookmarks may exist
	files.ContainsAll(path)
}

func TestSaveFileReferenceMissing(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	e := newExpect(t)

	e.POST("/refs").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]string{"path": "/nowhere/gone.mp4"}).
		Expect().
		Status(422).
		JSON().
		Path("$.error").String().IsEqualFold("file does not exist")
}
