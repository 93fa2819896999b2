package tests

import (
	"net/url"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/require"

	ptr "github.com/icut-app/icut/internal/lib/utils/pointers"
	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/tests/suite"
)

func TestProjectsRequireAuth(t *testing.T) {
	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

	e.GET("/projects").
		Expect().
		Status(401)
}

func TestCreateProjectDefaults(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

	name := suite.RandomProjectName()

	json := e.POST("/projects").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProjectIn{
			Name: name,
		}).
		Expect().
		Status(200).
		JSON()

	json.Object().Keys().ContainsOnly("project")
	json.Path("$.project.name").String().IsEqual(name)
	json.Path("$.project.frame_rate").Number().IsEqual(models.DefaultFrameRate)
	json.Path("$.project.resolution_width").Number().IsEqual(models.DefaultResolutionWidth)
	json.Path("$.project.resolution_height").Number().IsEqual(models.DefaultResolutionHeight)
	json.Path("$.project.duration_ms").Number().IsEqual(0)
}

func TestCreateProjectExplicitSettings(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

	json := e.POST("/projects").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProjectIn{
			Name:             suite.RandomProjectName(),
			FrameRate:        ptr.Ptr[int64](24),
			ResolutionWidth:  ptr.Ptr[int64](3840),
			ResolutionHeight: ptr.Ptr[int64](2160),
		}).
		Expect().
		Status(200).
		JSON()

	json.Path("$.project.frame_rate").Number().IsEqual(24)
	json.Path("$.project.resolution_width").Number().IsEqual(3840)
	json.Path("$.project.resolution_height").Number().IsEqual(2160)
}

func TestCreateProjectEmptyName(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

	e.POST("/projects").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProjectIn{}).
		Expect().
		Status(400).
		JSON().
		Path("$.error").String().IsEqualFold("name required")
}

func TestGetProjectNotFound(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

	e.GET("/projects/{id}", int64(1<<40)).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(404).
		JSON().
		Path("$.error").String().IsEqualFold("project not found")
}

func TestDeleteProject(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

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

	e.DELETE("/projects/{id}", int64(id)).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200)

	e.GET("/projects/{id}", int64(id)).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(404)
}
