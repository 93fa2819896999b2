package controller

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	jwtController "github.com/icut-app/icut/internal/controller/jwt"
	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/internal/service"
)

func New(
	srvTimeline Timeline,
	jwtC *jwtController.JWT,
) *fiber.App {
	timelineCtr := timelineController{
		srvTimeline: srvTimeline,
	}

	app := fiber.New()

	app.Use(jwtC.AuthRequired())

	// Tracks
	app.Post("/tracks", timelineCtr.newTrackWithClip)
	app.Get("/projects/:id/tracks", timelineCtr.tracksByProject)
	app.Put("/projects/:id/tracks/order", timelineCtr.reorderTracks)
	app.Patch("/tracks/:id", timelineCtr.setTrackFlags)
	app.Delete("/tracks/:id", timelineCtr.deleteTrack)

	// Clips
	app.Get("/tracks/:id/clips", timelineCtr.clipsByTrack)
	app.Post("/clips", timelineCtr.addClip)
	app.Patch("/clips/:id", timelineCtr.updateClip)
	app.Delete("/clips/:id", timelineCtr.deleteClip)

	return app
}

type timelineController struct {
	srvTimeline Timeline
}

type Timeline interface {
	NewTrackWithClip(ctx context.Context, projectID, assetID int64, trackType string, startTimeMs int64) (models.TrackWithClip, error)
	TracksByProject(ctx context.Context, projectID int64) ([]models.Track, error)
	SetTrackFlags(ctx context.Context, trackID int64, flags models.TrackFlags) error
	DeleteTrack(ctx context.Context, trackID int64) error
	ReorderTracks(ctx context.Context, projectID int64, orderedIDs []int64) error

	ClipsByTrack(ctx context.Context, trackID int64) ([]models.Clip, error)
	AddClip(ctx context.Context, in models.ClipIn) (models.Clip, error)
	MoveClip(ctx context.Context, clipID, startTimeMs int64) error
	UpdateClipTrim(ctx context.Context, clipID int64, trim models.ClipTrim) error
	UpdateClipPlayback(ctx context.Context, clipID int64, volume *float64, isMuted *bool) error
	DeleteClip(ctx context.Context, clipID int64) error
}

type newTrackForm struct {
	ProjectID   int64  `json:"project_id"`
	AssetID     int64  `json:"asset_id"`
	TrackType   string `json:"track_type"`
	StartTimeMs int64  `json:"start_time_ms"`
}

// newTrackWithClip creates a track at the end of the stacking
// order seeded with one full-asset clip.
func (timelineCtr *timelineController) newTrackWithClip(c *fiber.Ctx) error {
	form := new(newTrackForm)

	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}

	if form.ProjectID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "project_id required",
		})
	}
	if form.AssetID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "asset_id required",
		})
	}
	if form.TrackType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "track_type required",
		})
	}

	res, err := timelineCtr.srvTimeline.NewTrackWithClip(
		context.TODO(),
		form.ProjectID,
		form.AssetID,
		form.TrackType,
		form.StartTimeMs,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "project not found",
			})
		case errors.Is(err, service.ErrAssetNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "asset not found",
			})
		case errors.Is(err, service.ErrAssetWrongProject):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "asset belongs to another project",
			})
		case errors.Is(err, service.ErrInvalidStart):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "negative start time",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

// tracksByProject returns tracks in stacking order.
func (timelineCtr *timelineController) tracksByProject(c *fiber.Ctx) error {
	projectID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	tracks, err := timelineCtr.srvTimeline.TracksByProject(context.TODO(), projectID)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"tracks": tracks,
	})
}

func (timelineCtr *timelineController) reorderTracks(c *fiber.Ctx) error {
	projectID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	var form struct {
		TrackIDs []int64 `json:"track_ids"`
	}
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	if err := timelineCtr.srvTimeline.ReorderTracks(context.TODO(), projectID, form.TrackIDs); err != nil {
		if errors.Is(err, service.ErrBadTrackOrder) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "track order is not a permutation",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (timelineCtr *timelineController) setTrackFlags(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	form := new(models.TrackFlags)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}

	if err := timelineCtr.srvTimeline.SetTrackFlags(context.TODO(), id, *form); err != nil {
		if errors.Is(err, service.ErrTrackNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "track not found",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (timelineCtr *timelineController) deleteTrack(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	if err := timelineCtr.srvTimeline.DeleteTrack(context.TODO(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrTrackNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "track not found",
			})
		case errors.Is(err, service.ErrTrackLocked):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "track is locked",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}

// clipsByTrack returns clips sorted by start time.
func (timelineCtr *timelineController) clipsByTrack(c *fiber.Ctx) error {
	trackID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	clips, err := timelineCtr.srvTimeline.ClipsByTrack(context.TODO(), trackID)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"clips": clips,
	})
}

func (timelineCtr *timelineController) addClip(c *fiber.Ctx) error {
	form := new(models.ClipIn)

	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}

	if form.TrackID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "track_id required",
		})
	}

	clip, err := timelineCtr.srvTimeline.AddClip(context.TODO(), *form)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrackNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "track not found",
			})
		case errors.Is(err, service.ErrAssetNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "asset not found",
			})
		case errors.Is(err, service.ErrAssetWrongProject):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "asset belongs to another project",
			})
		case errors.Is(err, service.ErrTrackLocked):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "track is locked",
			})
		case errors.Is(err, service.ErrInvalidStart):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "negative start time",
			})
		case errors.Is(err, service.ErrInvalidTrim):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "duration must be positive",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"clip": clip,
	})
}

type updateClipForm struct {
	StartTimeMs *int64           `json:"start_time_ms"`
	Trim        *models.ClipTrim `json:"trim"`
	Volume      *float64         `json:"volume"`
	IsMuted     *bool            `json:"is_muted"`
}

// updateClip applies move, trim and playback updates,
// whichever parts the body carries.
func (timelineCtr *timelineController) updateClip(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	form := new(updateClipForm)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}

	if form.StartTimeMs == nil && form.Trim == nil && form.Volume == nil && form.IsMuted == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "nothing to update",
		})
	}

	ctx := context.TODO()

	if form.StartTimeMs != nil {
		if err := timelineCtr.srvTimeline.MoveClip(ctx, id, *form.StartTimeMs); err != nil {
			return timelineCtr.clipError(c, err)
		}
	}

	if form.Trim != nil {
		if err := timelineCtr.srvTimeline.UpdateClipTrim(ctx, id, *form.Trim); err != nil {
			return timelineCtr.clipError(c, err)
		}
	}

	if form.Volume != nil || form.IsMuted != nil {
		if err := timelineCtr.srvTimeline.UpdateClipPlayback(ctx, id, form.Volume, form.IsMuted); err != nil {
			return timelineCtr.clipError(c, err)
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

func (timelineCtr *timelineController) deleteClip(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	if err := timelineCtr.srvTimeline.DeleteClip(context.TODO(), id); err != nil {
		return timelineCtr.clipError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (timelineCtr *timelineController) clipError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrClipNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "clip not found",
		})
	case errors.Is(err, service.ErrTrackNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "track not found",
		})
	case errors.Is(err, service.ErrTrackLocked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "track is locked",
		})
	case errors.Is(err, service.ErrInvalidTrim):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "invalid trim window",
		})
	case errors.Is(err, service.ErrInvalidStart):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "negative start time",
		})
	}

	return c.SendStatus(fiber.StatusInternalServerError)
}
