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
	srvLibrary Library,
	jwtC *jwtController.JWT,
) *fiber.App {
	libraryCtr := libraryController{
		srvLibrary: srvLibrary,
	}

	app := fiber.New()

	app.Use(jwtC.AuthRequired())

	app.Post("/", libraryCtr.addAsset)
	app.Get("/project/:id", libraryCtr.assetsByProject)
	app.Get("/project/:id/search", libraryCtr.searchAssets)
	app.Get("/:id", libraryCtr.asset)
	app.Delete("/:id", libraryCtr.deleteAsset)

	return app
}

type libraryController struct {
	srvLibrary Library
}

type Library interface {
	AddAsset(ctx context.Context, in models.AssetIn) (models.Asset, error)
	Asset(ctx context.Context, id int64) (models.Asset, error)
	AssetsByProject(ctx context.Context, projectID int64) ([]models.Asset, error)
	SearchAssets(ctx context.Context, projectID int64, filter models.AssetFilter) ([]models.Asset, error)
	DeleteAsset(ctx context.Context, id int64) error
}

// addAsset registers an imported media file.
func (libraryCtr *libraryController) addAsset(c *fiber.Ctx) error {
	form := new(models.AssetIn)

	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}

	if form.ProjectID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "project_id required",
		})
	}
	if form.FilePath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file_path required",
		})
	}

	asset, err := libraryCtr.srvLibrary.AddAsset(context.TODO(), *form)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "project not found",
			})
		case errors.Is(err, service.ErrFileNotExists):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "cannot detect asset type",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"asset": asset,
	})
}

func (libraryCtr *libraryController) assetsByProject(c *fiber.Ctx) error {
	projectID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	assets, err := libraryCtr.srvLibrary.AssetsByProject(context.TODO(), projectID)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"assets": assets,
	})
}

// searchAssets returns assets ranked by file name similarity
// to the query.
func (libraryCtr *libraryController) searchAssets(c *fiber.Ctx) error {
	projectID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	filter := models.AssetFilter{
		Query:      c.Query("q"),
		MaxRespLen: c.QueryInt("res_len"),
	}

	assets, err := libraryCtr.srvLibrary.SearchAssets(context.TODO(), projectID, filter)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"assets": assets,
	})
}

func (libraryCtr *libraryController) asset(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	asset, err := libraryCtr.srvLibrary.Asset(context.TODO(), id)
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "asset not found",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"asset": asset,
	})
}

func (libraryCtr *libraryController) deleteAsset(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	if err := libraryCtr.srvLibrary.DeleteAsset(context.TODO(), id); err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "asset not found",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}
