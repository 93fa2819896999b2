package controller

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	jwtController "github.com/icut-app/icut/internal/controller/jwt"
	"github.com/icut-app/icut/internal/service"
)

func New(
	srvRefs Refs,
	jwtC *jwtController.JWT,
) *fiber.App {
	refsCtr := refsController{
		srvRefs: srvRefs,
	}

	app := fiber.New()

	app.Use(jwtC.AuthRequired())

	app.Get("/", refsCtr.files)
	app.Post("/", refsCtr.saveFile)

	return app
}

type refsController struct {
	srvRefs Refs
}

type Refs interface {
	SaveFile(ctx context.Context, path string) (string, error)
	Files(ctx context.Context) ([]string, error)
}

func (refsCtr *refsController) saveFile(c *fiber.Ctx) error {
	var form struct {
		Path string `json:"path"`
	}

	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	if form.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "path required",
		})
	}

	path, err := refsCtr.srvRefs.SaveFile(context.TODO(), form.Path)
	if err != nil {
		if errors.Is(err, service.ErrFileNotExists) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "file does not exist",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"path": path,
	})
}

func (refsCtr *refsController) files(c *fiber.Ctx) error {
	files, err := refsCtr.srvRefs.Files(context.TODO())
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"files": files,
	})
}
