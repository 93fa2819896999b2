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
	srvProject Project,
	jwtC *jwtController.JWT,
) *fiber.App {
	projectCtr := projectController{
		srvProject: srvProject,
	}

	app := fiber.New()

	app.Use(jwtC.AuthRequired())

	app.Get("/", projectCtr.allProjects)
	app.Post("/", projectCtr.newProject)
	app.Get("/:id", projectCtr.project)
	app.Delete("/:id", projectCtr.deleteProject)

	return app
}

type projectController struct {
	srvProject Project
}

type Project interface {
	NewProject(ctx context.Context, in models.ProjectIn) (models.Project, error)
	Project(ctx context.Context, id int64) (models.Project, error)
	AllProjects(ctx context.Context) ([]models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

// allProjects returns all projects. Empty store gives
// an empty list.
func (projectCtr *projectController) allProjects(c *fiber.Ctx) error {
	projects, err := projectCtr.srvProject.AllProjects(context.TODO())
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"projects": projects,
	})
}

// newProject creates a project; omitted frame rate and
// resolution fall back to defaults.
func (projectCtr *projectController) newProject(c *fiber.Ctx) error {
	form := new(models.ProjectIn)

	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}

	if form.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name required",
		})
	}

	project, err := projectCtr.srvProject.NewProject(context.TODO(), *form)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"project": project,
	})
}

func (projectCtr *projectController) project(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	project, err := projectCtr.srvProject.Project(context.TODO(), id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "project not found",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"project": project,
	})
}

func (projectCtr *projectController) deleteProject(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	if err := projectCtr.srvProject.DeleteProject(context.TODO(), id); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "project not found",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}
