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

type Project struct {
	log            *slog.Logger
	projectStorage ProjectStorage
}

type ProjectStorage interface {
	SaveProject(ctx context.Context, name string, frameRate, width, height int64) (models.Project, error)
	Project(ctx context.Context, id int64) (models.Project, error)
	AllProjects(ctx context.Context) ([]models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

func New(
	log *slog.Logger,
	projectStorage ProjectStorage,
) *Project {
	return &Project{
		log:            log,
		projectStorage: projectStorage,
	}
}

// NewProject creates a project and returns the stored record.
// Omitted timeline settings fall back to 30 fps, 1920x1080.
func (p *Project) NewProject(ctx context.Context, in models.ProjectIn) (models.Project, error) {
	const op = "Project.NewProject"

	log := p.log.With(
		slog.String("op", op),
	)

	log.Info("creating project", slog.String("name", in.Name))

	frameRate := models.DefaultFrameRate
	if in.FrameRate != nil {
		frameRate = *in.FrameRate
	}
	width := models.DefaultResolutionWidth
	if in.ResolutionWidth != nil {
		width = *in.ResolutionWidth
	}
	height := models.DefaultResolutionHeight
	if in.ResolutionHeight != nil {
		height = *in.ResolutionHeight
	}

	project, err := p.projectStorage.SaveProject(ctx, in.Name, frameRate, width, height)
	if err != nil {
		log.Error("failed to save project", sl.Err(err))
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info(
		"created project",
		slog.Int64("id", project.ID),
		slog.String("name", project.Name),
	)

	return project, nil
}

// Project returns project by given id.
//
// If project with given id does not exist, returns error.
func (p *Project) Project(ctx context.Context, id int64) (models.Project, error) {
	const op = "Project.Project"

	log := p.log.With(
		slog.String("op", op),
	)

	project, err := p.projectStorage.Project(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			log.Warn("project not found", slog.Int64("id", id))
			return models.Project{}, fmt.Errorf("%s: %w", op, service.ErrProjectNotFound)
		}
		log.Error("failed to get project", slog.Int64("id", id), sl.Err(err))
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

// AllProjects returns all projects.
// Empty store gives an empty slice, not an error.
func (p *Project) AllProjects(ctx context.Context) ([]models.Project, error) {
	const op = "Project.AllProjects"

	log := p.log.With(
		slog.String("op", op),
	)

	projects, err := p.projectStorage.AllProjects(ctx)
	if err != nil {
		log.Error("failed to list projects", sl.Err(err))
		return []models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

// DeleteProject deletes project cascading to its
// tracks, clips and assets.
func (p *Project) DeleteProject(ctx context.Context, id int64) error {
	const op = "Project.DeleteProject"

	log := p.log.With(
		slog.String("op", op),
	)

	log.Info("deleting project", slog.Int64("id", id))

	if err := p.projectStorage.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			log.Warn("project not found", slog.Int64("id", id))
			return fmt.Errorf("%s: %w", op, service.ErrProjectNotFound)
		}
		log.Error("failed to delete project", slog.Int64("id", id), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
