package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/internal/storage"
)

// SaveProject creates a project and returns the stored row.
func (s *Storage) SaveProject(ctx context.Context, name string, frameRate, width, height int64) (models.Project, error) {
	const op = "storage.sqlite.SaveProject"

	stmt, err := s.db.Prepare("INSERT INTO projects(name, frame_rate, resolution_width, resolution_height) VALUES(?, ?, ?, ?)")
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, name, frameRate, width, height)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return models.Project{}, fmt.Errorf("%s: %w", op, storage.ErrConstraint)
		}

		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.Project(ctx, id)
}

// Project returns project by id.
func (s *Storage) Project(ctx context.Context, id int64) (models.Project, error) {
	const op = "storage.sqlite.Project"

	stmt, err := s.db.Prepare("SELECT id, name, duration_ms, frame_rate, resolution_width, resolution_height, created_at, updated_at FROM projects WHERE id = ?")
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, id)

	var project models.Project
	err = row.Scan(
		&project.ID,
		&project.Name,
		&project.DurationMs,
		&project.FrameRate,
		&project.ResolutionWidth,
		&project.ResolutionHeight,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Project{}, fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
		}

		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

// AllProjects returns all projects.
//
// If error occures during parsing, returns already parsed projects.
func (s *Storage) AllProjects(ctx context.Context) ([]models.Project, error) {
	const op = "storage.sqlite.AllProjects"

	stmt, err := s.db.Prepare("SELECT id, name, duration_ms, frame_rate, resolution_width, resolution_height, created_at, updated_at FROM projects")
	if err != nil {
		return []models.Project{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return []models.Project{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	var project models.Project
	for rows.Next() {
		if err = rows.Scan(
			&project.ID,
			&project.Name,
			&project.DurationMs,
			&project.FrameRate,
			&project.ResolutionWidth,
			&project.ResolutionHeight,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return projects, fmt.Errorf("%s: %w", op, err)
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// DeleteProject deletes project with its tracks, clips and assets.
func (s *Storage) DeleteProject(ctx context.Context, id int64) error {
	const op = "storage.sqlite.DeleteProject"

	stmt, err := s.db.Prepare("DELETE FROM projects WHERE id = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affectedRows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affectedRows == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
	}

	return nil
}
