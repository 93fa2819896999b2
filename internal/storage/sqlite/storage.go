package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Storage struct {
	db *sql.DB
}

// New opens the store and applies pending migrations.
// The four timeline relations exist before any operation runs.
func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"

	// _txlock=immediate takes the write lock at BEGIN, so two
	// concurrent composite creations serialize instead of
	// deadlocking on lock upgrade.
	db, err := sql.Open("sqlite3", storagePath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Storage{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (s *Storage) Stop() error {
	return s.db.Close()
}

// migrate applies forward-only ordered migrations.
func (s *Storage) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// refreshProjectDuration recomputes the project duration aggregate
// from its clips. Must run inside the transaction that changed them.
func refreshProjectDuration(ctx context.Context, tx *sql.Tx, projectID int64) error {
	_, err := tx.ExecContext(
		ctx,
		`UPDATE projects
		SET duration_ms = (
			SELECT COALESCE(MAX(c.start_time_ms + c.duration_ms), 0)
			FROM clips c
			JOIN tracks t ON c.track_id = t.id
			WHERE t.project_id = projects.id
		), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		projectID,
	)

	return err
}
