package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/icut-app/icut/internal/lib/logger/sl"
	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/internal/service"
)

// Refs keeps the list of file paths the user bookmarked,
// outside the project model. The list lives in a JSON sidecar
// file, deduplicated by path and filtered to existing files
// on read.
type Refs struct {
	log      *slog.Logger
	refsFile string

	mu sync.Mutex
}

func New(
	log *slog.Logger,
	refsFile string,
) *Refs {
	return &Refs{
		log:      log,
		refsFile: refsFile,
	}
}

// SaveFile bookmarks a path. The file must exist.
// Bookmarking an already known path is a no-op.
func (r *Refs) SaveFile(_ context.Context, path string) (string, error) {
	const op = "Refs.SaveFile"

	log := r.log.With(
		slog.String("op", op),
	)

	if _, err := os.Stat(path); err != nil {
		log.Warn("file does not exist", slog.String("path", path))
		return "", fmt.Errorf("%s: %w", op, service.ErrFileNotExists)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	refs, err := r.read()
	if err != nil {
		log.Error("failed to read references", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	for _, ref := range refs {
		if ref.Path == path {
			return path, nil
		}
	}

	refs = append(refs, models.FileReference{Path: path})

	if err := r.write(refs); err != nil {
		log.Error("failed to write references", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("bookmarked file", slog.String("path", path))

	return path, nil
}

// Files returns bookmarked paths that still exist on disk.
// A missing references file gives an empty list.
func (r *Refs) Files(_ context.Context) ([]string, error) {
	const op = "Refs.Files"

	r.mu.Lock()
	defer r.mu.Unlock()

	refs, err := r.read()
	if err != nil {
		r.log.Error("failed to read references", slog.String("op", op), sl.Err(err))
		return []string{}, fmt.Errorf("%s: %w", op, err)
	}

	files := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, err := os.Stat(ref.Path); err == nil {
			files = append(files, ref.Path)
		}
	}

	return files, nil
}

func (r *Refs) read() ([]models.FileReference, error) {
	data, err := os.ReadFile(r.refsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.FileReference{}, nil
		}

		return nil, err
	}

	refs := make([]models.FileReference, 0)
	if err := json.Unmarshal(data, &refs); err != nil {
		// Corrupt references are not fatal, start over.
		return []models.FileReference{}, nil
	}

	return refs, nil
}

func (r *Refs) write(refs []models.FileReference) error {
	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.refsFile), 0o755); err != nil {
		return err
	}

	return os.WriteFile(r.refsFile, data, 0o644)
}
