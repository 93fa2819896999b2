package datadir

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "icut"

// Resolve returns the application data directory,
// creating it if it does not exist yet.
func Resolve() (string, error) {
	const op = "datadir.Resolve"

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return dir, nil
}

// MustResolve panics if the data directory cannot be created.
// Used only at startup.
func MustResolve() string {
	dir, err := Resolve()
	if err != nil {
		panic("cannot resolve data dir: " + err.Error())
	}

	return dir
}
