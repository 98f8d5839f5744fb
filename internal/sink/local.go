package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Local writes artifacts into a directory on the local filesystem.
type Local struct {
	dir string
}

// NewLocal constructs a filesystem sink rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

func (l *Local) Location() string { return l.dir }

func (l *Local) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(l.dir, name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat artifact %s: %w", name, err)
}

func (l *Local) Store(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}
