// Package source provides the places entry bytes are read from.
//
// A Source returns the raw bytes of a path. When the path does not exist the
// returned error must match fs.ErrNotExist (errors.Is); every other failure is
// treated by callers as a read error for that entry only.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

type Source interface {
	// Name identifies the source in diagnostics and reports.
	Name() string
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// ErrIsDir is returned when an entry names a directory.
var ErrIsDir = errors.New("is a directory")

// DirSource reads entries from the local filesystem.
type DirSource struct {
	root string
}

// Dir returns a Source resolving relative paths against root. An empty root
// means the working directory.
func Dir(root string) *DirSource {
	if root == "" {
		root = "."
	}
	return &DirSource{root: root}
}

func (d *DirSource) Name() string {
	return "dir:" + d.root
}

func (d *DirSource) resolve(name string) string {
	if filepath.IsAbs(name) || d.root == "." {
		return name
	}
	return filepath.Join(d.root, name)
}

// ReadFile opens, fully reads and closes one file.
func (d *DirSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(d.resolve(name))
	if err != nil {
		// A path through a regular file ("a.txt/b") does not exist either.
		if errors.Is(err, syscall.ENOTDIR) {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: ErrIsDir}
	}

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}
