// Package vfs provides the file lookup used to find models, metadata and
// textures across one or more data roots.
package vfs

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// ErrNotFound is returned when no root holds the requested file.
var ErrNotFound = errors.New("file not found")

// FileSystem is slash-separated, root-relative file access.
type FileSystem interface {
	Exists(name string) bool
	// FindFiles lists the files directly inside dir whose base name matches
	// pattern, case-insensitively, sorted by name.
	FindFiles(dir, pattern string) []string
	ReadFile(name string) ([]byte, error)
}

// Resolver maps a virtual name to a path on the host filesystem.
type Resolver interface {
	RealPath(name string) (string, bool)
}

// QuoteMeta escapes the pattern metacharacters in s so it matches literally
// in FindFiles.
func QuoteMeta(s string) string {
	return glob.QuoteMeta(s)
}

// DirFS serves files below a host directory.
type DirFS struct {
	root string

	mu    sync.Mutex
	globs map[string]glob.Glob
}

// NewDirFS creates a DirFS rooted at dir.
func NewDirFS(dir string) *DirFS {
	return &DirFS{
		root:  dir,
		globs: make(map[string]glob.Glob),
	}
}

// Root returns the host directory.
func (d *DirFS) Root() string {
	return d.root
}

func (d *DirFS) hostPath(name string) string {
	clean := path.Clean("/" + filepath.ToSlash(name))
	return filepath.Join(d.root, filepath.FromSlash(clean))
}

// Exists reports whether name is a regular file.
func (d *DirFS) Exists(name string) bool {
	if name == "" {
		return false
	}
	info, err := os.Stat(d.hostPath(name))
	return err == nil && info.Mode().IsRegular()
}

// RealPath returns the host path of name if it exists.
func (d *DirFS) RealPath(name string) (string, bool) {
	if !d.Exists(name) {
		return "", false
	}
	return d.hostPath(name), true
}

// ReadFile reads name.
func (d *DirFS) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(d.hostPath(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// FindFiles lists regular files in dir matching pattern.
func (d *DirFS) FindFiles(dir, pattern string) []string {
	g, err := d.compile(pattern)
	if err != nil {
		return nil
	}

	entries, err := os.ReadDir(d.hostPath(dir))
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if g.Match(strings.ToLower(e.Name())) {
			out = append(out, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out
}

func (d *DirFS) compile(pattern string) (glob.Glob, error) {
	pattern = strings.ToLower(pattern)

	d.mu.Lock()
	defer d.mu.Unlock()

	if g, ok := d.globs[pattern]; ok {
		return g, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	d.globs[pattern] = g
	return g, nil
}
