package vfs

import (
	"fmt"
	"sort"
	"sync"
)

// Layered searches several file systems. Layers are searched in reverse
// order (last added = highest priority).
type Layered struct {
	layers []FileSystem
	mu     sync.RWMutex
}

// NewLayered creates a Layered file system from the given layers, lowest
// priority first.
func NewLayered(layers ...FileSystem) *Layered {
	return &Layered{layers: layers}
}

// Add appends a layer with the highest priority.
func (l *Layered) Add(fs FileSystem) {
	l.mu.Lock()
	l.layers = append(l.layers, fs)
	l.mu.Unlock()
}

// Len returns the number of layers.
func (l *Layered) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.layers)
}

// Exists reports whether any layer holds name.
func (l *Layered) Exists(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.layers) - 1; i >= 0; i-- {
		if l.layers[i].Exists(name) {
			return true
		}
	}
	return false
}

// ReadFile reads name from the highest-priority layer holding it.
func (l *Layered) ReadFile(name string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.layers) - 1; i >= 0; i-- {
		if l.layers[i].Exists(name) {
			return l.layers[i].ReadFile(name)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// FindFiles merges the matches of every layer.
func (l *Layered) FindFiles(dir, pattern string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for i := len(l.layers) - 1; i >= 0; i-- {
		for _, f := range l.layers[i].FindFiles(dir, pattern) {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// RealPath resolves name through the first layer that can map it to a host
// path.
func (l *Layered) RealPath(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.layers) - 1; i >= 0; i-- {
		r, ok := l.layers[i].(Resolver)
		if !ok {
			continue
		}
		if p, ok := r.RealPath(name); ok {
			return p, true
		}
	}
	return "", false
}
