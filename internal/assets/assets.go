// Package assets handles model loading and caching.
package assets

import (
	"context"
	"fmt"
	"path"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/piecemodel/internal/engine/model"
	"github.com/Faultbox/piecemodel/internal/logger"
)

// Loader parses a model file. *model.Parser implements it.
type Loader interface {
	Load(path string) (*model.Model, error)
}

// Manager loads models through a Loader and caches finished results.
type Manager struct {
	loader Loader
	cache  *Cache
	flight singleflight.Group
	log    *zap.Logger

	// Limit bounds concurrent loads in LoadAll. Zero means unbounded.
	Limit int
}

// NewManager creates a new model manager.
func NewManager(loader Loader) *Manager {
	return &Manager{
		loader: loader,
		cache:  NewCache(),
		log:    logger.Section(logger.SectionAssets),
	}
}

func key(p string) string {
	return path.Clean(p)
}

// Load returns the cached model for p or parses it. Concurrent loads of the
// same path share one parse.
func (m *Manager) Load(p string) (*model.Model, error) {
	k := key(p)
	if mdl, ok := m.cache.Get(k); ok {
		return mdl, nil
	}

	v, err, _ := m.flight.Do(k, func() (any, error) {
		if mdl, ok := m.cache.Peek(k); ok {
			return mdl, nil
		}
		mdl, err := m.loader.Load(p)
		if err != nil {
			return nil, err
		}
		m.cache.Set(k, mdl)
		m.log.Debug("model cached", zap.String("path", k), zap.Int("pieces", mdl.NumPieces))
		return mdl, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", p, err)
	}
	return v.(*model.Model), nil
}

// LoadAll loads paths concurrently. Results are in input order. The first
// error cancels loads that have not started yet.
func (m *Manager) LoadAll(ctx context.Context, paths []string) ([]*model.Model, error) {
	out := make([]*model.Model, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if m.Limit > 0 {
		g.SetLimit(m.Limit)
	}
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mdl, err := m.Load(p)
			if err != nil {
				return err
			}
			out[i] = mdl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats returns cache hit and miss counts.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Len returns the number of cached models.
func (m *Manager) Len() int {
	return m.cache.Len()
}

// Clear drops every cached model.
func (m *Manager) Clear() {
	m.cache.Clear()
}

// Cache is an in-memory cache of loaded models.
type Cache struct {
	data map[string]*model.Model
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*model.Model),
	}
}

// Get retrieves an item from cache and counts the lookup.
func (c *Cache) Get(key string) (*model.Model, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mdl, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return mdl, ok
}

// Peek retrieves an item without touching the stats.
func (c *Cache) Peek(key string) (*model.Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mdl, ok := c.data[key]
	return mdl, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, mdl *model.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = mdl
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*model.Model)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
