// Package catalog caches the table definitions of the live database.
//
// The snapshot is loaded at most once per process (startup preload or first
// use) and never mutated afterwards, so reads take no locks.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"sales_backend/internal/logger"
	"sales_backend/internal/models"
)

var (
	// ErrTableNotFound is returned when a name is absent from the loaded snapshot.
	ErrTableNotFound = errors.New("table not found")
	// ErrNotLoaded is returned by the eager accessors before any load completed.
	ErrNotLoaded = errors.New("catalog not loaded")
)

// Loader introspects the database. *repositories.SchemaRepository implements it.
type Loader interface {
	LoadTables(ctx context.Context) ([]*models.TableDefinition, error)
}

type snapshot struct {
	tables map[string]*models.TableDefinition
	names  []string
}

type Catalog struct {
	loader   Loader
	group    singleflight.Group
	current  atomic.Pointer[snapshot]
	onLoaded func(tables int)
}

func New(loader Loader) *Catalog {
	return &Catalog{loader: loader}
}

// OnLoaded registers a hook invoked once after the physical load.
func (c *Catalog) OnLoaded(fn func(tables int)) {
	c.onLoaded = fn
}

// EnsureLoaded loads the snapshot unless it is already present. Concurrent
// first callers share one physical load; a failed load is retried by the next
// caller.
func (c *Catalog) EnsureLoaded(ctx context.Context) error {
	if c.current.Load() != nil {
		return nil
	}
	_, err, _ := c.group.Do("load", func() (any, error) {
		if c.current.Load() != nil {
			return nil, nil
		}
		// Waiters share this load, so one caller's cancellation must not fail it.
		defs, err := c.loader.LoadTables(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		snap := &snapshot{tables: make(map[string]*models.TableDefinition, len(defs))}
		for _, d := range defs {
			snap.tables[d.Name] = d
			snap.names = append(snap.names, d.Name)
		}
		sort.Strings(snap.names)
		c.current.Store(snap)

		logger.From(ctx).Info("catalog loaded", logger.Count(len(defs)))
		if c.onLoaded != nil {
			c.onLoaded(len(defs))
		}
		return nil, nil
	})
	return err
}

// RequireLoaded reports ErrNotLoaded when no snapshot exists yet.
func (c *Catalog) RequireLoaded() error {
	if c.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}

// Resolve loads the catalog if needed and returns the named table.
func (c *Catalog) Resolve(ctx context.Context, name string) (*models.TableDefinition, error) {
	if err := c.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return c.ResolveLoaded(name)
}

// ResolveLoaded returns the named table without triggering a load.
func (c *Catalog) ResolveLoaded(name string) (*models.TableDefinition, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	t, ok := snap.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	return t, nil
}

// Tables returns every loaded definition ordered by name.
func (c *Catalog) Tables() ([]*models.TableDefinition, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	out := make([]*models.TableDefinition, len(snap.names))
	for i, n := range snap.names {
		out[i] = snap.tables[n]
	}
	return out, nil
}
