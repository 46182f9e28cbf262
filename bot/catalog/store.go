package catalog

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/themebot/core/logger"
)

// Store owns the current snapshot. Readers never lock; reloads swap the pointer.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store serving snap.
func NewStore(snap *Snapshot) *Store {
	s := &Store{}
	s.current.Store(snap)
	return s
}

// LoadOrDemo loads path and falls back to the demo dataset on failure.
// The returned error is the load failure, if any; the store is always usable.
func LoadOrDemo(ctx context.Context, path string) (*Store, error) {
	snap, err := Load(path)
	if err != nil {
		logger.LogEvent(ctx, logger.Catalog, slog.LevelWarn, "catalog.fallback",
			slog.String("path", path),
			slog.String("reason", "load_failed"),
			slog.String("err", err.Error()),
		)
		return NewStore(Demo()), err
	}
	logLoaded(ctx, "catalog.loaded", snap)
	return NewStore(snap), nil
}

// Snapshot returns the snapshot current at call time.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Swap installs snap and returns the previous snapshot.
func (s *Store) Swap(snap *Snapshot) *Snapshot {
	return s.current.Swap(snap)
}

// Reload loads path and swaps it in. On error the current snapshot is kept.
func (s *Store) Reload(ctx context.Context, path string) error {
	snap, err := Load(path)
	if err != nil {
		logger.LogEvent(ctx, logger.Catalog, slog.LevelWarn, "catalog.reload",
			slog.String("status", "fail"),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return err
	}
	s.Swap(snap)
	logLoaded(ctx, "catalog.reload", snap)
	return nil
}

func logLoaded(ctx context.Context, event string, snap *Snapshot) {
	c := snap.Counts()
	logger.LogEvent(ctx, logger.Catalog, slog.LevelInfo, event,
		slog.String("status", "ok"),
		slog.String("path", snap.Source()),
		slog.Int("templates", c.Templates),
		slog.Int("categories", c.Categories),
		slog.Int("components", c.Components),
		slog.Int("styles", c.Styles),
	)
}
