package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/themebot/core/logger"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultExpiry        = time.Hour
	DefaultActiveWindow  = 7 * 24 * time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

// ErrNotFound is returned by a Store that has no snapshot for a user.
var ErrNotFound = errors.New("session not found")

// Store persists session snapshots outside the process.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, userID int64) (*Session, error)
	Delete(ctx context.Context, userID int64) error
}

// Options configures a Registry.
type Options struct {
	// Expiry resets a session idle for at least this long. Negative disables it.
	Expiry time.Duration
	// ActiveWindow bounds the "active" count in Stats.
	ActiveWindow time.Duration
	// EvictAfter removes sessions idle for at least this long. Zero disables eviction.
	EvictAfter    time.Duration
	SweepInterval time.Duration
	Store         Store
	Now           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Expiry == 0 {
		o.Expiry = DefaultExpiry
	}
	if o.ActiveWindow <= 0 {
		o.ActiveWindow = DefaultActiveWindow
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Registry maps user ids to sessions.
type Registry struct {
	opts Options

	mu       sync.RWMutex
	sessions map[int64]*Session

	locksMu sync.Mutex
	locks   map[int64]*lockEntry
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:     opts.withDefaults(),
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*lockEntry),
	}
}

func (r *Registry) acquire(userID int64) *lockEntry {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	entry, ok := r.locks[userID]
	if !ok {
		entry = &lockEntry{}
		r.locks[userID] = entry
	}
	entry.refs++
	return entry
}

func (r *Registry) release(userID int64) {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	entry, ok := r.locks[userID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(r.locks, userID)
	}
}

// withLock runs fn while holding the user's lock.
func (r *Registry) withLock(userID int64, fn func()) {
	entry := r.acquire(userID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		r.release(userID)
	}()
	fn()
}

// GetOrCreate returns a copy of the user's session, creating it at ROOT when
// absent and resetting it when it has expired. Last activity is refreshed.
func (r *Registry) GetOrCreate(ctx context.Context, userID int64, profile Profile) *Session {
	var out *Session
	r.withLock(userID, func() {
		s := r.resolve(ctx, userID, profile)
		r.put(ctx, s)
		out = s.Clone()
	})
	return out
}

// Update applies mutator to the user's session and refreshes last activity.
// It fails with *UnknownSessionError when GetOrCreate was never called.
func (r *Registry) Update(ctx context.Context, userID int64, mutator func(*Session)) error {
	return r.apply(ctx, userID, mutator, true)
}

// Patch is Update for changes the user did not make, such as an order status
// set by a background notification. Last activity is left as it was.
func (r *Registry) Patch(ctx context.Context, userID int64, mutator func(*Session)) error {
	return r.apply(ctx, userID, mutator, false)
}

func (r *Registry) apply(ctx context.Context, userID int64, mutator func(*Session), touch bool) error {
	var err error
	r.withLock(userID, func() {
		current, ok := r.lookup(userID)
		if !ok {
			err = &UnknownSessionError{UserID: userID}
			return
		}
		s := current.Clone()
		mutator(s)
		s.normalize()
		if touch {
			s.LastActivity = r.opts.Now()
		}
		r.put(ctx, s)
	})
	return err
}

// Do resolves the user's session like GetOrCreate and runs fn on a working
// copy while holding the user's lock. The copy is committed only when fn
// returns nil; a panic or error leaves the stored session as it was.
func (r *Registry) Do(ctx context.Context, userID int64, profile Profile, fn func(*Session) error) error {
	var err error
	r.withLock(userID, func() {
		s := r.resolve(ctx, userID, profile)
		work := s.Clone()
		if err = fn(work); err != nil {
			return
		}
		work.normalize()
		r.put(ctx, work)
	})
	return err
}

// Get returns a copy of the session without touching it.
func (r *Registry) Get(userID int64) (*Session, bool) {
	s, ok := r.lookup(userID)
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

func (r *Registry) lookup(userID int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// resolve must run under the user's lock. The returned session is not yet stored.
func (r *Registry) resolve(ctx context.Context, userID int64, profile Profile) *Session {
	now := r.opts.Now()
	current, ok := r.lookup(userID)
	if !ok {
		current = r.restore(ctx, userID)
	}
	if current == nil {
		s := newSession(userID, profile, now)
		logger.LogEvent(ctx, logger.Session, slog.LevelInfo, "session.created",
			slog.Int64("user_id", userID),
		)
		return s
	}

	s := current.Clone()
	if !profile.IsZero() {
		s.Profile = profile
	}
	if r.opts.Expiry > 0 && now.Sub(s.LastActivity) >= r.opts.Expiry {
		logger.LogEvent(ctx, logger.Session, slog.LevelInfo, "session.expired",
			slog.Int64("user_id", userID),
			slog.String("from_state", string(s.State)),
			slog.Duration("idle_ms", now.Sub(s.LastActivity)),
		)
		s.Reset()
	}
	s.LastActivity = now
	return s
}

func (r *Registry) restore(ctx context.Context, userID int64) *Session {
	if r.opts.Store == nil {
		return nil
	}
	s, err := r.opts.Store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.LogEvent(ctx, logger.Session, slog.LevelWarn, "session.restore",
				slog.String("status", "fail"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		return nil
	}
	s.normalize()
	return s
}

func (r *Registry) put(ctx context.Context, s *Session) {
	r.mu.Lock()
	r.sessions[s.UserID] = s
	r.mu.Unlock()

	if r.opts.Store == nil {
		return
	}
	if err := r.opts.Store.Save(ctx, s); err != nil {
		logger.LogEvent(ctx, logger.Session, slog.LevelWarn, "session.persist",
			slog.String("status", "fail"),
			slog.Int64("user_id", s.UserID),
			slog.String("err", err.Error()),
		)
	}
}

// Stats counts sessions.
type Stats struct {
	Total  int
	Active int
}

// Stats reports the total and those active within the configured window.
func (r *Registry) Stats() Stats {
	now := r.opts.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := Stats{Total: len(r.sessions)}
	for _, s := range r.sessions {
		if now.Sub(s.LastActivity) < r.opts.ActiveWindow {
			st.Active++
		}
	}
	return st
}

// Sweep removes sessions idle for at least EvictAfter and returns how many
// were removed. It does nothing when eviction is disabled.
func (r *Registry) Sweep(ctx context.Context) int {
	if r.opts.EvictAfter <= 0 {
		return 0
	}
	now := r.opts.Now()
	var idle []int64
	r.mu.RLock()
	for id, s := range r.sessions {
		if now.Sub(s.LastActivity) >= r.opts.EvictAfter {
			idle = append(idle, id)
		}
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range idle {
		r.withLock(id, func() {
			r.mu.Lock()
			s, ok := r.sessions[id]
			if ok && now.Sub(s.LastActivity) >= r.opts.EvictAfter {
				delete(r.sessions, id)
				removed++
			} else {
				ok = false
			}
			r.mu.Unlock()
			if ok && r.opts.Store != nil {
				if err := r.opts.Store.Delete(ctx, id); err != nil {
					logger.LogEvent(ctx, logger.Session, slog.LevelWarn, "session.evict",
						slog.String("status", "fail"),
						slog.Int64("user_id", id),
						slog.String("err", err.Error()),
					)
				}
			}
		})
	}
	if removed > 0 {
		st := r.Stats()
		logger.LogEvent(ctx, logger.Session, slog.LevelInfo, "session.sweep",
			slog.Int("count", removed),
			slog.Int("sessions_total", st.Total),
			slog.Int("sessions_active", st.Active),
		)
	}
	return removed
}

// Run sweeps periodically until ctx is done. It returns immediately when
// eviction is disabled.
func (r *Registry) Run(ctx context.Context) {
	if r.opts.EvictAfter <= 0 {
		return
	}
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
