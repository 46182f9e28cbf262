// Package conversation is the menu state machine. Dispatch applies one event to
// a user's session and returns the messages to show; it never talks to the
// chat platform directly.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/themebot/bot/catalog"
	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/core/logger"
)

// PageSize is the fixed number of template cards per page.
const PageSize = 3

// DefaultNotifyTimeout bounds one operator notification.
const DefaultNotifyTimeout = 10 * time.Second

// Catalog provides the current catalog snapshot.
type Catalog interface {
	Snapshot() *catalog.Snapshot
}

// Notifier forwards an order summary to the operator.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, text string) error

func (f NotifierFunc) Notify(ctx context.Context, text string) error { return f(ctx, text) }

// OrderRecord is an order with its requester, as archived.
type OrderRecord struct {
	UserID  int64
	Profile session.Profile
	Order   session.Order
}

// OrderArchive keeps a durable copy of captured orders.
type OrderArchive interface {
	SaveOrder(ctx context.Context, rec OrderRecord) error
	UpdateOrderStatus(ctx context.Context, id string, status session.OrderStatus) error
}

// Metrics observes dispatches.
type Metrics interface {
	ObserveDispatch(action, outcome string, took time.Duration)
}

// Features switches optional menu sections off.
type Features struct {
	DisableBlocks bool
	DisableStyles bool
}

// Options configures an Engine. Catalog and Sessions are required.
type Options struct {
	Catalog       Catalog
	Sessions      *session.Registry
	Notifier      Notifier
	Archive       OrderArchive
	Metrics       Metrics
	Tariffs       []Tariff
	Features      Features
	NotifyTimeout time.Duration
	NewOrderID    func() string
	Now           func() time.Time
}

func (o Options) withDefaults() Options {
	if len(o.Tariffs) == 0 {
		o.Tariffs = DefaultTariffs()
	}
	if o.NotifyTimeout <= 0 {
		o.NotifyTimeout = DefaultNotifyTimeout
	}
	if o.NewOrderID == nil {
		o.NewOrderID = uuid.NewString
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Engine dispatches events. It is safe for concurrent use; events of one user
// are serialized by the session registry.
type Engine struct {
	opts   Options
	global map[Action]handler
	table  map[session.State]map[Action]handler
	render map[session.State]handler

	wg sync.WaitGroup
}

// New builds an engine.
func New(opts Options) *Engine {
	e := &Engine{opts: opts.withDefaults()}
	e.buildTables()
	return e
}

// Tariffs returns the configured tariffs.
func (e *Engine) Tariffs() []Tariff {
	return append([]Tariff(nil), e.opts.Tariffs...)
}

// Wait blocks until detached notifications have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// turn is the working state of one dispatch.
type turn struct {
	ctx  context.Context
	e    *Engine
	ev   Event
	s    *session.Session
	snap *catalog.Snapshot
	out  []Descriptor
	err  error
	jobs []func(context.Context)
}

type handler func(t *turn) session.State

func (t *turn) send(d ...Descriptor) {
	t.out = append(t.out, d...)
}

// missing renders a not-found message and returns the current state.
func (t *turn) missing(err *EntryNotFoundError, markup ...[]Button) session.State {
	t.err = err
	t.send(notFoundMsg(err, markup...))
	return t.s.State
}

// Dispatch applies ev to the user's session. It always resolves to a valid
// state; a panic inside a handler leaves the session as it was.
func (e *Engine) Dispatch(ctx context.Context, ev Event) (res Result) {
	start := time.Now()
	res = Result{UserID: ev.UserID, Action: ev.Action}
	defer func() {
		if r := recover(); r != nil {
			res = e.recovered(ctx, ev, r)
		}
		e.observe(ctx, ev, res, start)
	}()

	var jobs []func(context.Context)
	_ = e.opts.Sessions.Do(ctx, ev.UserID, ev.Profile, func(s *session.Session) error {
		t := &turn{ctx: ctx, e: e, ev: ev, s: s, snap: e.opts.Catalog.Snapshot()}
		res.From = s.State
		next := e.handle(t)
		if !next.Valid() {
			next = session.StateRoot
		}
		s.State = next
		res.State = next
		res.Descriptors = t.out
		res.Err = t.err
		jobs = t.jobs
		return nil
	})

	res.Outcome = OutcomeOK
	if res.Err != nil {
		res.Outcome = OutcomeNotFound
	}
	for _, job := range jobs {
		e.detach(ctx, job)
	}
	return res
}

func (e *Engine) handle(t *turn) session.State {
	if h, ok := e.global[t.ev.Action]; ok {
		return h(t)
	}
	if t.ev.Entry {
		t.s.State = session.StateRoot
		t.s.Screen = session.Screen{}
	}
	if h, ok := e.table[t.s.State][t.ev.Action]; ok {
		return h(t)
	}
	return e.rerender(t)
}

// rerender shows the current state's screen again.
func (e *Engine) rerender(t *turn) session.State {
	if h, ok := e.render[t.s.State]; ok {
		return h(t)
	}
	return showRoot(t)
}

func (e *Engine) recovered(ctx context.Context, ev Event, r any) Result {
	state := session.StateRoot
	if s, ok := e.opts.Sessions.Get(ev.UserID); ok {
		state = s.State
	}
	err := fmt.Errorf("dispatch panic: %v", r)
	logger.LogEvent(ctx, logger.Engine, slog.LevelError, "dispatch.panic",
		slog.Int64("user_id", ev.UserID),
		slog.String("action", string(ev.Action)),
		slog.String("err", err.Error()),
	)
	return Result{
		UserID:      ev.UserID,
		Action:      ev.Action,
		From:        state,
		State:       state,
		Descriptors: []Descriptor{textMsg(textInternalError, backRow())},
		Outcome:     OutcomeFail,
		Err:         err,
	}
}

func (e *Engine) observe(ctx context.Context, ev Event, res Result, start time.Time) {
	took := logger.Took(start)
	attrs := []slog.Attr{
		slog.Int64("user_id", ev.UserID),
		slog.String("action", string(ev.Action)),
		slog.String("param", logger.SanitizeLimit(ev.Param, 64)),
		slog.String("from_state", string(res.From)),
		slog.String("to_state", string(res.State)),
		slog.String("outcome", res.Outcome),
		slog.Int("messages", len(res.Descriptors)),
		slog.Duration("duration", took),
	}
	level := slog.LevelInfo
	switch res.Outcome {
	case OutcomeNotFound:
		attrs = append(attrs, slog.String("status", "skip"), slog.String("reason", "not_found"))
	case OutcomeFail:
		level = slog.LevelError
		attrs = append(attrs, slog.String("status", "fail"))
	default:
		attrs = append(attrs, slog.String("status", "ok"))
	}
	logger.LogEvent(ctx, logger.Engine, level, "dispatch.handled", attrs...)
	if e.opts.Metrics != nil {
		e.opts.Metrics.ObserveDispatch(string(ev.Action), res.Outcome, took)
	}
}

// detach runs job outside the request path with its own deadline.
func (e *Engine) detach(ctx context.Context, job func(context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.LogEvent(ctx, logger.Notify, slog.LevelError, "notify.panic",
					slog.String("err", fmt.Sprint(r)),
				)
			}
		}()
		jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.NotifyTimeout)
		defer cancel()
		job(jctx)
	}()
}
