// Package app wires themebot's components together and exposes them to the
// core runner.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/themebot/bot/catalog"
	"github.com/m3rciful/themebot/bot/config"
	"github.com/m3rciful/themebot/bot/conversation"
	"github.com/m3rciful/themebot/bot/health"
	"github.com/m3rciful/themebot/bot/notify"
	"github.com/m3rciful/themebot/bot/orders"
	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/bot/session/redisstore"
	"github.com/m3rciful/themebot/bot/transport"
	"github.com/m3rciful/themebot/core/bootstrap"
	"github.com/m3rciful/themebot/core/buildinfo"
	corecmd "github.com/m3rciful/themebot/core/cmd"
	"github.com/m3rciful/themebot/core/logger"
	tg "github.com/m3rciful/themebot/core/telegram"
)

// Name is reported by the status surface.
const Name = "themebot"

const redisPingTimeout = 3 * time.Second

// App holds the running components.
type App struct {
	cfg   *config.Config
	infra *bootstrap.Result

	Catalog  *catalog.Store
	Sessions *session.Registry
	Engine   *conversation.Engine
	Metrics  *health.Metrics
	Health   *health.Server
	Archive  *orders.Archive

	store    *redisstore.Store
	adapter  *transport.Adapter
	registry *tg.Registry
}

var (
	_ corecmd.TelegramApp = (*App)(nil)
	_ corecmd.Reloader    = (*App)(nil)
)

// Bootstrap runs the core pipeline (logger, optional database) and builds the app.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	infra, err := bootstrap.Run(bootstrap.Options{Config: cfg.CoreConfig(), Database: cfg.Database})
	if err != nil {
		return nil, err
	}
	a, err := New(context.Background(), cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return a, nil
}

// New builds every component from cfg. infra may be nil when no database is used.
func New(ctx context.Context, cfg *config.Config, infra *bootstrap.Result) (_ *App, err error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	a := &App{cfg: cfg, infra: infra, Metrics: health.NewMetrics(), registry: tg.NewRegistry()}
	defer func() {
		if err != nil && a.store != nil {
			_ = a.store.Close()
		}
	}()

	// A broken catalog file is logged inside LoadOrDemo; the demo keeps the bot usable.
	a.Catalog, _ = catalog.LoadOrDemo(ctx, cfg.Catalog.Path)

	sessOpts := session.Options{
		Expiry:        cfg.Session.Expiry,
		ActiveWindow:  cfg.Session.ActiveWindow,
		EvictAfter:    cfg.Session.EvictAfter,
		SweepInterval: cfg.Session.SweepInterval,
	}
	if store := a.openStore(ctx); store != nil {
		a.store = store
		sessOpts.Store = store
	}
	a.Sessions = session.NewRegistry(sessOpts)

	engOpts := conversation.Options{
		Catalog:       a.Catalog,
		Sessions:      a.Sessions,
		Metrics:       a.Metrics,
		Tariffs:       cfg.TariffList(),
		Features:      cfg.EngineFeatures(),
		NotifyTimeout: cfg.Notifier.Timeout,
	}
	if cfg.NotifierEnabled() {
		var n *notify.Notifier
		n, err = notify.New(notify.Options{
			Token:   cfg.Telegram.Token,
			ChatID:  cfg.Telegram.AdminID,
			APIBase: cfg.Notifier.APIBase,
			Timeout: cfg.Notifier.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("app: notifier: %w", err)
		}
		engOpts.Notifier = n
	} else {
		logger.LogEvent(ctx, logger.Notify, slog.LevelWarn, "notify.disabled",
			slog.String("status", "skip"),
			slog.String("reason", "no_admin_chat"),
		)
	}
	if infra != nil && infra.DB != nil {
		a.Archive = orders.New(infra.DB)
		engOpts.Archive = a.Archive
	}
	a.Engine = conversation.New(engOpts)

	trOpts := transport.Options{Engine: a.Engine, Sessions: a.Sessions, Catalog: a.Catalog}
	if a.Archive != nil {
		trOpts.Orders = a.Archive
	}
	a.adapter = transport.New(trOpts)
	if err = a.adapter.Register(a.registry); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}

	if cfg.HealthEnabled() {
		a.Health = health.New(health.Options{
			Listen:          cfg.Health.Listen,
			Name:            Name,
			Version:         buildinfo.Summary(),
			TokenConfigured: cfg.Telegram.Token != "",
			AdminConfigured: cfg.Telegram.AdminID != 0,
			Sessions:        a.Sessions,
			Catalog:         a.Catalog,
			Metrics:         a.Metrics,
		})
	}
	return a, nil
}

// openStore connects Redis when configured. An unreachable server disables persistence.
func (a *App) openStore(ctx context.Context) *redisstore.Store {
	rc := a.cfg.Redis
	if !rc.Enabled() {
		return nil
	}
	store := redisstore.New(rc.Addr, rc.Password, rc.DB,
		redisstore.WithPrefix(rc.Prefix),
		redisstore.WithTTL(rc.TTL),
	)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.LogEvent(ctx, logger.Session, slog.LevelWarn, "session.store",
			slog.String("status", "fail"),
			slog.String("addr", rc.Addr),
			slog.String("err", err.Error()),
		)
		_ = store.Close()
		return nil
	}
	logger.LogEvent(ctx, logger.Session, slog.LevelInfo, "session.store",
		slog.String("status", "ok"),
		slog.String("addr", rc.Addr),
	)
	return store
}

// TelegramRunOptions implements corecmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(core, a.adapter.Limited),
		BuildRoutes: func(reg *tg.Registry) []tg.Route {
			return a.adapter.Routes(reg, core.Telegram.AdminID)
		},
		OnStart: a.start,
		OnStop:  a.stop,
	}, nil
}

func (a *App) start(ctx context.Context, rt tg.Runtime) error {
	if rt.Dispatcher != nil {
		a.Metrics.WatchSender(rt.Dispatcher)
	}
	if a.Health != nil {
		if err := a.Health.Start(ctx); err != nil {
			return fmt.Errorf("app: health server: %w", err)
		}
	}
	go a.Sessions.Run(ctx)
	return nil
}

// stop drains background work within ctx's deadline.
func (a *App) stop(ctx context.Context, _ tg.Runtime) error {
	var errs []error
	if a.Health != nil {
		errs = append(errs, a.Health.Shutdown(ctx))
	}

	done := make(chan struct{})
	go func() {
		a.Engine.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.LogEvent(ctx, logger.Notify, slog.LevelWarn, "notify.drain",
			slog.String("status", "fail"),
			slog.String("reason", "timeout"),
		)
	}

	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	errs = append(errs, a.infra.Close())
	return errors.Join(errs...)
}

// Reload re-reads the catalog file; the previous snapshot stays on failure.
func (a *App) Reload(ctx context.Context) error {
	return a.Catalog.Reload(ctx, a.cfg.Catalog.Path)
}
