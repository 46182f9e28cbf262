package router

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/m3rciful/themebot/core/logger"
	tg "github.com/m3rciful/themebot/core/telegram"
	"github.com/m3rciful/themebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes builds one route per registered command and alias, wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	adminOpts := middleware.AdminOptions{AdminID: opts.AdminID, OnReject: opts.OnAdminReject}

	names := make([]string, 0, len(reg.Commands()))
	for name := range reg.Commands() {
		names = append(names, name)
	}
	sort.Strings(names)

	var routes []tg.Route
	for _, name := range names {
		def := reg.Commands()[name]
		handlerName := normalizeHandlerName(name)
		cmdHandler := def.Handler
		h := func(c tele.Context) error {
			return handleWithSummary(c, handlerName, time.Now(), "", "", cmdHandler)
		}
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
		}
		h = middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))

		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
		for _, alias := range def.Aliases {
			if !strings.HasPrefix(alias, "/") {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.Info(context.Background(), "tg.wire", "tg.wire",
		slog.String("status", "ok"),
		slog.Int("commands", len(names)),
		slog.Int("routes", len(routes)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
