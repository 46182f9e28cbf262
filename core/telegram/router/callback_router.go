package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/themebot/core/telegram"
	"github.com/m3rciful/themebot/core/telegram/callbacks"
	"github.com/m3rciful/themebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns the OnCallback route that dispatches by callback unique through the registry.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}
		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		// Stops the client spinner; handlers may still answer with their own text.
		_ = c.Respond()

		if h, ok := reg.GetCallback(key); ok {
			return handleWithSummary(c, name, start, "", "", h, extras...)
		}

		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		extras = append(extras, slog.String("reason", "not_found"))
		if fallback == nil {
			logHandlerSummary(c, name, start, "skip", "not_found", nil, extras...)
			return nil
		}
		return handleWithSummary(c, name, start, "", "not_found", fallback, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
