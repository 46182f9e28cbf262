package router

import (
	"time"

	tg "github.com/m3rciful/themebot/core/telegram"
	"github.com/m3rciful/themebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text and non-text messages.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds handlers for free text and documents.
// Text that names a registered command (or alias) runs that command; anything else goes to
// the registry's text fallback.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handleWithSummary(c, normalizeHandlerName(key), start, "", "", cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, "", "", fb)
			}
		}
		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", opts.UnknownText)
		}
		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, "", "", opts.UnknownDocument)
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "ok", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(handler)},
		{Endpoint: tele.OnDocument, Handler: wrap(docHandler)},
		{Endpoint: tele.OnPhoto, Handler: wrap(docHandler)},
	}
}
