package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/themebot/core/logger"
	"github.com/m3rciful/themebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/themebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers recently logged update ids; the logger may wrap both the
// global chain and individual routes.
type seenUpdates struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[int]time.Time
}

var recent = &seenUpdates{ttl: 10 * time.Second, seen: make(map[int]time.Time)}

func (s *seenUpdates) firstTime(updateID int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ts := range s.seen {
		if now.Sub(ts) > s.ttl {
			delete(s.seen, id)
		}
	}
	if _, ok := s.seen[updateID]; ok {
		return false
	}
	s.seen[updateID] = now
	return true
}

// LoggerMiddleware sets the request id, stores the request context and logs one
// sampled update.received line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		updateID, chatID, userID := tghelpers.IDs(c)
		if _, ok := c.Get("rid").(string); !ok {
			c.Set("rid", logger.BuildRID(updateID, chatID, userID))
			c.Set("update_start", time.Now())
		}
		ctx := tghelpers.BuildContext(c)

		if recent.firstTime(updateID, time.Now()) && logger.ShouldSampleDebug() {
			logger.Debug(ctx, "tg", "update.received", updateAttrs(c)...)
		}
		return next(c)
	}
}

func updateAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil {
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		if user.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", user.LanguageCode))
		}
	}
	upd := c.Update()
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		attrs = append(attrs,
			slog.String("cb_key", logger.SanitizeLimit(key, 128)),
			slog.String("payload", logger.SanitizeLimit(payload, 256)),
		)
	case upd.Message != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
	}
	return attrs
}
