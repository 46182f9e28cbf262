package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/themebot/core/logger"
	"github.com/m3rciful/themebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// Deliver runs a send through the dispatcher, or inline when none is wired or the queue
// cannot take it. Everything inside run executes in order on one worker, and sends
// for the same chat leave in the order they were delivered.
func Deliver(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	var err error
	if chat := c.Chat(); chat != nil {
		err = disp.EnqueueFor(ctx, chat.ID, action, endpoint, run)
	} else {
		err = disp.Enqueue(ctx, action, endpoint, run)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sender.ErrQueueFull), errors.Is(err, sender.ErrQueueClosed):
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// HTMLOptions returns send options with HTML parse mode and optional markup.
func HTMLOptions(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup, DisableWebPagePreview: true}
}

// SendHTML sends an HTML message to the current chat.
func SendHTML(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return Deliver(c, "send.html", "sendMessage", func() error {
		return c.Send(text, HTMLOptions(markup))
	})
}
