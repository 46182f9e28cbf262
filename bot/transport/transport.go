// Package transport binds the conversation engine to telebot: updates become
// events, descriptors become messages.
package transport

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/themebot/bot/conversation"
	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/core/logger"
	tg "github.com/m3rciful/themebot/core/telegram"
	"github.com/m3rciful/themebot/core/telegram/callbacks"
	"github.com/m3rciful/themebot/core/telegram/helpers"
	"github.com/m3rciful/themebot/core/telegram/keyboard"
	"github.com/m3rciful/themebot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// Engine applies one event to a session.
type Engine interface {
	Dispatch(ctx context.Context, ev conversation.Event) conversation.Result
}

// Sessions reports registry counters for /stats.
type Sessions interface {
	Stats() session.Stats
}

// OrderCounter reports archived orders by status for /stats.
type OrderCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// Options configures an Adapter. Engine is required; the rest feed /stats.
type Options struct {
	Engine   Engine
	Sessions Sessions
	Catalog  conversation.Catalog
	Orders   OrderCounter
}

// Adapter translates between telebot and the engine.
type Adapter struct {
	opts Options
}

// New returns an Adapter.
func New(opts Options) *Adapter {
	return &Adapter{opts: opts}
}

// Register adds one callback per button action, the bot commands and the
// fallbacks for unknown callbacks and free text.
func (a *Adapter) Register(reg *tg.Registry) error {
	var errs []error
	for _, action := range conversation.CallbackActions {
		errs = append(errs, reg.RegisterCallback(string(action), a.callback(action)))
	}
	for _, name := range commandOrder {
		errs = append(errs, reg.RegisterCommand(name, a.commands()[name]))
	}
	reg.SetCallbackNotFound(a.rawCallback)
	reg.SetTextFallback(a.text)

	err := errors.Join(errs...)
	status := "ok"
	if err != nil {
		status = "fail"
	}
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "register.handlers",
		slog.String("status", status),
		slog.Int("callbacks", len(conversation.CallbackActions)),
		slog.Int("commands", len(commandOrder)),
	)
	return err
}

// Routes builds the telebot routes for a registry filled by Register.
func (a *Adapter) Routes(reg *tg.Registry, adminID int64) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       adminID,
		OnAdminReject: a.adminReject,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	return append(routes, router.TextRoutes(reg, router.TextOptions{UnknownDocument: a.unsupported})...)
}

// Limited answers a rate-limited update.
func (a *Adapter) Limited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: textSlowDown})
	}
	return nil
}

func (a *Adapter) callback(action conversation.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID, profile := sender(c)
		return a.dispatch(c, conversation.CallbackEvent(userID, profile, string(action), callbacks.CallbackPayload(c)))
	}
}

// rawCallback handles data no registered action claimed, including the plain
// action:param form.
func (a *Adapter) rawCallback(c tele.Context) error {
	var data string
	if cb := c.Callback(); cb != nil {
		data = cb.Data
	}
	action, param := conversation.DecodeCallback(data)
	userID, profile := sender(c)
	return a.dispatch(c, conversation.Event{UserID: userID, Profile: profile, Action: action, Param: param})
}

func (a *Adapter) text(c tele.Context) error {
	userID, profile := sender(c)
	return a.dispatch(c, conversation.TextEvent(userID, profile, c.Text()))
}

// unsupported re-renders the current screen for photos and documents.
func (a *Adapter) unsupported(c tele.Context) error {
	userID, profile := sender(c)
	return a.dispatch(c, conversation.Event{UserID: userID, Profile: profile, Action: conversation.ActionUnknown})
}

// command dispatches action as a main-menu entry.
func (a *Adapter) command(action conversation.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID, profile := sender(c)
		return a.dispatch(c, conversation.Event{UserID: userID, Profile: profile, Action: action, Entry: true})
	}
}

func (a *Adapter) adminReject(c tele.Context) error {
	return helpers.SendHTML(c, textAdminOnly, nil)
}

func (a *Adapter) dispatch(c tele.Context, ev conversation.Event) error {
	if ev.UserID == 0 {
		return nil
	}
	ctx := helpers.BuildContext(c)
	res := a.opts.Engine.Dispatch(ctx, ev)
	if len(res.Descriptors) == 0 {
		return nil
	}
	return helpers.Deliver(c, "render."+string(res.Action), "sendMessage", func() error {
		return render(ctx, c, res.Descriptors)
	})
}

// render sends descriptors in order. A photo that cannot be sent is retried as text.
func render(ctx context.Context, c tele.Context, descs []conversation.Descriptor) error {
	var errs []error
	for _, d := range descs {
		opts := helpers.HTMLOptions(markup(d.Markup))
		if d.Kind == conversation.KindPhoto && d.Photo != "" {
			err := c.Send(&tele.Photo{File: tele.FromURL(d.Photo), Caption: d.Body}, opts)
			if err == nil {
				continue
			}
			logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "render.photo",
				slog.String("status", "retry"),
				slog.String("reason", "photo_failed"),
				slog.String("err", err.Error()),
			)
		}
		if err := c.Send(d.Body, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func markup(rows [][]conversation.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]keyboard.InlineBtn, len(rows))
	for i, row := range rows {
		out[i] = make([]keyboard.InlineBtn, len(row))
		for j, b := range row {
			out[i][j] = keyboard.InlineBtn{Text: b.Text, Unique: string(b.Action), Data: b.Param, URL: b.URL}
		}
	}
	return keyboard.InlineButtonsRows(out...)
}

func sender(c tele.Context) (int64, session.Profile) {
	u := c.Sender()
	if u == nil {
		return 0, session.Profile{}
	}
	return u.ID, session.Profile{FirstName: u.FirstName, LastName: u.LastName, Username: u.Username}
}
