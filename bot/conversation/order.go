package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/themebot/bot/catalog"
	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/core/logger"
	"github.com/m3rciful/themebot/core/telegram/format"
)

// captureOrder appends an order to the session and schedules its delivery.
// The selected template is only referenced while it is still in the catalog.
func (e *Engine) captureOrder(t *turn, tariff Tariff) session.State {
	order := session.Order{
		ID:           e.opts.NewOrderID(),
		Tier:         tariff.Key,
		Requirements: t.s.Requirements,
		Status:       session.OrderSubmitted,
		CreatedAt:    e.opts.Now(),
	}
	var tpl *catalog.Template
	if sel := t.s.SelectedTemplate; sel != nil {
		if found, ok := t.snap.TemplateByID(*sel); ok {
			id := found.ID
			order.TemplateID = &id
			tpl = &found
		} else {
			logger.LogEvent(t.ctx, logger.Engine, slog.LevelWarn, "order.template_missing",
				slog.Int64("user_id", t.s.UserID),
				slog.Int64("template_id", *sel),
			)
		}
	}
	t.s.Orders = append(t.s.Orders, order)
	t.s.Requirements = ""

	rec := OrderRecord{UserID: t.s.UserID, Profile: t.s.Profile, Order: order}
	summary := OperatorSummary(rec, tariff, tpl)
	t.jobs = append(t.jobs, func(ctx context.Context) {
		e.forward(ctx, rec, summary)
	})

	logger.LogEvent(t.ctx, logger.Orders, slog.LevelInfo, "order.captured",
		slog.Int64("user_id", t.s.UserID),
		slog.String("order_id", order.ID),
		slog.String("tier", order.Tier),
	)
	t.send(e.mainMenuMsg(fmt.Sprintf(textOrderPlaced, format.Bold(tariff.Label()), format.Code(order.ID))))
	return session.StateRoot
}

// forward archives the order, notifies the operator and records the outcome.
// Every failure here is logged and swallowed.
func (e *Engine) forward(ctx context.Context, rec OrderRecord, summary string) {
	if e.opts.Archive != nil {
		if err := e.opts.Archive.SaveOrder(ctx, rec); err != nil {
			logger.LogEvent(ctx, logger.Orders, slog.LevelWarn, "order.archive",
				slog.String("status", "fail"),
				slog.String("order_id", rec.Order.ID),
				slog.String("err", err.Error()),
			)
		}
	}
	if e.opts.Notifier == nil {
		return
	}

	elapsed := logger.Took(rec.Order.CreatedAt)
	status := session.OrderForwarded
	err := safeNotify(ctx, e.opts.Notifier, summary)
	attrs := []slog.Attr{
		slog.Int64("user_id", rec.UserID),
		slog.String("order_id", rec.Order.ID),
		slog.String("tier", rec.Order.Tier),
		slog.Duration("elapsed", elapsed),
	}
	if err != nil {
		status = session.OrderFailed
		logger.LogEvent(ctx, logger.Notify, slog.LevelWarn, "notify.order",
			append(attrs, slog.String("status", "fail"), slog.String("err", err.Error()))...)
	} else {
		logger.LogEvent(ctx, logger.Notify, slog.LevelInfo, "notify.order",
			append(attrs, slog.String("status", "ok"))...)
	}

	if err := e.opts.Sessions.Patch(ctx, rec.UserID, func(s *session.Session) {
		s.SetOrderStatus(rec.Order.ID, status)
	}); err != nil {
		logger.LogEvent(ctx, logger.Orders, slog.LevelWarn, "order.status",
			slog.String("status", "skip"),
			slog.String("order_id", rec.Order.ID),
			slog.String("err", err.Error()),
		)
	}
	if e.opts.Archive != nil {
		if err := e.opts.Archive.UpdateOrderStatus(ctx, rec.Order.ID, status); err != nil {
			logger.LogEvent(ctx, logger.Orders, slog.LevelWarn, "order.archive",
				slog.String("status", "fail"),
				slog.String("order_id", rec.Order.ID),
				slog.String("err", err.Error()),
			)
		}
	}
}

func safeNotify(ctx context.Context, n Notifier, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return n.Notify(ctx, text)
}

// OperatorSummary renders the order message sent to the operator.
func OperatorSummary(rec OrderRecord, tariff Tariff, tpl *catalog.Template) string {
	requester := format.Escape(rec.Profile.DisplayName())
	if requester == "" {
		requester = "Пользователь"
	}
	if rec.Profile.Username != "" && rec.Profile.FirstName+rec.Profile.LastName != "" {
		requester += " (@" + format.Escape(rec.Profile.Username) + ")"
	}
	requester += ", id " + format.Code(strconv.FormatInt(rec.UserID, 10))

	template := "не выбран"
	switch {
	case tpl != nil:
		template = format.Escape(tpl.Name) + " (#" + strconv.FormatInt(tpl.ID, 10) + ")"
	case rec.Order.TemplateID != nil:
		template = "#" + strconv.FormatInt(*rec.Order.TemplateID, 10)
	}

	lines := []string{
		"<b>Новый заказ</b>",
		"👤 " + requester,
		"📦 Тариф: " + format.Escape(tariff.Label()),
		"🎨 Шаблон: " + template,
	}
	if req := strings.TrimSpace(rec.Order.Requirements); req != "" {
		lines = append(lines, "📝 Требования: "+format.Escape(format.Truncate(req, 1500)))
	}
	lines = append(lines, "🆔 "+format.Code(rec.Order.ID))
	return strings.Join(lines, "\n")
}
