package transport

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/themebot/bot/conversation"
	"github.com/m3rciful/themebot/core/logger"
	"github.com/m3rciful/themebot/core/telegram/commands"
	"github.com/m3rciful/themebot/core/telegram/format"
	"github.com/m3rciful/themebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const (
	textSlowDown  = "Слишком часто, подождите секунду."
	textAdminOnly = "⛔ Команда доступна только администратору."
)

var commandOrder = []string{
	"/start", "/menu", "/templates", "/blocks", "/styles", "/constructor",
	"/order", "/pricing", "/help", "/contacts", "/stats",
}

func (a *Adapter) commands() map[string]commands.Command {
	return map[string]commands.Command{
		"/start":       {Handler: a.command(conversation.ActionStart), Description: "Запустить бота"},
		"/menu":        {Handler: a.command(conversation.ActionBackToMain), Description: "Главное меню", Aliases: []string{"main"}},
		"/templates":   {Handler: a.command(conversation.ActionTemplates), Description: "Каталог шаблонов"},
		"/blocks":      {Handler: a.command(conversation.ActionBlocks), Description: "Готовые блоки"},
		"/styles":      {Handler: a.command(conversation.ActionStyles), Description: "Стили и эффекты"},
		"/constructor": {Handler: a.command(conversation.ActionCustomization), Description: "Кастомизация шаблона"},
		"/order":       {Handler: a.command(conversation.ActionOrder), Description: "Заказать сайт"},
		"/pricing":     {Handler: a.command(conversation.ActionPricing), Description: "Цены"},
		"/help":        {Handler: a.command(conversation.ActionHelp), Description: "Помощь"},
		"/contacts":    {Handler: a.command(conversation.ActionContacts), Description: "Контакты"},
		"/stats":       {Handler: a.stats, Description: "Статистика бота", AdminOnly: true},
	}
}

func (a *Adapter) stats(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	var b strings.Builder
	b.WriteString("📊 <b>Статистика</b>\n")

	if a.opts.Sessions != nil {
		st := a.opts.Sessions.Stats()
		fmt.Fprintf(&b, "\n👥 Сессии: %d, активных: %d", st.Total, st.Active)
	}
	if a.opts.Catalog != nil {
		snap := a.opts.Catalog.Snapshot()
		n := snap.Counts()
		fmt.Fprintf(&b, "\n📚 Шаблонов: %d, категорий: %d", n.Templates, n.Categories)
		fmt.Fprintf(&b, "\n🧱 Блоков: %d, 🎨 стилей: %d", n.Components, n.Styles)
		fmt.Fprintf(&b, "\n🗂 Источник: %s", format.Code(snap.Source()))
	}
	if a.opts.Orders != nil {
		counts, err := a.opts.Orders.CountByStatus(ctx)
		switch {
		case err != nil:
			logger.LogEvent(ctx, logger.Orders, slog.LevelWarn, "orders.count",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
			b.WriteString("\n📦 Заявки: недоступно")
		case len(counts) == 0:
			b.WriteString("\n📦 Заявок пока нет")
		default:
			b.WriteString("\n📦 Заявки:")
			statuses := make([]string, 0, len(counts))
			for s := range counts {
				statuses = append(statuses, s)
			}
			sort.Strings(statuses)
			for _, s := range statuses {
				fmt.Fprintf(&b, "\n• %s: %d", format.Escape(s), counts[s])
			}
		}
	}
	return helpers.SendHTML(c, b.String(), nil)
}
