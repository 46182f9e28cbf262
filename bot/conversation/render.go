package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/m3rciful/themebot/bot/catalog"
	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/core/telegram/callbacks"
	"github.com/m3rciful/themebot/core/telegram/format"
)

// Telegram limits, in characters.
const (
	maxCaption  = 1024
	maxText     = 4096
	maxFragment = 300
)

var styleKindLabels = map[catalog.StyleKind]string{
	catalog.StyleGradient:   "🌈 Градиенты",
	catalog.StyleShadow:     "🌫️ Тени",
	catalog.StyleEffect:     "✨ Эффекты",
	catalog.StylePredefined: "🎨 Готовые стили",
}

func textMsg(body string, markup ...[]Button) Descriptor {
	return Descriptor{Kind: KindText, Body: body, Markup: markup, ParseMode: ParseModeHTML}
}

func photoMsg(photo, caption string, markup ...[]Button) Descriptor {
	return Descriptor{Kind: KindPhoto, Photo: photo, Body: caption, Markup: markup, ParseMode: ParseModeHTML}
}

func btn(text string, action Action, param string) Button {
	return Button{Text: text, Action: action, Param: param}
}

// fits reports whether a catalog key can travel in callback data. Longer keys
// are left off the menus.
func fits(action Action, param string) bool {
	return callbacks.Fits(string(action), param)
}

func backRow() []Button {
	return []Button{btn(btnBackToMain, ActionBackToMain, "")}
}

func rows(buttons []Button, perRow int) [][]Button {
	var out [][]Button
	for i := 0; i < len(buttons); i += perRow {
		out = append(out, buttons[i:min(i+perRow, len(buttons))])
	}
	return out
}

func (e *Engine) mainMenu() [][]Button {
	buttons := []Button{btn(btnTemplates, ActionTemplates, "")}
	if !e.opts.Features.DisableBlocks {
		buttons = append(buttons, btn(btnBlocks, ActionBlocks, ""))
	}
	if !e.opts.Features.DisableStyles {
		buttons = append(buttons, btn(btnStyles, ActionStyles, ""))
	}
	buttons = append(buttons,
		btn(btnCustomization, ActionCustomization, ""),
		btn(btnOrder, ActionOrder, ""),
		btn(btnPricing, ActionPricing, ""),
		btn(btnHelp, ActionHelp, ""),
		btn(btnContacts, ActionContacts, ""),
	)
	return rows(buttons, 2)
}

func (e *Engine) mainMenuMsg(body string) Descriptor {
	return textMsg(body, e.mainMenu()...)
}

func greeting(p session.Profile) string {
	if p.FirstName == "" {
		return "Привет! 🌟\n\n" + textGreeting
	}
	return "Привет, " + format.Escape(p.FirstName) + "! 🌟\n\n" + textGreeting
}

func notFoundMsg(err *EntryNotFoundError, markup ...[]Button) Descriptor {
	body, ok := notFoundTexts[err.Kind]
	if !ok {
		body = "❌ Не найдено"
	}
	return textMsg(body, append(markup, backRow())...)
}

func categoryList(snap *catalog.Snapshot) Descriptor {
	var markup [][]Button
	for _, key := range snap.CategoryKeys() {
		if !fits(ActionCategory, key) {
			continue
		}
		c, _ := snap.Category(key)
		markup = append(markup, []Button{btn(c.Icon+" "+c.Name, ActionCategory, key)})
	}
	markup = append(markup, backRow())
	return textMsg(textCategories, markup...)
}

func categoryName(snap *catalog.Snapshot, key string) string {
	if c, ok := snap.Category(key); ok {
		return c.Name
	}
	return key
}

func templateCard(snap *catalog.Snapshot, t catalog.Template) Descriptor {
	id := strconv.FormatInt(t.ID, 10)
	features := t.Features[:min(3, len(t.Features))]
	caption := fmt.Sprintf("🎨 %s\n📂 Категория: %s\n✨ Особенности: %s\n💵 Цена: %s",
		format.Bold(t.Name),
		format.Escape(categoryName(snap, t.Category)),
		format.Escape(strings.Join(features, ", ")),
		format.Escape(t.Price.String()),
	)
	if t.Description != "" {
		caption += "\n\n📝 " + format.Escape(format.Truncate(t.Description, 400))
	}
	markup := [][]Button{
		{btn(btnView, ActionView, id), btn(btnSelect, ActionSelect, id)},
		{btn("💰 "+t.Price.String(), ActionOrder, id)},
	}
	if t.Preview == "" {
		return textMsg(caption, markup...)
	}
	return photoMsg(t.Preview, caption, markup...)
}

// templatePage renders up to pageSize cards starting at offset plus a footer.
func (e *Engine) templatePage(snap *catalog.Snapshot, category string, offset int) ([]Descriptor, *EntryNotFoundError) {
	if _, ok := snap.Category(category); !ok {
		return nil, notFound(kindTemplateCategory, category)
	}
	list := snap.TemplatesByCategory(category)
	if len(list) == 0 {
		return nil, notFound(kindTemplateCategory, category)
	}
	if offset < 0 || offset >= len(list) {
		return nil, notFound(kindPage, category+":"+strconv.Itoa(offset))
	}
	end := min(offset+PageSize, len(list))
	out := make([]Descriptor, 0, end-offset+1)
	for _, t := range list[offset:end] {
		out = append(out, templateCard(snap, t))
	}

	var footer [][]Button
	body := textPageLast
	if end < len(list) {
		body = fmt.Sprintf(textPageMore, offset+1, end, len(list))
		footer = append(footer, []Button{btn(btnMore, ActionMore, category+":"+strconv.Itoa(end))})
	}
	footer = append(footer, []Button{btn(btnToCategories, ActionTemplates, "")}, backRow())
	return append(out, textMsg(body, footer...)), nil
}

func templateDetail(snap *catalog.Snapshot, t catalog.Template) Descriptor {
	id := strconv.FormatInt(t.ID, 10)
	blocks := []string{
		"🎨 " + format.Bold(t.Name),
		"📂 <b>Категория:</b> " + format.Escape(categoryName(snap, t.Category)) +
			"\n💵 <b>Цена:</b> " + format.Escape(t.Price.String()),
	}
	if len(t.Features) > 0 {
		blocks = append(blocks, "✨ <b>Особенности:</b>\n"+format.Bullets(t.Features))
	}
	if t.Description != "" {
		blocks = append(blocks, "📝 <b>Описание:</b>\n"+format.Italic(format.Truncate(t.Description, 300)))
	}
	blocks = append(blocks, textIncludedHeader+"\n"+format.Bullets(includedItems))
	body := format.Join(blocks...)

	markup := [][]Button{
		{btn(btnSelectThis, ActionSelect, id), btn(btnOrderThis, ActionOrder, id)},
		{btn(btnToTemplates, ActionTemplates, ""), btn(btnHome, ActionBackToMain, "")},
	}
	if t.Preview == "" || utf8.RuneCountInString(body) > maxCaption {
		return textMsg(body, markup...)
	}
	return photoMsg(t.Preview, body, markup...)
}

func blockGroups(snap *catalog.Snapshot) Descriptor {
	var markup [][]Button
	for _, key := range snap.ComponentCategories() {
		if !fits(ActionCategory, key) {
			continue
		}
		markup = append(markup, []Button{btn("🧱 "+titleCase(key), ActionCategory, key)})
	}
	markup = append(markup, backRow())
	return textMsg(textBlocks, markup...)
}

func blockGroup(snap *catalog.Snapshot, key string) (Descriptor, *EntryNotFoundError) {
	list, ok := snap.Components(key)
	if !ok || len(list) == 0 {
		return Descriptor{}, notFound(kindComponentCategory, key)
	}
	entries := make([]string, len(list))
	for i, c := range list {
		entries[i] = format.Bold(c.Name) + "\n" + format.Pre(format.Truncate(c.Markup, maxFragment), "html")
	}
	body := listing("🧱 "+format.Bold(titleCase(key)), entries)
	return textMsg(body, []Button{btn(btnToBlocks, ActionBlocks, "")}, backRow()), nil
}

func styleKinds() Descriptor {
	markup := make([][]Button, 0, len(catalog.StyleKinds)+1)
	for _, kind := range catalog.StyleKinds {
		markup = append(markup, []Button{btn(styleKindLabels[kind], ActionCategory, string(kind))})
	}
	markup = append(markup, backRow())
	return textMsg(textStyles, markup...)
}

func styleKind(snap *catalog.Snapshot, key string) (Descriptor, *EntryNotFoundError) {
	kind, ok := catalog.ParseStyleKind(key)
	if !ok {
		return Descriptor{}, notFound(kindStyleCategory, key)
	}
	list := snap.Styles(kind)
	if len(list) == 0 {
		return Descriptor{}, notFound(kindStyleCategory, key)
	}
	entries := make([]string, len(list))
	for i, s := range list {
		entries[i] = format.Bold(s.Name) + "\n" + format.Pre(format.Truncate(s.CSS, maxFragment), "css")
	}
	label := styleKindLabels[kind]
	icon, name, _ := strings.Cut(label, " ")
	body := listing(icon+" "+format.Bold(name), entries)
	return textMsg(body, []Button{btn(btnToStyles, ActionStyles, "")}, backRow()), nil
}

// listing joins entries under a title, dropping the tail past the message limit.
func listing(title string, entries []string) string {
	var b strings.Builder
	b.WriteString(title)
	for _, entry := range entries {
		if utf8.RuneCountInString(b.String())+utf8.RuneCountInString(entry)+2 > maxText-2 {
			b.WriteString("\n\n…")
			break
		}
		b.WriteString("\n\n")
		b.WriteString(entry)
	}
	return b.String()
}

func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func customizationMarkup() [][]Button {
	buttons := make([]Button, len(Fields))
	for i, f := range Fields {
		buttons[i] = btn(f.Label, ActionCustomize, f.Key)
	}
	markup := rows(buttons, 2)
	return append(markup,
		[]Button{btn(btnPreview, ActionPreview, ""), btn(btnSave, ActionSave, "")},
		backRow(),
	)
}

func selectedLine(snap *catalog.Snapshot, s *session.Session) string {
	if s.SelectedTemplate == nil {
		return ""
	}
	if t, ok := snap.TemplateByID(*s.SelectedTemplate); ok {
		return "📌 Шаблон: " + format.Bold(t.Name)
	}
	return "📌 Шаблон: #" + strconv.FormatInt(*s.SelectedTemplate, 10)
}

func choices(s *session.Session) string {
	var lines []string
	for _, f := range Fields {
		v, ok := s.Customization[f.Key]
		if !ok {
			continue
		}
		if v == FieldRequested {
			v = "нужна настройка"
		}
		lines = append(lines, fmt.Sprintf(textFieldChosen, f.Label, format.Escape(v)))
	}
	if len(lines) == 0 {
		return textNothingChosen
	}
	return strings.Join(lines, "\n")
}

func customizationMenu(snap *catalog.Snapshot, s *session.Session, header string) Descriptor {
	hints := make([]string, len(Fields))
	for i, f := range Fields {
		_, label, _ := strings.Cut(f.Label, " ")
		hints[i] = "• <b>" + label + "</b> - " + f.Hint
	}
	body := format.Join(header, textCustomization, selectedLine(snap, s), strings.Join(hints, "\n"), textCustomizeTail)
	return textMsg(body, customizationMarkup()...)
}

func preview(snap *catalog.Snapshot, s *session.Session) Descriptor {
	body := format.Join(textPreview, selectedLine(snap, s), choices(s))
	return textMsg(body, customizationMarkup()...)
}

func tariffBlock(t Tariff, withDuration bool) string {
	lines := []string{t.Icon + " " + format.Bold(t.Name+" ("+t.Price.String()+")")}
	for _, f := range t.Features {
		lines = append(lines, "• "+format.Escape(f))
	}
	if withDuration && t.Duration != "" {
		lines = append(lines, "• Срок: "+format.Escape(t.Duration))
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) tariffMenu(snap *catalog.Snapshot, s *session.Session) Descriptor {
	blocks := []string{textTariffs, selectedLine(snap, s)}
	buttons := make([]Button, len(e.opts.Tariffs))
	for i, t := range e.opts.Tariffs {
		blocks = append(blocks, tariffBlock(t, true))
		buttons[i] = btn(t.Label(), ActionOrder, t.Key)
	}
	if s.Requirements != "" {
		blocks = append(blocks, fmt.Sprintf(textRequirements, format.Escape(format.Truncate(s.Requirements, 500))))
	} else {
		blocks = append(blocks, textRequirementsAsk)
	}
	return textMsg(format.Join(blocks...), append(rows(buttons, 2), backRow())...)
}

func (e *Engine) pricingSheet() Descriptor {
	blocks := []string{textPricing}
	for _, t := range e.opts.Tariffs {
		blocks = append(blocks, tariffBlock(t, true))
	}
	blocks = append(blocks, textExtraServices)
	return textMsg(format.Join(blocks...),
		[]Button{btn(btnOrder, ActionOrder, ""), btn(btnConsultation, ActionContacts, "")},
		backRow(),
	)
}

func helpScreen() Descriptor {
	return textMsg(textHelp,
		[]Button{{Text: btnTelegram, URL: supportURL}, btn(btnContacts, ActionContacts, "")},
		backRow(),
	)
}

func contactsScreen() Descriptor {
	return textMsg(textContacts,
		[]Button{{Text: btnTelegram, URL: supportURL}, {Text: btnWebsite, URL: websiteURL}},
		backRow(),
	)
}
