package conversation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/core/telegram/format"
)

func (e *Engine) buildTables() {
	e.global = map[Action]handler{
		ActionStart:      showStart,
		ActionBackToMain: showRoot,
		ActionHelp:       showHelp,
		ActionContacts:   showContacts,
	}

	root := map[Action]handler{
		ActionTemplates:     showCategories,
		ActionCustomization: showCustomization,
		ActionOrder:         openOrdering,
		ActionPricing:       showPricing,
	}
	blocks := map[Action]handler{}
	styles := map[Action]handler{}
	if !e.opts.Features.DisableBlocks {
		root[ActionBlocks] = showBlockGroups
		blocks = map[Action]handler{
			ActionBlocks:   showBlockGroups,
			ActionCategory: showBlockGroup,
		}
	}
	if !e.opts.Features.DisableStyles {
		root[ActionStyles] = showStyleKinds
		styles = map[Action]handler{
			ActionStyles:   showStyleKinds,
			ActionCategory: showStyleKind,
		}
	}

	e.table = map[session.State]map[Action]handler{
		session.StateRoot:    root,
		session.StatePricing: root,
		session.StateBrowsingTemplates: {
			ActionTemplates: showCategories,
			ActionCategory:  showTemplateCategory,
		},
		session.StateBrowsingTemplateCategory: {
			ActionTemplates: showCategories,
			ActionCategory:  showTemplateCategory,
			ActionMore:      showMore,
			ActionView:      showDetail,
			ActionSelect:    selectTemplate,
			ActionOrder:     openOrdering,
		},
		session.StateViewingTemplateDetail: {
			ActionTemplates: showCategories,
			ActionView:      showDetail,
			ActionSelect:    selectTemplate,
			ActionOrder:     openOrdering,
		},
		session.StateBrowsingBlocks:        blocks,
		session.StateBrowsingBlockCategory: blocks,
		session.StateBrowsingStyles:        styles,
		session.StateBrowsingStyleCategory: styles,
		session.StateCustomizing: {
			ActionCustomization: showCustomization,
			ActionCustomize:     customize,
			ActionPreview:       showPreview,
			ActionSave:          saveCustomization,
		},
		session.StateOrdering: {
			ActionOrder: placeOrder,
			ActionText:  draftRequirements,
		},
	}

	e.render = map[session.State]handler{
		session.StateRoot:                     showRoot,
		session.StatePricing:                  showPricing,
		session.StateBrowsingTemplates:        showCategories,
		session.StateBrowsingTemplateCategory: replayTemplatePage,
		session.StateViewingTemplateDetail:    replayDetail,
		session.StateCustomizing:              showCustomization,
		session.StateOrdering:                 showOrdering,
	}
	if !e.opts.Features.DisableBlocks {
		e.render[session.StateBrowsingBlocks] = showBlockGroups
		e.render[session.StateBrowsingBlockCategory] = replayBlockGroup
	}
	if !e.opts.Features.DisableStyles {
		e.render[session.StateBrowsingStyles] = showStyleKinds
		e.render[session.StateBrowsingStyleCategory] = replayStyleKind
	}
}

func showStart(t *turn) session.State {
	t.send(t.e.mainMenuMsg(greeting(t.s.Profile)))
	return session.StateRoot
}

func showRoot(t *turn) session.State {
	t.send(t.e.mainMenuMsg(textMainMenu))
	return session.StateRoot
}

func showHelp(t *turn) session.State {
	t.send(helpScreen())
	return session.StateRoot
}

func showContacts(t *turn) session.State {
	t.send(contactsScreen())
	return session.StateRoot
}

func showPricing(t *turn) session.State {
	t.send(t.e.pricingSheet())
	return session.StatePricing
}

func showCategories(t *turn) session.State {
	t.send(categoryList(t.snap))
	return session.StateBrowsingTemplates
}

func showTemplateCategory(t *turn) session.State {
	return t.templatePage(t.ev.Param, 0)
}

func showMore(t *turn) session.State {
	// Category keys may contain ':'; the offset is always the last segment.
	cut := strings.LastIndexByte(t.ev.Param, ':')
	if cut < 0 {
		return t.missing(notFound(kindPage, t.ev.Param), []Button{btn(btnToCategories, ActionTemplates, "")})
	}
	category := t.ev.Param[:cut]
	offset, err := strconv.Atoi(t.ev.Param[cut+1:])
	if err != nil {
		return t.missing(notFound(kindPage, t.ev.Param), []Button{btn(btnToCategories, ActionTemplates, "")})
	}
	return t.templatePage(category, offset)
}

// replayTemplatePage falls back to the category list when the page is gone.
func replayTemplatePage(t *turn) session.State {
	page, err := t.e.templatePage(t.snap, t.s.Screen.Category, t.s.Screen.Offset)
	if err != nil {
		return showCategories(t)
	}
	t.send(page...)
	return session.StateBrowsingTemplateCategory
}

func (t *turn) templatePage(category string, offset int) session.State {
	page, err := t.e.templatePage(t.snap, category, offset)
	if err != nil {
		return t.missing(err, []Button{btn(btnToCategories, ActionTemplates, "")})
	}
	t.s.Screen = session.Screen{Category: category, Offset: offset}
	t.send(page...)
	return session.StateBrowsingTemplateCategory
}

func (t *turn) templateParam() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(t.ev.Param), 10, 64)
	return id, err == nil
}

func showDetail(t *turn) session.State {
	id, ok := t.templateParam()
	if !ok {
		return t.missing(notFound(kindTemplate, t.ev.Param))
	}
	return t.detail(id)
}

func replayDetail(t *turn) session.State {
	tpl, ok := t.snap.TemplateByID(t.s.Screen.TemplateID)
	if !ok {
		return showCategories(t)
	}
	t.send(templateDetail(t.snap, tpl))
	return session.StateViewingTemplateDetail
}

func (t *turn) detail(id int64) session.State {
	tpl, ok := t.snap.TemplateByID(id)
	if !ok {
		return t.missing(notFound(kindTemplate, strconv.FormatInt(id, 10)), []Button{btn(btnToTemplates, ActionTemplates, "")})
	}
	t.s.Screen = session.Screen{Category: tpl.Category, TemplateID: tpl.ID}
	t.send(templateDetail(t.snap, tpl))
	return session.StateViewingTemplateDetail
}

func selectTemplate(t *turn) session.State {
	id, ok := t.templateParam()
	if !ok {
		return t.missing(notFound(kindTemplate, t.ev.Param))
	}
	tpl, ok := t.snap.TemplateByID(id)
	if !ok {
		return t.missing(notFound(kindTemplate, t.ev.Param))
	}
	t.s.SelectedTemplate = &tpl.ID
	t.send(customizationMenu(t.snap, t.s, fmt.Sprintf(textTemplateSelected, format.Escape(tpl.Name))))
	return session.StateCustomizing
}

func showBlockGroups(t *turn) session.State {
	t.send(blockGroups(t.snap))
	return session.StateBrowsingBlocks
}

func showBlockGroup(t *turn) session.State {
	return t.blockGroup(t.ev.Param)
}

func replayBlockGroup(t *turn) session.State {
	msg, err := blockGroup(t.snap, t.s.Screen.Category)
	if err != nil {
		return showBlockGroups(t)
	}
	t.send(msg)
	return session.StateBrowsingBlockCategory
}

func (t *turn) blockGroup(key string) session.State {
	msg, err := blockGroup(t.snap, key)
	if err != nil {
		return t.missing(err, []Button{btn(btnToBlocks, ActionBlocks, "")})
	}
	t.s.Screen = session.Screen{Category: key}
	t.send(msg)
	return session.StateBrowsingBlockCategory
}

func showStyleKinds(t *turn) session.State {
	t.send(styleKinds())
	return session.StateBrowsingStyles
}

func showStyleKind(t *turn) session.State {
	return t.styleKind(t.ev.Param)
}

func replayStyleKind(t *turn) session.State {
	msg, err := styleKind(t.snap, t.s.Screen.Category)
	if err != nil {
		return showStyleKinds(t)
	}
	t.send(msg)
	return session.StateBrowsingStyleCategory
}

func (t *turn) styleKind(key string) session.State {
	msg, err := styleKind(t.snap, key)
	if err != nil {
		return t.missing(err, []Button{btn(btnToStyles, ActionStyles, "")})
	}
	t.s.Screen = session.Screen{Category: key}
	t.send(msg)
	return session.StateBrowsingStyleCategory
}

func showCustomization(t *turn) session.State {
	t.send(customizationMenu(t.snap, t.s, ""))
	return session.StateCustomizing
}

func customize(t *turn) session.State {
	key, value := parseCustomize(t.ev.Param)
	field, ok := findField(key)
	if !ok {
		return t.missing(notFound(kindField, key), []Button{btn(btnToConstructor, ActionCustomization, "")})
	}
	t.s.Customization[field.Key] = value
	t.send(customizationMenu(t.snap, t.s, choices(t.s)))
	return session.StateCustomizing
}

func showPreview(t *turn) session.State {
	t.send(preview(t.snap, t.s))
	return session.StateCustomizing
}

func saveCustomization(t *turn) session.State {
	t.send(t.e.mainMenuMsg(format.Join(textSaved, selectedLine(t.snap, t.s), choices(t.s))))
	return session.StateRoot
}

func showOrdering(t *turn) session.State {
	t.send(t.e.tariffMenu(t.snap, t.s))
	return session.StateOrdering
}

// openOrdering shows the tariff menu; a numeric parameter pre-selects that template.
func openOrdering(t *turn) session.State {
	if t.ev.Param != "" {
		if id, ok := t.templateParam(); ok {
			tpl, found := t.snap.TemplateByID(id)
			if !found {
				return t.missing(notFound(kindTemplate, t.ev.Param))
			}
			t.s.SelectedTemplate = &tpl.ID
		}
	}
	return showOrdering(t)
}

func placeOrder(t *turn) session.State {
	if t.ev.Param == "" {
		return showOrdering(t)
	}
	if _, numeric := t.templateParam(); numeric {
		return openOrdering(t)
	}
	tariff, ok := findTariff(t.e.opts.Tariffs, t.ev.Param)
	if !ok {
		return t.missing(notFound(kindTariff, t.ev.Param))
	}
	return t.e.captureOrder(t, tariff)
}

func draftRequirements(t *turn) session.State {
	if t.ev.Param != "" {
		t.s.Requirements = format.Truncate(t.ev.Param, 2000)
	}
	return showOrdering(t)
}
