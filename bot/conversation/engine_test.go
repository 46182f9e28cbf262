package conversation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/themebot/bot/catalog"
	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/core/telegram/callbacks"
)

const testCatalog = `{
  "templates": [
    {"id": 1, "name": "Современный бизнес-лендинг", "category": "business", "price": 5000, "currency": "₽",
     "features": ["Адаптивный дизайн", "SEO-оптимизация", "Формы обратной связи", "Карта"],
     "description": "Лендинг для бизнеса", "preview_image": "https://example.com/1.png"},
    {"id": 2, "name": "Консалтинг", "category": "business", "price": 7000, "currency": "₽"},
    {"id": 3, "name": "Агентство", "category": "business", "price": 9000, "currency": "₽"},
    {"id": 4, "name": "Стартап", "category": "business", "price": 6000, "currency": "₽"},
    {"id": 10, "name": "Фотограф", "category": "portfolio", "price": 4000, "currency": "₽"},
    {"id": 11, "name": "Дизайнер", "category": "portfolio", "price": 4500, "currency": "₽"},
    {"id": 12, "name": "Архитектор", "category": "portfolio", "price": 4800, "currency": "₽"}
  ],
  "categories": {
    "business": {"name": "Бизнес", "icon": "💼"},
    "portfolio": {"name": "Портфолио", "icon": "🎨"}
  },
  "components": {
    "headers": {"h1": {"name": "Шапка", "html": "<header>Logo</header>"}}
  },
  "styles": {
    "gradients": {"sunset": {"name": "Закат", "css": "background: linear-gradient(#f00, #0f0);"}},
    "shadows": {"soft": {"name": "Мягкая", "css": "box-shadow: 0 1px 2px #000;"}}
  }
}`

type notifierSpy struct {
	mu    sync.Mutex
	calls []string
	err   error
	panic bool
}

func (n *notifierSpy) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, text)
	if n.panic {
		panic("notifier exploded")
	}
	return n.err
}

func (n *notifierSpy) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

type archiveSpy struct {
	mu       sync.Mutex
	saved    []OrderRecord
	statuses map[string]session.OrderStatus
}

func (a *archiveSpy) SaveOrder(_ context.Context, rec OrderRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, rec)
	return nil
}

func (a *archiveSpy) UpdateOrderStatus(_ context.Context, id string, status session.OrderStatus) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.statuses == nil {
		a.statuses = map[string]session.OrderStatus{}
	}
	a.statuses[id] = status
	return nil
}

type fixture struct {
	engine   *Engine
	sessions *session.Registry
	store    *catalog.Store
	notifier *notifierSpy
	archive  *archiveSpy
	now      *atomic.Int64
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	snap, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	now := &atomic.Int64{}
	now.Store(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC).UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()).UTC() }

	f := &fixture{
		sessions: session.NewRegistry(session.Options{Now: clock, Expiry: time.Hour}),
		store:    catalog.NewStore(snap),
		notifier: &notifierSpy{},
		archive:  &archiveSpy{},
		now:      now,
	}
	var seq atomic.Int64
	opts := Options{
		Catalog:  f.store,
		Sessions: f.sessions,
		Notifier: f.notifier,
		Archive:  f.archive,
		Now:      clock,
		NewOrderID: func() string {
			return "order-" + strconv.FormatInt(seq.Add(1), 10)
		},
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.engine = New(opts)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now.Add(int64(d))
}

func (f *fixture) dispatch(t *testing.T, userID int64, action Action, param string) Result {
	t.Helper()
	return f.engine.Dispatch(context.Background(), Event{
		UserID:  userID,
		Profile: session.Profile{FirstName: "Ann", Username: "ann"},
		Action:  action,
		Param:   param,
	})
}

func (f *fixture) force(t *testing.T, userID int64, state session.State, screen session.Screen) {
	t.Helper()
	require.NoError(t, f.sessions.Do(context.Background(), userID, session.Profile{}, func(s *session.Session) error {
		s.State = state
		s.Screen = screen
		return nil
	}))
}

func (f *fixture) session(t *testing.T, userID int64) *session.Session {
	t.Helper()
	s, ok := f.sessions.Get(userID)
	require.True(t, ok)
	return s
}

func allButtons(res Result) []Button {
	var out []Button
	for _, d := range res.Descriptors {
		out = append(out, d.Buttons()...)
	}
	return out
}

func countAction(res Result, action Action) int {
	n := 0
	for _, b := range allButtons(res) {
		if b.Action == action && b.URL == "" {
			n++
		}
	}
	return n
}

// screens puts a user into every state with a meaningful screen position.
var screens = map[session.State]session.Screen{
	session.StateRoot:                     {},
	session.StateBrowsingTemplates:        {},
	session.StateBrowsingTemplateCategory: {Category: "business"},
	session.StateViewingTemplateDetail:    {Category: "business", TemplateID: 1},
	session.StateBrowsingBlocks:           {},
	session.StateBrowsingBlockCategory:    {Category: "headers"},
	session.StateBrowsingStyles:           {},
	session.StateBrowsingStyleCategory:    {Category: "gradients"},
	session.StateCustomizing:              {},
	session.StateOrdering:                 {},
	session.StatePricing:                  {},
}

func TestBackToMainFromEveryState(t *testing.T) {
	for _, state := range session.States {
		t.Run(string(state), func(t *testing.T) {
			f := newFixture(t)
			f.force(t, 1, state, screens[state])
			require.NoError(t, f.sessions.Update(context.Background(), 1, func(s *session.Session) {
				id := int64(2)
				s.SelectedTemplate = &id
				s.Customization["fonts"] = "serif"
				s.Requirements = "draft"
			}))
			before := f.session(t, 1)

			res := f.dispatch(t, 1, ActionBackToMain, "")
			assert.Equal(t, session.StateRoot, res.State)
			assert.Equal(t, state, res.From)
			assert.NoError(t, res.Err)

			after := f.session(t, 1)
			assert.Equal(t, before.SelectedTemplate, after.SelectedTemplate)
			assert.Equal(t, before.Customization, after.Customization)
			assert.Equal(t, before.Requirements, after.Requirements)
			assert.Equal(t, before.Orders, after.Orders)
			assert.Equal(t, session.StateRoot, after.State)
		})
	}
}

func TestViewRendersTemplateVerbatim(t *testing.T) {
	f := newFixture(t)
	snap := f.store.Snapshot()
	for _, tpl := range snap.Templates() {
		f.force(t, 1, session.StateBrowsingTemplateCategory, session.Screen{Category: tpl.Category})
		res := f.dispatch(t, 1, ActionView, strconv.FormatInt(tpl.ID, 10))
		require.Equal(t, session.StateViewingTemplateDetail, res.State, tpl.Name)
		require.Len(t, res.Descriptors, 1)
		body := res.Descriptors[0].Body
		assert.Contains(t, body, tpl.Name)
		assert.Contains(t, body, tpl.Price.String())
		for _, feature := range tpl.Features {
			assert.Contains(t, body, feature)
		}
	}
}

func TestViewUnknownTemplateKeepsState(t *testing.T) {
	f := newFixture(t)
	f.force(t, 1, session.StateBrowsingTemplateCategory, session.Screen{Category: "business"})

	res := f.dispatch(t, 1, ActionView, "999")
	assert.Equal(t, session.StateBrowsingTemplateCategory, res.State)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
	require.ErrorIs(t, res.Err, ErrEntryNotFound)
	var nf *EntryNotFoundError
	require.True(t, errors.As(res.Err, &nf))
	assert.Equal(t, kindTemplate, nf.Kind)
	require.Len(t, res.Descriptors, 1)
	assert.Equal(t, "❌ Шаблон не найден", res.Descriptors[0].Body)
	assert.Equal(t, 1, countAction(res, ActionBackToMain))
}

func TestRepeatedEventRendersIdentically(t *testing.T) {
	f := newFixture(t)
	events := []struct {
		state  session.State
		screen session.Screen
		action Action
		param  string
	}{
		{session.StateRoot, session.Screen{}, ActionTemplates, ""},
		{session.StateBrowsingTemplates, session.Screen{}, ActionCategory, "business"},
		{session.StateBrowsingTemplateCategory, session.Screen{Category: "business"}, ActionView, "1"},
		{session.StateBrowsingTemplateCategory, session.Screen{Category: "business"}, ActionMore, "business:3"},
		{session.StateBrowsingStyles, session.Screen{}, ActionCategory, "gradients"},
		{session.StateRoot, session.Screen{}, ActionPricing, ""},
		{session.StateCustomizing, session.Screen{}, ActionUnknown, "stale"},
	}
	for _, ev := range events {
		f.force(t, 1, ev.state, ev.screen)
		first := f.dispatch(t, 1, ev.action, ev.param)
		f.force(t, 1, ev.state, ev.screen)
		second := f.dispatch(t, 1, ev.action, ev.param)
		assert.Equal(t, first.Descriptors, second.Descriptors, "%s %s:%s", ev.state, ev.action, ev.param)
		assert.Equal(t, first.State, second.State)
	}
}

func TestPaginationAffordance(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, 3, PageSize)

	f.force(t, 1, session.StateBrowsingTemplates, session.Screen{})
	four := f.dispatch(t, 1, ActionCategory, "business")
	assert.Equal(t, session.StateBrowsingTemplateCategory, four.State)
	assert.Len(t, four.Descriptors, 4, "three cards and a footer")
	assert.Equal(t, 1, countAction(four, ActionMore))

	more := f.dispatch(t, 1, ActionMore, "business:3")
	assert.Equal(t, session.StateBrowsingTemplateCategory, more.State)
	assert.Len(t, more.Descriptors, 2)
	assert.Zero(t, countAction(more, ActionMore))
	assert.Contains(t, more.Descriptors[0].Body, "Стартап")

	f.force(t, 1, session.StateBrowsingTemplates, session.Screen{})
	three := f.dispatch(t, 1, ActionCategory, "portfolio")
	assert.Len(t, three.Descriptors, 4)
	assert.Zero(t, countAction(three, ActionMore))
}

func TestMorePastTheEndIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.force(t, 1, session.StateBrowsingTemplateCategory, session.Screen{Category: "business"})

	for _, param := range []string{"business:4", "business:x", "business", "nope:0"} {
		res := f.dispatch(t, 1, ActionMore, param)
		assert.Equal(t, session.StateBrowsingTemplateCategory, res.State, param)
		assert.ErrorIs(t, res.Err, ErrEntryNotFound, param)
	}
}

func TestBrowseToSelectScenario(t *testing.T) {
	f := newFixture(t)

	res := f.dispatch(t, 5, ActionTemplates, "")
	assert.Equal(t, session.StateBrowsingTemplates, res.State)
	assert.Equal(t, 2, countAction(res, ActionCategory))

	res = f.dispatch(t, 5, ActionCategory, "business")
	assert.Equal(t, session.StateBrowsingTemplateCategory, res.State)
	cards := 0
	for _, d := range res.Descriptors {
		for _, b := range d.Buttons() {
			if b.Action == ActionView {
				cards++
			}
		}
	}
	assert.Equal(t, 3, cards)
	assert.Equal(t, KindPhoto, res.Descriptors[0].Kind)
	assert.Equal(t, "https://example.com/1.png", res.Descriptors[0].Photo)

	res = f.dispatch(t, 5, ActionView, "1")
	assert.Equal(t, session.StateViewingTemplateDetail, res.State)
	assert.Contains(t, res.Descriptors[0].Body, "Современный бизнес-лендинг")

	res = f.dispatch(t, 5, ActionSelect, "1")
	assert.Equal(t, session.StateCustomizing, res.State)
	s := f.session(t, 5)
	require.NotNil(t, s.SelectedTemplate)
	assert.Equal(t, int64(1), *s.SelectedTemplate)
	assert.Equal(t, session.StateCustomizing, s.State)
}

func TestOrderScenarioWithFailingNotifier(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("operator unreachable")

	f.dispatch(t, 7, ActionView, "1")
	f.force(t, 7, session.StateViewingTemplateDetail, session.Screen{Category: "business", TemplateID: 1})
	res := f.dispatch(t, 7, ActionOrder, "1")
	require.Equal(t, session.StateOrdering, res.State)

	res = f.dispatch(t, 7, ActionText, "Нужен тёмный дизайн")
	assert.Equal(t, session.StateOrdering, res.State)
	assert.Contains(t, res.Descriptors[0].Body, "Нужен тёмный дизайн")

	res = f.dispatch(t, 7, ActionOrder, "pro")
	assert.Equal(t, session.StateRoot, res.State)
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Contains(t, res.Descriptors[0].Body, "Заявка принята")
	f.engine.Wait()

	calls := f.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "Про")
	assert.Contains(t, calls[0], "Современный бизнес-лендинг")
	assert.Contains(t, calls[0], "Нужен тёмный дизайн")

	s := f.session(t, 7)
	require.Len(t, s.Orders, 1)
	order := s.Orders[0]
	assert.Equal(t, "pro", order.Tier)
	require.NotNil(t, order.TemplateID)
	assert.Equal(t, int64(1), *order.TemplateID)
	assert.Equal(t, "Нужен тёмный дизайн", order.Requirements)
	assert.Equal(t, session.OrderFailed, order.Status)
	assert.Empty(t, s.Requirements)

	require.Len(t, f.archive.saved, 1)
	assert.Equal(t, session.OrderFailed, f.archive.statuses[order.ID])
}

func TestOrderWithoutTemplateIsForwarded(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, 8, ActionOrder, "")
	res := f.dispatch(t, 8, ActionOrder, "basic")
	assert.Equal(t, session.StateRoot, res.State)
	f.engine.Wait()

	s := f.session(t, 8)
	require.Len(t, s.Orders, 1)
	assert.Nil(t, s.Orders[0].TemplateID)
	assert.Equal(t, session.OrderForwarded, s.Orders[0].Status)
	assert.Contains(t, f.notifier.Calls()[0], "не выбран")
}

func TestUnknownTariffStaysInOrdering(t *testing.T) {
	f := newFixture(t)
	f.force(t, 1, session.StateOrdering, session.Screen{})
	res := f.dispatch(t, 1, ActionOrder, "platinum")
	assert.Equal(t, session.StateOrdering, res.State)
	assert.ErrorIs(t, res.Err, ErrEntryNotFound)
	assert.Empty(t, f.session(t, 1).Orders)
}

func TestPanickingNotifierDoesNotAffectDispatch(t *testing.T) {
	f := newFixture(t)
	f.notifier.panic = true
	f.force(t, 1, session.StateOrdering, session.Screen{})

	res := f.dispatch(t, 1, ActionOrder, "premium")
	assert.Equal(t, session.StateRoot, res.State)
	assert.Equal(t, OutcomeOK, res.Outcome)
	f.engine.Wait()

	s := f.session(t, 1)
	require.Len(t, s.Orders, 1)
	assert.Equal(t, session.OrderFailed, s.Orders[0].Status)
}

func TestNotificationDoesNotBlockReply(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(o *Options) {
		o.Notifier = NotifierFunc(func(ctx context.Context, _ string) error {
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})
	f.force(t, 1, session.StateOrdering, session.Screen{})

	done := make(chan Result, 1)
	go func() { done <- f.dispatch(t, 1, ActionOrder, "pro") }()
	select {
	case res := <-done:
		assert.Equal(t, session.StateRoot, res.State)
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch waited for the notifier")
	}
	close(release)
	f.engine.Wait()
	assert.Equal(t, session.OrderForwarded, f.session(t, 1).Orders[0].Status)
}

func TestOrderStatusDoesNotCountAsActivity(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(o *Options) {
		o.Notifier = NotifierFunc(func(context.Context, string) error {
			<-release
			return nil
		})
	})
	f.force(t, 1, session.StateOrdering, session.Screen{})
	f.dispatch(t, 1, ActionOrder, "pro")
	placed := f.session(t, 1).LastActivity

	f.advance(30 * time.Minute)
	close(release)
	f.engine.Wait()

	s := f.session(t, 1)
	assert.Equal(t, session.OrderForwarded, s.Orders[0].Status)
	assert.Equal(t, placed, s.LastActivity)
}

func TestNotificationTimeout(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.NotifyTimeout = 20 * time.Millisecond
		o.Notifier = NotifierFunc(func(ctx context.Context, _ string) error {
			<-ctx.Done()
			return ctx.Err()
		})
	})
	f.force(t, 1, session.StateOrdering, session.Screen{})
	f.dispatch(t, 1, ActionOrder, "pro")
	f.engine.Wait()
	assert.Equal(t, session.OrderFailed, f.session(t, 1).Orders[0].Status)
}

func TestExpiredSessionStartsFresh(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, 1, ActionTemplates, "")
	f.dispatch(t, 1, ActionCategory, "business")
	require.Equal(t, session.StateBrowsingTemplateCategory, f.session(t, 1).State)

	f.advance(2 * time.Hour)
	res := f.dispatch(t, 1, ActionView, "1")
	assert.Equal(t, session.StateRoot, res.From)
	assert.Equal(t, session.StateRoot, res.State)
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, 1, countAction(res, ActionTemplates), "main menu re-rendered")
}

func TestUnknownEventRerendersCurrentState(t *testing.T) {
	f := newFixture(t)
	for state, screen := range screens {
		f.force(t, 1, state, screen)
		res := f.dispatch(t, 1, ActionUnknown, "garbage")
		assert.Equal(t, state, res.State, state)
		assert.NotEmpty(t, res.Descriptors, state)
		assert.NoError(t, res.Err, state)
	}
}

func TestStaleScreenFallsBack(t *testing.T) {
	f := newFixture(t)
	f.force(t, 1, session.StateViewingTemplateDetail, session.Screen{TemplateID: 404})
	res := f.dispatch(t, 1, ActionUnknown, "")
	assert.Equal(t, session.StateBrowsingTemplates, res.State)

	f.force(t, 1, session.StateBrowsingBlockCategory, session.Screen{Category: "gone"})
	res = f.dispatch(t, 1, ActionUnknown, "")
	assert.Equal(t, session.StateBrowsingBlocks, res.State)
}

func TestEveryScreenHasBackAndValidButtons(t *testing.T) {
	f := newFixture(t)
	for state, screen := range screens {
		f.force(t, 1, state, screen)
		res := f.dispatch(t, 1, ActionUnknown, "")
		require.Equal(t, state, res.State)

		if state == session.StateRoot {
			assert.Equal(t, 1, countAction(res, ActionTemplates), state)
		} else {
			assert.GreaterOrEqual(t, countAction(res, ActionBackToMain), 1, state)
		}

		for _, b := range allButtons(res) {
			if b.URL != "" {
				continue
			}
			data := b.Data()
			assert.LessOrEqual(t, len(data), callbacks.MaxDataLen, data)
			action, param := DecodeCallback(data)
			assert.Equal(t, b.Action, action, data)
			assert.Equal(t, b.Param, param, data)

			_, global := f.engine.global[b.Action]
			_, local := f.engine.table[state][b.Action]
			assert.True(t, global || local, "%s button %s is not handled", state, b.Action)
		}
	}
}

func TestCustomization(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, 1, ActionCustomization, "")

	res := f.dispatch(t, 1, ActionCustomize, "colors=dark")
	assert.Equal(t, session.StateCustomizing, res.State)
	res = f.dispatch(t, 1, ActionCustomize, "fonts")
	assert.Equal(t, session.StateCustomizing, res.State)
	assert.Equal(t, map[string]string{"colors": "dark", "fonts": FieldRequested}, f.session(t, 1).Customization)

	res = f.dispatch(t, 1, ActionCustomize, "sounds")
	assert.Equal(t, session.StateCustomizing, res.State)
	assert.ErrorIs(t, res.Err, ErrEntryNotFound)

	res = f.dispatch(t, 1, ActionPreview, "")
	assert.Equal(t, session.StateCustomizing, res.State)
	assert.Contains(t, res.Descriptors[0].Body, "dark")

	res = f.dispatch(t, 1, ActionSave, "")
	assert.Equal(t, session.StateRoot, res.State)
	assert.Contains(t, res.Descriptors[0].Body, "Настройки сохранены")
	assert.Len(t, f.session(t, 1).Customization, 2)
}

func TestFeatureFlags(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.Features = Features{DisableBlocks: true}
	})
	res := f.dispatch(t, 1, ActionBackToMain, "")
	assert.Zero(t, countAction(res, ActionBlocks))
	assert.Equal(t, 1, countAction(res, ActionStyles))

	res = f.dispatch(t, 1, ActionBlocks, "")
	assert.Equal(t, session.StateRoot, res.State)
	assert.Equal(t, 1, countAction(res, ActionTemplates))
}

func TestPricingIsTransient(t *testing.T) {
	f := newFixture(t)
	res := f.dispatch(t, 1, ActionPricing, "")
	assert.Equal(t, session.StatePricing, res.State)
	assert.Contains(t, res.Descriptors[0].Body, "25000₽")

	res = f.dispatch(t, 1, ActionTemplates, "")
	assert.Equal(t, session.StateBrowsingTemplates, res.State)

	f.force(t, 1, session.StatePricing, session.Screen{})
	res = f.dispatch(t, 1, ActionOrder, "")
	assert.Equal(t, session.StateOrdering, res.State)
}

func TestHelpAndContactsResolveToRoot(t *testing.T) {
	f := newFixture(t)
	for _, action := range []Action{ActionHelp, ActionContacts} {
		res := f.dispatch(t, 1, action, "")
		assert.Equal(t, session.StateRoot, res.State)
		assert.Equal(t, 1, countAction(res, ActionBackToMain))

		f.force(t, 1, session.StateOrdering, session.Screen{})
		res = f.dispatch(t, 1, action, "")
		assert.Equal(t, session.StateRoot, res.State, "%s from ORDERING", action)
	}
}

func TestStartGreetsByName(t *testing.T) {
	f := newFixture(t)
	res := f.dispatch(t, 1, ActionStart, "")
	assert.Equal(t, session.StateRoot, res.State)
	assert.True(t, strings.HasPrefix(res.Descriptors[0].Body, "Привет, Ann!"))
}

type panicCatalog struct{}

func (panicCatalog) Snapshot() *catalog.Snapshot { panic("catalog unavailable") }

func TestHandlerPanicLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t)
	f.force(t, 1, session.StateCustomizing, session.Screen{})

	broken := New(Options{Catalog: panicCatalog{}, Sessions: f.sessions})
	res := broken.Dispatch(context.Background(), Event{UserID: 1, Action: ActionBackToMain})
	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.Equal(t, session.StateCustomizing, res.State)
	assert.Error(t, res.Err)
	assert.Equal(t, 1, countAction(res, ActionBackToMain))
	assert.Equal(t, session.StateCustomizing, f.session(t, 1).State)
}

func TestCatalogReloadIsVisibleToNextDispatch(t *testing.T) {
	f := newFixture(t)
	f.force(t, 1, session.StateBrowsingTemplateCategory, session.Screen{Category: "business"})
	f.store.Swap(catalog.Demo())

	res := f.dispatch(t, 1, ActionView, "2")
	assert.ErrorIs(t, res.Err, ErrEntryNotFound)
	res = f.dispatch(t, 1, ActionView, "1")
	assert.Equal(t, session.StateViewingTemplateDetail, res.State)
}

func TestOverlongCategoryKeysStayOffMenus(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("k", 64)
	snap, err := catalog.Parse([]byte(`{"templates": [
		{"id": 1, "name": "A", "category": "short", "price": 1},
		{"id": 2, "name": "B", "category": "` + long + `", "price": 1}
	]}`))
	require.NoError(t, err)
	f.store.Swap(snap)

	res := f.dispatch(t, 1, ActionTemplates, "")
	assert.Equal(t, 1, countAction(res, ActionCategory))
	for _, b := range allButtons(res) {
		assert.True(t, callbacks.Fits(string(b.Action), b.Param))
	}
}

func TestShowMoreWithColonInCategoryKey(t *testing.T) {
	f := newFixture(t)
	snap, err := catalog.Parse([]byte(`{"templates": [
		{"id": 1, "name": "A", "category": "web:landing", "price": 1},
		{"id": 2, "name": "B", "category": "web:landing", "price": 1},
		{"id": 3, "name": "C", "category": "web:landing", "price": 1},
		{"id": 4, "name": "D", "category": "web:landing", "price": 1}
	]}`))
	require.NoError(t, err)
	f.store.Swap(snap)

	f.force(t, 1, session.StateBrowsingTemplates, session.Screen{})
	page := f.dispatch(t, 1, ActionCategory, "web:landing")
	require.NoError(t, page.Err)

	var param string
	for _, b := range allButtons(page) {
		if b.Action == ActionMore {
			param = b.Param
		}
	}
	require.Equal(t, "web:landing:3", param)

	more := f.dispatch(t, 1, ActionMore, param)
	require.NoError(t, more.Err)
	assert.Equal(t, session.StateBrowsingTemplateCategory, more.State)
	assert.Len(t, more.Descriptors, 2)
	assert.Contains(t, more.Descriptors[0].Body, "D")
	assert.Equal(t, session.Screen{Category: "web:landing", Offset: 3}, f.session(t, 1).Screen)
}

func TestEntryEventsApplyFromMainMenu(t *testing.T) {
	f := newFixture(t)
	f.force(t, 1, session.StateBrowsingTemplateCategory, session.Screen{Category: "business", Offset: 3})

	stale := f.dispatch(t, 1, ActionPricing, "")
	assert.Equal(t, session.StateBrowsingTemplateCategory, stale.State)

	res := f.engine.Dispatch(context.Background(), Event{UserID: 1, Action: ActionPricing, Entry: true})
	assert.Equal(t, session.StateBrowsingTemplateCategory, res.From)
	assert.Equal(t, session.StatePricing, res.State)
	assert.Equal(t, session.Screen{}, f.session(t, 1).Screen)

	res = f.engine.Dispatch(context.Background(), Event{UserID: 1, Action: ActionCategory, Param: "business", Entry: true})
	assert.Equal(t, session.StateRoot, res.State, "entries outside the main menu fall back to it")
}
