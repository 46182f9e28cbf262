package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/themebot/bot/catalog"
	"github.com/m3rciful/themebot/bot/session"
)

func TestDecodeCallback(t *testing.T) {
	cases := []struct {
		data   string
		action Action
		param  string
	}{
		{"\fview|12", ActionView, "12"},
		{"\fback_to_main", ActionBackToMain, ""},
		{"\fmore|business:3", ActionMore, "business:3"},
		{"category:business", ActionCategory, "business"},
		{"more:business:6", ActionMore, "business:6"},
		{"templates", ActionTemplates, ""},
		{" ORDER:pro ", ActionOrder, "pro"},
		{"price_1", ActionUnknown, "price_1"},
		{"\fbogus|1", ActionUnknown, "bogus|1"},
		{"", ActionUnknown, ""},
	}
	for _, tc := range cases {
		action, param := DecodeCallback(tc.data)
		assert.Equal(t, tc.action, action, "%q", tc.data)
		assert.Equal(t, tc.param, param, "%q", tc.data)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, action := range CallbackActions {
		for _, param := range []string{"", "1", "business:3", "colors=dark"} {
			gotAction, gotParam := DecodeCallback(EncodeCallback(action, param))
			assert.Equal(t, action, gotAction)
			assert.Equal(t, param, gotParam)
		}
	}
}

func TestEventBuilders(t *testing.T) {
	ev := CallbackEvent(1, session.Profile{}, "Select", " 4 ")
	assert.Equal(t, ActionSelect, ev.Action)
	assert.Equal(t, "4", ev.Param)

	ev = TextEvent(2, session.Profile{}, "  hello \n")
	assert.Equal(t, ActionText, ev.Action)
	assert.Equal(t, "hello", ev.Param)
}

func TestOperatorSummary(t *testing.T) {
	tpl := catalog.Template{ID: 3, Name: "Shop <new>"}
	id := int64(3)
	rec := OrderRecord{
		UserID:  42,
		Profile: session.Profile{FirstName: "Ann", Username: "ann"},
		Order:   session.Order{ID: "abc", TemplateID: &id, Requirements: "a & b"},
	}
	tariff := DefaultTariffs()[1]

	text := OperatorSummary(rec, tariff, &tpl)
	assert.Contains(t, text, "Ann (@ann), id <code>42</code>")
	assert.Contains(t, text, "⭐ Про (8000₽)")
	assert.Contains(t, text, "Shop &lt;new&gt; (#3)")
	assert.Contains(t, text, "a &amp; b")
	assert.Contains(t, text, "<code>abc</code>")

	text = OperatorSummary(rec, tariff, nil)
	assert.Contains(t, text, "Шаблон: #3")
}

func TestTariffLookup(t *testing.T) {
	tariff, ok := findTariff(DefaultTariffs(), " PRO ")
	assert.True(t, ok)
	assert.Equal(t, "pro", tariff.Key)

	_, ok = findTariff(DefaultTariffs(), "gold")
	assert.False(t, ok)
}

func TestParseCustomize(t *testing.T) {
	key, value := parseCustomize("Colors=dark blue")
	assert.Equal(t, "colors", key)
	assert.Equal(t, "dark blue", value)

	key, value = parseCustomize("fonts")
	assert.Equal(t, "fonts", key)
	assert.Equal(t, FieldRequested, value)
}
