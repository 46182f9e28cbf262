package conversation

import (
	"strings"

	"github.com/m3rciful/themebot/bot/catalog"
)

// Tariff is a pricing package selectable at order time.
type Tariff struct {
	Key      string
	Name     string
	Icon     string
	Price    catalog.Price
	Features []string
	Duration string
}

// Label is the button caption, e.g. "⭐ Про (8000₽)".
func (t Tariff) Label() string {
	return strings.TrimSpace(t.Icon+" "+t.Name) + " (" + t.Price.String() + ")"
}

// DefaultTariffs is used when configuration provides none.
func DefaultTariffs() []Tariff {
	rub := func(n int64) catalog.Price { return catalog.Price{Amount: n, Currency: "₽"} }
	return []Tariff{
		{
			Key: "basic", Name: "Базовый", Icon: "🚀", Price: rub(5000),
			Features: []string{"1-2 страницы", "Адаптивный дизайн", "Базовая SEO-оптимизация"},
			Duration: "3-5 дней",
		},
		{
			Key: "pro", Name: "Про", Icon: "⭐", Price: rub(8000),
			Features: []string{"3-5 страниц", "Продвинутый дизайн", "Формы обратной связи"},
			Duration: "5-7 дней",
		},
		{
			Key: "premium", Name: "Премиум", Icon: "💎", Price: rub(15000),
			Features: []string{"5-10 страниц", "Уникальный дизайн", "Анимации и эффекты"},
			Duration: "7-10 дней",
		},
		{
			Key: "corporate", Name: "Корпоративный", Icon: "🏢", Price: rub(25000),
			Features: []string{"Неограниченное количество страниц", "Полная кастомизация", "Техническая поддержка 24/7"},
			Duration: "10-14 дней",
		},
	}
}

func findTariff(tariffs []Tariff, key string) (Tariff, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, t := range tariffs {
		if t.Key == key {
			return t, true
		}
	}
	return Tariff{}, false
}

// Field is a customization option.
type Field struct {
	Key   string
	Label string
	Hint  string
}

// Fields lists the customization options in menu order.
var Fields = []Field{
	{Key: "colors", Label: "🎨 Цветовая схема", Hint: "измените цвета сайта"},
	{Key: "content", Label: "📝 Контент", Hint: "отредактируйте тексты и блоки"},
	{Key: "images", Label: "🖼️ Изображения", Hint: "загрузите свои фото"},
	{Key: "fonts", Label: "🔤 Шрифты", Hint: "выберите стиль текста"},
	{Key: "responsive", Label: "📱 Адаптивность", Hint: "настройте для мобильных"},
	{Key: "animations", Label: "⚡ Анимации", Hint: "добавьте эффекты"},
}

// FieldRequested is stored for a field chosen without an explicit value.
const FieldRequested = "requested"

func findField(key string) (Field, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// parseCustomize splits "field" or "field=value".
func parseCustomize(param string) (string, string) {
	key, value, ok := strings.Cut(param, "=")
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		value = FieldRequested
	}
	return key, value
}
