package catalog

// DemoSource is the Source of the built-in dataset.
const DemoSource = "demo"

// Demo returns the minimal built-in catalog used when no source can be loaded.
func Demo() *Snapshot {
	snap, err := build(demoDocument())
	if err != nil {
		panic("catalog: demo dataset is invalid: " + err.Error())
	}
	snap.source = DemoSource
	return snap
}

func demoDocument() document {
	return document{
		Templates: []templateDoc{{
			ID:           1,
			Name:         "Современный бизнес-лендинг",
			Category:     "business",
			Price:        5000,
			Currency:     "₽",
			Features:     []string{"Адаптивный дизайн", "SEO-оптимизация", "Формы обратной связи"},
			Description:  "Современный лендинг для бизнеса",
			PreviewImage: "https://via.placeholder.com/400x300/4A90E2/FFFFFF?text=Бизнес-лендинг",
			Tags:         []string{"бизнес", "лендинг", "адаптивный"},
		}},
		Categories: object[categoryDoc]{
			{Key: "business", Value: categoryDoc{Name: "Бизнес", Icon: "💼"}},
		},
		Components: object[object[componentDoc]]{
			{Key: "headers", Value: object[componentDoc]{
				{Key: "header_simple", Value: componentDoc{
					Name: "Простая шапка",
					HTML: `<header class="header"><nav><a href="/">Logo</a></nav></header>`,
				}},
			}},
		},
		Styles: stylesDoc{
			Gradients: object[styleDoc]{{Key: "sunset", Value: styleDoc{
				Name: "Закат",
				CSS:  "background: linear-gradient(135deg, #ff7e5f, #feb47b);",
			}}},
			Shadows: object[styleDoc]{{Key: "soft", Value: styleDoc{
				Name: "Мягкая тень",
				CSS:  "box-shadow: 0 4px 12px rgba(0, 0, 0, 0.1);",
			}}},
			Effects: object[styleDoc]{{Key: "hover_lift", Value: styleDoc{
				Name: "Подъем при наведении",
				CSS:  "transition: transform .2s; &:hover { transform: translateY(-4px); }",
			}}},
			Predefined: object[styleDoc]{{Key: "minimal", Value: styleDoc{
				Name: "Минимализм",
				CSS:  "font-family: Inter, sans-serif; color: #222; background: #fff;",
			}}},
		},
	}
}
