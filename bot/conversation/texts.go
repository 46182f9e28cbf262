package conversation

// User-facing copy.
const (
	textMainMenu = "🏠 <b>Главное меню</b>\n\nВыберите действие:"
	textGreeting = "Я помогу вам создать профессиональный сайт.\nВыберите действие:"

	textCategories       = "📚 <b>Выберите категорию шаблонов:</b>\n\nУ нас есть шаблоны для различных типов сайтов:"
	textPageMore         = "Показаны шаблоны %d–%d из %d. Хотите увидеть остальные?"
	textPageLast         = "Это все шаблоны категории. Выберите подходящий!"
	textBlocks           = "🧱 <b>UI Блоки и компоненты</b>\n\nВыберите тип компонентов для просмотра:"
	textStyles           = "🎨 <b>Стили и эффекты</b>\n\nВыберите тип стилей для просмотра:"
	textIncludedHeader   = "🚀 <b>Что включено:</b>"
	textTemplateSelected = "✅ Шаблон <b>%s</b> выбран!"

	textCustomization = "🎨 <b>Конструктор сайта</b>\n\nВыберите, что хотите настроить:"
	textCustomizeTail = "После настройки можете предварительно просмотреть результат!"
	textPreview       = "👁️ <b>Предпросмотр</b>"
	textSaved         = "💾 <b>Настройки сохранены!</b>"
	textNothingChosen = "Пока ничего не настроено."
	textFieldChosen   = "✔️ %s: %s"

	textTariffs         = "📦 <b>Выберите тарифный план:</b>"
	textRequirementsAsk = "✍️ Опишите пожелания к сайту обычным сообщением, мы приложим их к заявке."
	textRequirements    = "📝 <b>Ваши пожелания:</b>\n%s"
	textOrderPlaced     = "✅ <b>Заявка принята!</b>\n\nТариф: %s\nНомер заявки: %s\n\nМенеджер свяжется с вами в ближайшее время."

	textPricing       = "💰 <b>Наши цены</b>"
	textExtraServices = "💡 <b>Дополнительные услуги:</b>\n• SEO-продвижение: от 5000₽/мес\n• Техподдержка: от 2000₽/мес\n• Обновления: от 1000₽/мес"

	textHelp = "❓ <b>Помощь и поддержка</b>\n\n" +
		"🤖 <b>Как пользоваться ботом:</b>\n" +
		"1. Выберите шаблон из каталога\n" +
		"2. Настройте его под свои нужды\n" +
		"3. Закажите разработку\n" +
		"4. Получите готовый сайт\n\n" +
		"📞 <b>Связаться с нами:</b>\n" +
		"• Telegram: @prothemes_support\n" +
		"• Email: support@prothemes.ru\n" +
		"• Телефон: +7 (999) 123-45-67\n\n" +
		"⏰ <b>Время работы:</b>\n" +
		"Пн-Пт: 9:00 - 18:00 (МСК)\n" +
		"Сб-Вс: 10:00 - 16:00 (МСК)"

	textContacts = "📞 <b>Наши контакты</b>\n\n" +
		"🏢 <b>ProThemesRU</b>\n" +
		"Создание профессиональных сайтов\n\n" +
		"📱 <b>Telegram:</b> @prothemes_support\n" +
		"📧 <b>Email:</b> info@prothemes.ru\n" +
		"📞 <b>Телефон:</b> +7 (999) 123-45-67\n" +
		"🌐 <b>Сайт:</b> https://prothemes.ru\n\n" +
		"📍 <b>Адрес:</b>\n" +
		"г. Москва, ул. Примерная, д. 123\n\n" +
		"⏰ <b>Время работы:</b>\n" +
		"Понедельник - Пятница: 9:00 - 18:00\n" +
		"Суббота: 10:00 - 16:00\n" +
		"Воскресенье: выходной"

	textInternalError = "⚠️ Что-то пошло не так. Попробуйте ещё раз или вернитесь в главное меню."
)

var notFoundTexts = map[string]string{
	kindTemplate:          "❌ Шаблон не найден",
	kindTemplateCategory:  "❌ Шаблоны в этой категории не найдены",
	kindComponentCategory: "❌ Компоненты не найдены",
	kindStyleCategory:     "❌ Стили не найдены",
	kindTariff:            "❌ Тариф не найден",
	kindField:             "❌ Такой настройки нет",
	kindPage:              "❌ Больше шаблонов нет",
}

var includedItems = []string{
	"Адаптивный дизайн",
	"SEO-оптимизация",
	"Техническая поддержка",
	"Обучение работе с сайтом",
}

// Button captions.
const (
	btnTemplates     = "📚 Шаблоны"
	btnBlocks        = "🧱 Блоки"
	btnStyles        = "🎨 Стили"
	btnCustomization = "🎨 Конструктор"
	btnOrder         = "📦 Заказать"
	btnPricing       = "💰 Цены"
	btnHelp          = "❓ Помощь"
	btnContacts      = "📞 Контакты"
	btnBackToMain    = "🔙 В главное меню"
	btnHome          = "🏠 В главное меню"
	btnView          = "👁️ Просмотр"
	btnSelect        = "✅ Выбрать"
	btnSelectThis    = "✅ Выбрать этот шаблон"
	btnOrderThis     = "💰 Заказать"
	btnMore          = "📄 Показать еще"
	btnToCategories  = "🔙 Назад к категориям"
	btnToTemplates   = "🔙 Назад к шаблонам"
	btnToBlocks      = "🔙 Назад к блокам"
	btnToStyles      = "🔙 Назад к стилям"
	btnToConstructor = "🔙 К конструктору"
	btnPreview       = "👁️ Предпросмотр"
	btnSave          = "💾 Сохранить"
	btnConsultation  = "💬 Консультация"
	btnTelegram      = "💬 Написать в Telegram"
	btnWebsite       = "🌐 Наш сайт"
)

const (
	supportURL = "https://t.me/prothemes_support"
	websiteURL = "https://prothemes.ru"
)
