package middleware

import tele "gopkg.in/telebot.v4"

const (
	keyMessages = "messages"
	keyKeyboard = "kb"
)

// metricsContext counts outgoing messages and whether any carried a keyboard.
type metricsContext struct{ tele.Context }

func (m metricsContext) track(err error, opts []any) error {
	if err != nil {
		return err
	}
	n, _ := m.Get(keyMessages).(int)
	m.Set(keyMessages, n+1)
	if hasKeyboard(opts) {
		m.Set(keyKeyboard, true)
	}
	return nil
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) Send(what any, opts ...any) error {
	return m.track(m.Context.Send(what, opts...), opts)
}

func (m metricsContext) Reply(what any, opts ...any) error {
	return m.track(m.Context.Reply(what, opts...), opts)
}

func (m metricsContext) Edit(what any, opts ...any) error {
	return m.track(m.Context.Edit(what, opts...), opts)
}

func (m metricsContext) EditOrSend(what any, opts ...any) error {
	return m.track(m.Context.EditOrSend(what, opts...), opts)
}

func (m metricsContext) EditOrReply(what any, opts ...any) error {
	return m.track(m.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware instruments the context to track message count and keyboard usage.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if _, wrapped := c.(metricsContext); wrapped {
			return next(c)
		}
		c.Set(keyMessages, 0)
		c.Set(keyKeyboard, false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters reads the message count and keyboard flag recorded for c.
func GetCounters(c tele.Context) (int, bool) {
	msgs, _ := c.Get(keyMessages).(int)
	kb, _ := c.Get(keyKeyboard).(bool)
	return msgs, kb
}
