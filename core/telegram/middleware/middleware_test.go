package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the tele.Context methods these middlewares touch.
type fakeContext struct {
	tele.Context
	update tele.Update
	user   *tele.User
	store  map[string]any
	sent   []any
}

func newFakeContext(userID int64, upd tele.Update) *fakeContext {
	return &fakeContext{update: upd, user: &tele.User{ID: userID}, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update   { return f.update }
func (f *fakeContext) Sender() *tele.User    { return f.user }
func (f *fakeContext) Chat() *tele.Chat      { return &tele.Chat{ID: f.user.ID, Type: tele.ChatPrivate} }
func (f *fakeContext) Text() string          { return "" }
func (f *fakeContext) Get(key string) any    { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }
func (f *fakeContext) Send(what any, opts ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func message() tele.Update { return tele.Update{ID: 1, Message: &tele.Message{Text: "hi"}} }

func TestAdminOnlyMiddleware(t *testing.T) {
	var rejected, passed int
	mw := AdminOnlyMiddleware(AdminOptions{AdminID: 7, OnReject: func(tele.Context) error { rejected++; return nil }})
	h := mw(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(newFakeContext(7, message())))
	require.NoError(t, h(newFakeContext(8, message())))
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, rejected)

	assert.False(t, AdminOptions{}.IsAdmin(newFakeContext(0, message())))
}

func TestRecoverMiddlewareReturnsError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newFakeContext(1, message()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRateLimitMiddleware(t *testing.T) {
	var limited, passed int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	h := mw(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(newFakeContext(1, message())))
	require.NoError(t, h(newFakeContext(1, message())))
	require.NoError(t, h(newFakeContext(2, message())))
	cb := tele.Update{ID: 2, Callback: &tele.Callback{Data: "\ftemplates"}}
	require.NoError(t, h(newFakeContext(1, cb)))

	assert.Equal(t, 3, passed)
	assert.Equal(t, 1, limited)
}

func TestMessageMetricsMiddleware(t *testing.T) {
	fc := newFakeContext(1, message())
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		require.NoError(t, c.Send("plain"))
		return c.Send("menu", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
	})
	require.NoError(t, h(fc))

	msgs, kb := GetCounters(fc)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	fc := newFakeContext(5, tele.Update{ID: 77, Message: &tele.Message{Text: "/start"}})
	err := LoggerMiddleware(func(c tele.Context) error {
		rid, _ := c.Get("rid").(string)
		if rid != "77:5:5" {
			return errors.New("unexpected rid " + rid)
		}
		return nil
	})(fc)
	require.NoError(t, err)
	assert.True(t, recent.firstTime(78, time.Now()))
	assert.False(t, recent.firstTime(77, time.Now()))
}
