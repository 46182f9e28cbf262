package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/themebot/core/config"
	"github.com/m3rciful/themebot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Main menu", Aliases: []string{"menu"}}))
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Stats", AdminOnly: true}))
	require.Error(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "again"}))
	require.Error(t, reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "Help"}))
	require.Error(t, reg.RegisterCommand("/x", commands.Command{Description: "no handler"}))

	assert.Equal(t, []tele.Command{{Text: "start", Description: "Main menu"}}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 2)

	key, _, ok := reg.LookupCommand("/menu@themebot now")
	require.True(t, ok)
	assert.Equal(t, "/start", key)
	_, _, ok = reg.LookupCommand("hello there")
	assert.False(t, ok)
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("view", noop))
	require.Error(t, reg.RegisterCallback("view", noop))
	require.Error(t, reg.RegisterCallback("", noop))
	require.NoError(t, reg.RegisterCallback("back_to_main", noop))

	_, ok := reg.GetCallback("view")
	assert.True(t, ok)
	_, ok = reg.GetCallback("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"back_to_main", "view"}, reg.ListCallbacks())

	assert.NotNil(t, reg.CallbackNotFound())
	reg.SetCallbackNotFound(nil)
	assert.NotNil(t, reg.CallbackNotFound())
	reg.SetTextFallback(noop)
	assert.NotNil(t, reg.TextFallback())
}

func TestBuildPoller(t *testing.T) {
	lp, ok := BuildPoller(PollerOptions{RunMode: coreconfig.RunModeLongpoll}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, lp.Timeout)

	wh, ok := BuildPoller(PollerOptions{
		RunMode: coreconfig.RunModeWebhook,
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com"},
	}).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://bot.example.com", wh.Endpoint.PublicURL)
}

func TestDefaultMiddlewares(t *testing.T) {
	names := func(mws []Middleware) []string {
		var out []string
		for _, m := range mws {
			out = append(out, m.Name)
		}
		return out
	}
	assert.Equal(t, []string{"recover", "logger", "metrics"}, names(DefaultMiddlewares(nil, nil)))
	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 300}}
	assert.Equal(t, []string{"recover", "rate_limit", "logger", "metrics"}, names(DefaultMiddlewares(cfg, nil)))
}

func TestDeleteWebhook(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer srv.Close()

	require.NoError(t, deleteWebhook(context.Background(), srv.Client(), srv.URL, "123:abc", true))
	assert.Equal(t, "/bot123:abc/deleteWebhook", gotPath)
	assert.Equal(t, "drop_pending_updates=true", gotBody)

	assert.Error(t, deleteWebhook(context.Background(), srv.Client(), srv.URL, " ", false))
}

func TestRetryTransportRetriesDialErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := BuildHTTPClientWith(HTTPClientOptions{Timeout: time.Second, MaxRetries: 1, RetryBackoff: time.Millisecond})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	srv.Close()
	_, err = client.Get(srv.URL)
	assert.Error(t, err)
}

func TestNoRetryClientSendsOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := BuildHTTPClientWith(HTTPClientOptions{
		Timeout:         5 * time.Second,
		ResponseTimeout: 50 * time.Millisecond,
		RetryBackoff:    time.Millisecond,
		NoRetry:         true,
	})
	_, isPlain := client.Transport.(*http.Transport)
	assert.True(t, isPlain)

	resp, err := client.Post(srv.URL, "application/json", nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
