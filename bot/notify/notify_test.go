package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyPostsHTMLMessage(t *testing.T) {
	var got sendMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n, err := New(Options{Token: "123:abc", ChatID: 42, APIBase: srv.URL + "/"})
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), "<b>order</b>"))

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, int64(42), got.ChatID)
	assert.Equal(t, "🔔 <b>order</b>", got.Text)
	assert.Equal(t, "HTML", got.ParseMode)
}

func TestNotifyNon200IsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	n, err := New(Options{Token: "t", ChatID: 1, APIBase: srv.URL})
	require.NoError(t, err)
	err = n.Notify(context.Background(), "x")
	require.ErrorIs(t, err, ErrDelivery)

	var de *DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusBadRequest, de.Status)
	assert.Contains(t, de.Error(), "chat not found")
	assert.Equal(t, "NOTIFY_DELIVERY", de.Code())
}

func TestNotifyHonoursContextDeadline(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	n, err := New(Options{Token: "secret-token", ChatID: 1, APIBase: srv.URL, Client: srv.Client()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = n.Notify(ctx, "x")
	require.ErrorIs(t, err, ErrDelivery)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestNotifySendsOnceWhenResponseIsLate(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if posts.Add(1) == 1 {
			select {
			case <-time.After(300 * time.Millisecond):
			case <-r.Context().Done():
			}
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n, err := New(Options{
		Token:           "t",
		ChatID:          1,
		APIBase:         srv.URL,
		Timeout:         5 * time.Second,
		ResponseTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	err = n.Notify(context.Background(), "order")
	require.ErrorIs(t, err, ErrDelivery)
	assert.Equal(t, int32(1), posts.Load())
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{ChatID: 1})
	assert.Error(t, err)
	_, err = New(Options{Token: "t"})
	assert.Error(t, err)
}
