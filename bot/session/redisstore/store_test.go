package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/bot/session/redisstore"
)

func newStore(t *testing.T, opts ...redisstore.Option) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redisstore.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestStoreRoundTrip(t *testing.T) {
	store, mr := newStore(t, redisstore.WithPrefix("test:"))
	ctx := context.Background()

	tpl := int64(7)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &session.Session{
		UserID:           42,
		Profile:          session.Profile{FirstName: "Ann", Username: "ann"},
		CreatedAt:        now,
		LastActivity:     now,
		State:            session.StateCustomizing,
		SelectedTemplate: &tpl,
		Customization:    map[string]string{"colors": "dark"},
		Orders: []session.Order{{
			ID: "o-1", TemplateID: &tpl, Tier: "pro", Status: session.OrderForwarded, CreatedAt: now,
		}},
	}
	require.NoError(t, store.Save(ctx, in))
	assert.True(t, mr.Exists("test:42"))

	out, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, store.Delete(ctx, 42))
	_, err = store.Load(ctx, 42)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStoreMissingKey(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Load(context.Background(), 1)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStoreTTL(t *testing.T) {
	store, mr := newStore(t, redisstore.WithTTL(time.Minute))
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &session.Session{UserID: 5, State: session.StateRoot}))
	assert.Equal(t, time.Minute, mr.TTL(redisstore.DefaultPrefix+"5"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, 5)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStoreFeedsRegistry(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	first := session.NewRegistry(session.Options{Store: store})
	require.NoError(t, first.Do(ctx, 9, session.Profile{FirstName: "Bo"}, func(s *session.Session) error {
		s.State = session.StateOrdering
		s.Requirements = "dark theme"
		return nil
	}))

	second := session.NewRegistry(session.Options{Store: store})
	restored := second.GetOrCreate(ctx, 9, session.Profile{})
	assert.Equal(t, session.StateOrdering, restored.State)
	assert.Equal(t, "dark theme", restored.Requirements)
	assert.Equal(t, "Bo", restored.Profile.FirstName)
}
