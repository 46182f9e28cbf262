package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/themebot/bot/conversation"
	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/bot/session/redisstore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "telegram:\n  token: abc\n"))
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.CoreConfig().Telegram.Token)
	assert.Equal(t, DefaultCatalogPath, cfg.Catalog.Path)
	assert.Equal(t, session.DefaultExpiry, cfg.Session.Expiry)
	assert.Equal(t, session.DefaultActiveWindow, cfg.Session.ActiveWindow)
	assert.Zero(t, cfg.Session.EvictAfter)
	assert.Equal(t, 10*time.Second, cfg.Notifier.Timeout)
	assert.Equal(t, ":8080", cfg.Health.Listen)
	assert.Equal(t, redisstore.DefaultPrefix, cfg.Redis.Prefix)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Database.Enabled())
	assert.Nil(t, cfg.TariffList())
	assert.Equal(t, conversation.Features{}, cfg.EngineFeatures())
	assert.False(t, cfg.NotifierEnabled(), "no admin chat, nothing to notify")
	assert.True(t, cfg.HealthEnabled())
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: abc
  admin_id: 99
catalog:
  path: /srv/catalog.json
session:
  expiry: 30m
  evict_after: 72h
notifier:
  timeout: 3s
health:
  listen: "off"
redis:
  addr: localhost:6379
  db: 2
database:
  host: db
  name: themebot
tariffs:
  - key: " Start "
    name: Старт
    icon: 🚀
    price: 3000
    features: [Лендинг]
    duration: 2 дня
features:
  blocks: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/catalog.json", cfg.Catalog.Path)
	assert.Equal(t, 30*time.Minute, cfg.Session.Expiry)
	assert.Equal(t, 72*time.Hour, cfg.Session.EvictAfter)
	assert.Equal(t, 72*time.Hour, cfg.Redis.TTL, "redis ttl follows eviction")
	assert.Equal(t, 3*time.Second, cfg.Notifier.Timeout)
	assert.False(t, cfg.HealthEnabled())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.Database.Enabled())
	assert.True(t, cfg.NotifierEnabled())

	tariffs := cfg.TariffList()
	require.Len(t, tariffs, 1)
	assert.Equal(t, "start", tariffs[0].Key)
	assert.Equal(t, "🚀 Старт (3000₽)", tariffs[0].Label())

	assert.Equal(t, conversation.Features{DisableBlocks: true}, cfg.EngineFeatures())
}

func TestNotifierCanBeSwitchedOff(t *testing.T) {
	cfg, err := Load(writeConfig(t, "telegram:\n  token: abc\n  admin_id: 5\nnotifier:\n  enabled: false\n"))
	require.NoError(t, err)
	assert.False(t, cfg.NotifierEnabled())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("CATALOG_PATH", "/env/catalog.json")
	t.Setenv("SESSION_EXPIRY", "15m")
	t.Setenv("FEATURE_STYLES", "false")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "/env/catalog.json", cfg.Catalog.Path)
	assert.Equal(t, 15*time.Minute, cfg.Session.Expiry)
	assert.Equal(t, conversation.Features{DisableStyles: true}, cfg.EngineFeatures())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing token":     "catalog:\n  path: x\n",
		"negative evict":    "telegram:\n  token: a\nsession:\n  evict_after: -1h\n",
		"tariff no key":     "telegram:\n  token: a\ntariffs:\n  - name: X\n    price: 1\n",
		"tariff no price":   "telegram:\n  token: a\ntariffs:\n  - key: x\n    name: X\n",
		"tariff duplicate":  "telegram:\n  token: a\ntariffs:\n  - {key: x, name: X, price: 1}\n  - {key: X, name: Y, price: 2}\n",
		"negative redis db": "telegram:\n  token: a\nredis:\n  db: -1\n",
		"bad duration":      "telegram:\n  token: a\nsession:\n  expiry: soon\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
