// Package config is the themebot configuration: the shared core sections plus
// catalog, session, notifier, health, storage and tariff settings.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/themebot/bot/catalog"
	"github.com/m3rciful/themebot/bot/conversation"
	"github.com/m3rciful/themebot/bot/health"
	"github.com/m3rciful/themebot/bot/notify"
	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/bot/session/redisstore"
	coreconfig "github.com/m3rciful/themebot/core/config"
	coredatabase "github.com/m3rciful/themebot/core/database"
)

// DefaultCatalogPath is read when catalog.path is empty.
const DefaultCatalogPath = "data/catalog.json"

type CatalogConfig struct {
	Path string `yaml:"path" envconfig:"CATALOG_PATH"`
}

type SessionConfig struct {
	// Expiry resets an idle session to the main menu; a negative value disables it.
	Expiry        time.Duration `yaml:"expiry" envconfig:"SESSION_EXPIRY"`
	ActiveWindow  time.Duration `yaml:"active_window" envconfig:"SESSION_ACTIVE_WINDOW"`
	EvictAfter    time.Duration `yaml:"evict_after" envconfig:"SESSION_EVICT_AFTER"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SESSION_SWEEP_INTERVAL"`
}

// NotifierConfig controls operator notifications. The target chat is telegram.admin_id.
type NotifierConfig struct {
	Enabled *bool         `yaml:"enabled" envconfig:"NOTIFIER_ENABLED"`
	Timeout time.Duration `yaml:"timeout" envconfig:"NOTIFIER_TIMEOUT"`
	APIBase string        `yaml:"api_base" envconfig:"NOTIFIER_API_BASE"`
}

type HealthConfig struct {
	// Listen is the status server address; "off" disables it.
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// RedisConfig enables session snapshots in Redis when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" envconfig:"REDIS_DB"`
	Prefix   string        `yaml:"prefix" envconfig:"REDIS_PREFIX"`
	TTL      time.Duration `yaml:"ttl" envconfig:"REDIS_TTL"`
}

// Enabled reports whether Redis persistence is configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type TariffConfig struct {
	Key      string   `yaml:"key"`
	Name     string   `yaml:"name"`
	Icon     string   `yaml:"icon"`
	Price    int64    `yaml:"price"`
	Currency string   `yaml:"currency"`
	Features []string `yaml:"features"`
	Duration string   `yaml:"duration"`
}

// FeaturesConfig toggles optional main-menu sections. Both default to on.
type FeaturesConfig struct {
	Blocks *bool `yaml:"blocks" envconfig:"FEATURE_BLOCKS"`
	Styles *bool `yaml:"styles" envconfig:"FEATURE_STYLES"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Catalog  CatalogConfig       `yaml:"catalog"`
	Session  SessionConfig       `yaml:"session"`
	Notifier NotifierConfig      `yaml:"notifier"`
	Health   HealthConfig        `yaml:"health"`
	Redis    RedisConfig         `yaml:"redis"`
	Database coredatabase.Config `yaml:"database"`
	Tariffs  []TariffConfig      `yaml:"tariffs"`
	Features FeaturesConfig      `yaml:"features"`
}

// CoreConfig exposes the embedded core sections.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads path (YAML, then environment), validates and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Catalog.Path = strings.TrimSpace(c.Catalog.Path)
	if c.Catalog.Path == "" {
		c.Catalog.Path = DefaultCatalogPath
	}

	if c.Session.Expiry == 0 {
		c.Session.Expiry = session.DefaultExpiry
	}
	if c.Session.ActiveWindow == 0 {
		c.Session.ActiveWindow = session.DefaultActiveWindow
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = session.DefaultSweepInterval
	}
	switch {
	case c.Session.ActiveWindow < 0:
		return fmt.Errorf("session.active_window must be > 0")
	case c.Session.EvictAfter < 0:
		return fmt.Errorf("session.evict_after must be >= 0")
	case c.Session.SweepInterval < 0:
		return fmt.Errorf("session.sweep_interval must be > 0")
	}

	if c.Notifier.Timeout == 0 {
		c.Notifier.Timeout = conversation.DefaultNotifyTimeout
	}
	if c.Notifier.Timeout < 0 {
		return fmt.Errorf("notifier.timeout must be > 0")
	}
	if c.Notifier.APIBase == "" {
		c.Notifier.APIBase = notify.DefaultAPIBase
	}

	if c.Health.Listen = strings.TrimSpace(c.Health.Listen); c.Health.Listen == "" {
		c.Health.Listen = health.DefaultListen
	}

	if c.Redis.Prefix == "" {
		c.Redis.Prefix = redisstore.DefaultPrefix
	}
	if c.Redis.TTL == 0 && c.Session.EvictAfter > 0 {
		c.Redis.TTL = c.Session.EvictAfter
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0")
	}

	seen := make(map[string]struct{}, len(c.Tariffs))
	for i := range c.Tariffs {
		t := &c.Tariffs[i]
		t.Key = strings.ToLower(strings.TrimSpace(t.Key))
		switch {
		case t.Key == "":
			return fmt.Errorf("tariffs[%d]: key is required", i)
		case strings.TrimSpace(t.Name) == "":
			return fmt.Errorf("tariffs[%d] %q: name is required", i, t.Key)
		case t.Price <= 0:
			return fmt.Errorf("tariffs[%d] %q: price must be > 0", i, t.Key)
		}
		if _, dup := seen[t.Key]; dup {
			return fmt.Errorf("tariffs[%d]: duplicate key %q", i, t.Key)
		}
		seen[t.Key] = struct{}{}
		if t.Currency == "" {
			t.Currency = "₽"
		}
	}
	return nil
}

// NotifierEnabled reports whether orders are forwarded. It defaults to on
// whenever an admin chat is configured.
func (c *Config) NotifierEnabled() bool {
	if c.Notifier.Enabled != nil && !*c.Notifier.Enabled {
		return false
	}
	return c.Telegram.AdminID != 0
}

// HealthEnabled reports whether the status server should run.
func (c *Config) HealthEnabled() bool {
	return !strings.EqualFold(c.Health.Listen, "off")
}

// TariffList converts the configured tariffs; nil means the built-in defaults.
func (c *Config) TariffList() []conversation.Tariff {
	if len(c.Tariffs) == 0 {
		return nil
	}
	out := make([]conversation.Tariff, len(c.Tariffs))
	for i, t := range c.Tariffs {
		out[i] = conversation.Tariff{
			Key:      t.Key,
			Name:     t.Name,
			Icon:     t.Icon,
			Price:    catalog.Price{Amount: t.Price, Currency: t.Currency},
			Features: append([]string(nil), t.Features...),
			Duration: t.Duration,
		}
	}
	return out
}

// EngineFeatures maps the feature toggles onto the engine's switches.
func (c *Config) EngineFeatures() conversation.Features {
	return conversation.Features{
		DisableBlocks: c.Features.Blocks != nil && !*c.Features.Blocks,
		DisableStyles: c.Features.Styles != nil && !*c.Features.Styles,
	}
}
