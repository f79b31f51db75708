package config

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/stockwatch/internal/catalog"
)

// Config is the root configuration for a watcher instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Poller   PollerConfig   `yaml:"poller"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Sources  []SourceConfig `yaml:"sources"`
	Database DatabaseConfig `yaml:"database"`
	Health   HealthConfig   `yaml:"health"`
	Feed     FeedConfig     `yaml:"feed"`
	Console  ConsoleConfig  `yaml:"console"`
	Log      LogConfig      `yaml:"log"`
}

// InstanceConfig identifies this watcher.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// PollerConfig holds polling loop settings.
type PollerConfig struct {
	Interval      time.Duration `yaml:"interval"`       // Pause between cycles
	Jitter        time.Duration `yaml:"jitter"`         // Random extra pause, [0, jitter)
	Concurrency   int           `yaml:"concurrency"`    // Max sources fetched at once (0 = all)
	SourceTimeout time.Duration `yaml:"source_timeout"` // Deadline for one source's fetch
}

// RankingConfig holds filtering and identity settings.
type RankingConfig struct {
	MinPrice  *decimal.Decimal `yaml:"min_price"`  // Plausibility floor (nil = default, 0 keeps every priced product)
	KeyPolicy string           `yaml:"key_policy"` // "url" or "url+name"
}

// MinPriceOrDefault returns the configured floor, or DefaultMinPrice when
// min_price was left unset.
func (r RankingConfig) MinPriceOrDefault() decimal.Decimal {
	if r.MinPrice == nil {
		return DefaultMinPrice
	}
	return *r.MinPrice
}

// SourceConfig describes one catalog page to watch.
type SourceConfig struct {
	Name       string             `yaml:"name" validate:"required"`
	URL        string             `yaml:"url" validate:"required,url"`
	Preset     string             `yaml:"preset"`
	BaseURL    string             `yaml:"base_url" validate:"omitempty,url"`
	Selectors  *catalog.Selectors `yaml:"selectors"`
	Timeout    time.Duration      `yaml:"timeout"`
	MaxRetries int                `yaml:"max_retries" validate:"gte=0,lte=10"`
	UserAgent  string             `yaml:"user_agent"`
	Headers    map[string]string  `yaml:"headers"`
	Disabled   bool               `yaml:"disabled"`
}

// DatabaseConfig holds the optional event log connection.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// HealthConfig holds the HTTP server serving /health and /debug/current.
type HealthConfig struct {
	Disabled bool `yaml:"disabled"`
	Port     int  `yaml:"port"`
}

// FeedConfig holds the websocket alert feed settings. The feed is mounted on
// the health server.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ConsoleConfig holds terminal rendering settings.
type ConsoleConfig struct {
	Quiet       bool   `yaml:"quiet"`        // Disable console output entirely
	ShowCurrent bool   `yaml:"show_current"` // Print the full ranked list every cycle
	Bell        bool   `yaml:"bell"`         // Ring the terminal bell on new products
	Locale      string `yaml:"locale"`
	Currency    string `yaml:"currency"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// EnabledSources returns the sources not marked disabled, in configured order.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}
