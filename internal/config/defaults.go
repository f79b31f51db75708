package config

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/stockwatch/internal/model"
)

// Default values for optional configuration fields.
const (
	DefaultInstanceID    = "stockwatch"
	DefaultPollInterval  = 10 * time.Second
	DefaultSourceTimeout = 30 * time.Second
	DefaultMaxRetries    = 2
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 4
	DefaultMinConns      = 1
	DefaultHealthPort    = 8080
	DefaultFeedPath      = "/feed"
	DefaultLocale        = "fr-FR"
	DefaultCurrency      = "EUR"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// DefaultMinPrice is the default plausibility floor.
var DefaultMinPrice = decimal.NewFromInt(1)

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.SourceTimeout == 0 {
		c.Poller.SourceTimeout = DefaultSourceTimeout
	}

	// Ranking defaults
	if c.Ranking.MinPrice == nil {
		floor := DefaultMinPrice
		c.Ranking.MinPrice = &floor
	}
	if c.Ranking.KeyPolicy == "" {
		c.Ranking.KeyPolicy = string(model.KeyByURL)
	}

	// Source defaults
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.Timeout == 0 {
			s.Timeout = c.Poller.SourceTimeout
		}
		if s.MaxRetries == 0 {
			s.MaxRetries = DefaultMaxRetries
		}
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}

	// Feed defaults
	if c.Feed.Path == "" {
		c.Feed.Path = DefaultFeedPath
	}

	// Console defaults
	if c.Console.Locale == "" {
		c.Console.Locale = DefaultLocale
	}
	if c.Console.Currency == "" {
		c.Console.Currency = DefaultCurrency
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
