package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/stockwatch/internal/catalog"
	"github.com/rickgao/stockwatch/internal/model"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-watcher
poller:
  interval: 30s
  jitter: 5s
ranking:
  min_price: 2.50
  key_policy: url+name
sources:
  - name: ldlc
    url: https://www.ldlc.com/informatique/pieces-informatique/carte-graphique-interne/c4684/
    preset: ldlc
  - name: custom
    url: https://shop.example/gpus
    selectors:
      item: div.card
      name: h2
      link: a
      price: .price
      stock: .stock
      stock_rules:
        - contains: sold out
          status: out_of_stock
      default_status: in_stock
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-watcher" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-watcher")
	}
	if cfg.Poller.Interval != 30*time.Second {
		t.Errorf("Poller.Interval = %v, want 30s", cfg.Poller.Interval)
	}
	if !cfg.Ranking.MinPrice.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Ranking.MinPrice = %s, want 2.5", cfg.Ranking.MinPrice)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2", len(cfg.Sources))
	}
	sel := cfg.Sources[1].Selectors
	if sel == nil {
		t.Fatal("Sources[1].Selectors is nil")
	}
	if sel.DefaultStatus != model.InStock {
		t.Errorf("DefaultStatus = %v, want in_stock", sel.DefaultStatus)
	}
	if len(sel.Rules) != 1 || sel.Rules[0].Status != model.OutOfStock {
		t.Errorf("Rules = %+v", sel.Rules)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_LDLC_URL", "https://www.ldlc.com/cartes")

	yaml := `
sources:
  - name: ldlc
    url: ${TEST_LDLC_URL}
    preset: ldlc
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sources[0].URL != "https://www.ldlc.com/cartes" {
		t.Errorf("Sources[0].URL = %q, want substituted value", cfg.Sources[0].URL)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
poller:
  source_timeout: 12s
sources:
  - name: ldlc
    url: https://www.ldlc.com/cartes
    preset: ldlc
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Instance.ID != DefaultInstanceID {
		t.Errorf("Instance.ID = %q, want default %q", cfg.Instance.ID, DefaultInstanceID)
	}
	if cfg.Poller.Interval != DefaultPollInterval {
		t.Errorf("Poller.Interval = %v, want default %v", cfg.Poller.Interval, DefaultPollInterval)
	}
	if !cfg.Ranking.MinPrice.Equal(DefaultMinPrice) {
		t.Errorf("Ranking.MinPrice = %s, want default %s", cfg.Ranking.MinPrice, DefaultMinPrice)
	}
	if cfg.Ranking.KeyPolicy != string(model.KeyByURL) {
		t.Errorf("Ranking.KeyPolicy = %q, want url", cfg.Ranking.KeyPolicy)
	}
	if cfg.Sources[0].Timeout != 12*time.Second {
		t.Errorf("Sources[0].Timeout = %v, want poller.source_timeout", cfg.Sources[0].Timeout)
	}
	if cfg.Sources[0].MaxRetries != DefaultMaxRetries {
		t.Errorf("Sources[0].MaxRetries = %d, want default %d", cfg.Sources[0].MaxRetries, DefaultMaxRetries)
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Errorf("Health.Port = %d, want default %d", cfg.Health.Port, DefaultHealthPort)
	}
	if cfg.Health.Disabled {
		t.Error("Health.Disabled = true, want the health server on by default")
	}
	if cfg.Feed.Path != DefaultFeedPath {
		t.Errorf("Feed.Path = %q, want default %q", cfg.Feed.Path, DefaultFeedPath)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want default %q", cfg.Log.Level, DefaultLogLevel)
	}
}

func TestLoadWithDefaults_ZeroMinPrice(t *testing.T) {
	yaml := `
ranking:
  min_price: 0
sources:
  - name: ldlc
    url: https://www.ldlc.com/cartes
    preset: ldlc
`
	cfg, err := LoadAndValidate(writeTempFile(t, yaml))
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.Ranking.MinPrice == nil || !cfg.Ranking.MinPrice.IsZero() {
		t.Fatalf("Ranking.MinPrice = %v, want explicit 0", cfg.Ranking.MinPrice)
	}
	if got := cfg.Ranking.MinPriceOrDefault(); !got.IsZero() {
		t.Errorf("MinPriceOrDefault() = %s, want 0", got)
	}

	var unset RankingConfig
	if got := unset.MinPriceOrDefault(); !got.Equal(DefaultMinPrice) {
		t.Errorf("unset MinPriceOrDefault() = %s, want %s", got, DefaultMinPrice)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func validConfig() Config {
	cfg := Config{
		Sources: []SourceConfig{
			{Name: "ldlc", URL: "https://www.ldlc.com/cartes", Preset: "ldlc"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "missing source url",
			mutate:  func(c *Config) { c.Sources[0].URL = "" },
			wantErr: "sources[0].url is required",
		},
		{
			name:    "relative source url",
			mutate:  func(c *Config) { c.Sources[0].URL = "cartes-graphiques" },
			wantErr: `sources[0].url must be an absolute url, got "cartes-graphiques"`,
		},
		{
			name:    "missing source name",
			mutate:  func(c *Config) { c.Sources[0].Name = "" },
			wantErr: "sources[0].name is required",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Sources[0].MaxRetries = -1 },
			wantErr: "sources[0].max_retries must be >= 0",
		},
		{
			name:    "unknown preset",
			mutate:  func(c *Config) { c.Sources[0].Preset = "amazon" },
			wantErr: `sources[0].preset unknown preset "amazon" (have 1fodiscount, grosbill, infomaxparis, ldlc, pccomponentes)`,
		},
		{
			name:    "no preset or selectors",
			mutate:  func(c *Config) { c.Sources[0].Preset = "" },
			wantErr: "sources[0] needs a preset or selectors",
		},
		{
			name: "preset and selectors",
			mutate: func(c *Config) {
				c.Sources[0].Selectors = &catalog.Selectors{Item: "li", Name: "a", Link: "a", Price: "p"}
			},
			wantErr: "sources[0] must set preset or selectors, not both",
		},
		{
			name: "incomplete selectors",
			mutate: func(c *Config) {
				c.Sources[0].Preset = ""
				c.Sources[0].Selectors = &catalog.Selectors{Item: "li"}
			},
			wantErr: "sources[0].selectors name selector is required",
		},
		{
			name: "duplicate source name",
			mutate: func(c *Config) {
				c.Sources = append(c.Sources, c.Sources[0])
			},
			wantErr: `sources[1].name "ldlc" is not unique`,
		},
		{
			name:    "all sources disabled",
			mutate:  func(c *Config) { c.Sources[0].Disabled = true },
			wantErr: "sources must contain at least one enabled source",
		},
		{
			name:    "bad key policy",
			mutate:  func(c *Config) { c.Ranking.KeyPolicy = "name" },
			wantErr: `ranking.key_policy must be "url" or "url+name"`,
		},
		{
			name:    "negative min price",
			mutate:  func(c *Config) { floor := decimal.NewFromInt(-1); c.Ranking.MinPrice = &floor },
			wantErr: "ranking.min_price must be >= 0",
		},
		{
			name:    "missing database password",
			mutate:  func(c *Config) { c.Database = DatabaseConfig{Enabled: true, Host: "localhost", Name: "db", User: "user", MaxConns: 4} },
			wantErr: "database.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Enabled: true, Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "bad health port",
			mutate:  func(c *Config) { c.Health.Port = 70000 },
			wantErr: "health.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "bad port ignored when health disabled",
			mutate:  func(c *Config) { c.Health = HealthConfig{Disabled: true, Port: 70000} },
			wantErr: "",
		},
		{
			name: "feed without health server",
			mutate: func(c *Config) {
				c.Health.Disabled = true
				c.Feed.Enabled = true
			},
			wantErr: "feed.enabled requires the health server (health.disabled is set)",
		},
		{
			name: "feed path shadows health route",
			mutate: func(c *Config) {
				c.Feed.Enabled = true
				c.Feed.Path = "/health"
			},
			wantErr: `feed.path must be an absolute path not used by the health server, got "/health"`,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: `log.level unknown level "verbose"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
			}
			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Errorf("Validate() error type = %T, want *Error", err)
			}
		})
	}
}

func TestEnabledSources(t *testing.T) {
	cfg := Config{Sources: []SourceConfig{
		{Name: "a"},
		{Name: "b", Disabled: true},
		{Name: "c"},
	}}

	got := cfg.EnabledSources()
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("EnabledSources() = %+v, want a and c", got)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
