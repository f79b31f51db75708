package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rickgao/stockwatch/internal/catalog"
	"github.com/rickgao/stockwatch/internal/model"
)

// Error is a configuration problem that prevents the watcher from starting.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + " " + e.Msg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml field names so messages match the config file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return &Error{Field: "instance.id", Msg: "is required"}
	}

	if c.Poller.Interval <= 0 {
		return &Error{Field: "poller.interval", Msg: "must be > 0"}
	}
	if c.Poller.Jitter < 0 {
		return &Error{Field: "poller.jitter", Msg: "must be >= 0"}
	}
	if c.Poller.Concurrency < 0 {
		return &Error{Field: "poller.concurrency", Msg: "must be >= 0"}
	}

	if c.Ranking.MinPrice != nil && c.Ranking.MinPrice.IsNegative() {
		return &Error{Field: "ranking.min_price", Msg: "must be >= 0"}
	}
	if _, err := model.ParseKeyPolicy(c.Ranking.KeyPolicy); err != nil {
		return &Error{Field: "ranking.key_policy", Msg: fmt.Sprintf("must be %q or %q", model.KeyByURL, model.KeyByURLAndName)}
	}

	if len(c.EnabledSources()) == 0 {
		return &Error{Field: "sources", Msg: "must contain at least one enabled source"}
	}
	names := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		prefix := fmt.Sprintf("sources[%d]", i)
		if err := c.Sources[i].validate(prefix); err != nil {
			return err
		}
		if names[c.Sources[i].Name] {
			return &Error{Field: prefix + ".name", Msg: fmt.Sprintf("%q is not unique", c.Sources[i].Name)}
		}
		names[c.Sources[i].Name] = true
	}

	if c.Database.Enabled {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if !c.Health.Disabled && (c.Health.Port < 1 || c.Health.Port > 65535) {
		return &Error{Field: "health.port", Msg: fmt.Sprintf("must be between 1 and 65535, got %d", c.Health.Port)}
	}
	if c.Feed.Enabled {
		if c.Health.Disabled {
			return &Error{Field: "feed.enabled", Msg: "requires the health server (health.disabled is set)"}
		}
		if !strings.HasPrefix(c.Feed.Path, "/") || c.Feed.Path == "/" || strings.HasPrefix(c.Feed.Path, "/health") || strings.HasPrefix(c.Feed.Path, "/debug/") {
			return &Error{Field: "feed.path", Msg: fmt.Sprintf("must be an absolute path not used by the health server, got %q", c.Feed.Path)}
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return &Error{Field: "log.level", Msg: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &Error{Field: "log.format", Msg: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}

	return nil
}

func (s *SourceConfig) validate(prefix string) error {
	if strings.TrimSpace(s.URL) == "" {
		return &Error{Field: prefix + ".url", Msg: "is required"}
	}

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &Error{Field: prefix + "." + fe.Field(), Msg: describe(fe)}
		}
		return &Error{Field: prefix, Msg: err.Error()}
	}

	switch {
	case s.Preset != "" && s.Selectors != nil:
		return &Error{Field: prefix, Msg: "must set preset or selectors, not both"}
	case s.Preset != "":
		if _, ok := catalog.LookupPreset(s.Preset); !ok {
			return &Error{Field: prefix + ".preset", Msg: fmt.Sprintf("unknown preset %q (have %s)", s.Preset, strings.Join(catalog.PresetNames(), ", "))}
		}
	case s.Selectors != nil:
		if err := s.Selectors.Validate(); err != nil {
			return &Error{Field: prefix + ".selectors", Msg: err.Error()}
		}
	default:
		return &Error{Field: prefix, Msg: "needs a preset or selectors"}
	}
	return nil
}

// describe renders a validator failure in the style of the other messages.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return fmt.Sprintf("must be an absolute url, got %q", fe.Value())
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	}
	return "failed " + fe.Tag()
}

func (db *DatabaseConfig) validate(prefix string) error {
	if db.Host == "" {
		return &Error{Field: prefix + ".host", Msg: "is required"}
	}
	if db.Name == "" {
		return &Error{Field: prefix + ".name", Msg: "is required"}
	}
	if db.User == "" {
		return &Error{Field: prefix + ".user", Msg: "is required"}
	}
	if db.Password == "" {
		return &Error{Field: prefix + ".password", Msg: "is required"}
	}
	if db.MaxConns < 1 {
		return &Error{Field: prefix + ".max_conns", Msg: "must be >= 1"}
	}
	if db.MinConns < 0 {
		return &Error{Field: prefix + ".min_conns", Msg: "must be >= 0"}
	}
	if db.MinConns > db.MaxConns {
		return &Error{Field: prefix + ".min_conns", Msg: fmt.Sprintf("(%d) cannot exceed max_conns (%d)", db.MinConns, db.MaxConns)}
	}
	return nil
}
