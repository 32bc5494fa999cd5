// Package config loads judge settings from a yaml file layered over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/coolbeans/judge/pkg/render"
	"github.com/coolbeans/judge/pkg/rules"
	"github.com/coolbeans/judge/pkg/source"
	"gopkg.in/yaml.v3"
)

// DefaultRulesPageURL is the page that links the current comprehensive rules
// text file.
const DefaultRulesPageURL = "https://magic.wizards.com/en/game-info/gameplay/rules-and-formats/rules"

// DefaultHTTPTimeout is the default per-request timeout.
const DefaultHTTPTimeout = 30 * time.Second

// DefaultHTTPRateLimit is the default minimum interval between requests.
const DefaultHTTPRateLimit = 2 * time.Second

// DefaultUserAgent identifies judge to remote servers.
const DefaultUserAgent = "judge/1.0 (+https://github.com/coolbeans/judge)"

// SourceKind selects where the rules document comes from.
type SourceKind string

const (
	// SourceKindURL discovers and downloads the document over HTTP.
	SourceKindURL SourceKind = "url"

	// SourceKindFile reads the document from the local filesystem.
	SourceKindFile SourceKind = "file"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all judge settings.
type Config struct {
	Rules        RulesConfig   `yaml:"rules"`
	HTTP         HTTPConfig    `yaml:"http"`
	Limits       LimitsConfig  `yaml:"limits"`
	CardLinkBase string        `yaml:"card_link_base"`
	Footer       string        `yaml:"footer"`
	Logging      LoggingConfig `yaml:"logging"`
}

// RulesConfig describes the rules document source.
type RulesConfig struct {
	// Source is "url" or "file".
	Source SourceKind `yaml:"source"`

	// PageURL is scanned for the link to the current text file.
	PageURL string `yaml:"page_url"`

	// DocumentURL, when set, is downloaded directly and PageURL is ignored.
	DocumentURL string `yaml:"document_url"`

	// File is the local document path for the file source.
	File string `yaml:"file"`

	// Encoding is "windows-1252" or "utf-8".
	Encoding string `yaml:"encoding"`

	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// HTTPConfig controls outbound requests.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit time.Duration `yaml:"rate_limit"`
	UserAgent string        `yaml:"user_agent"`
}

// LimitsConfig holds the display capacities used when packing content.
type LimitsConfig struct {
	Description int `yaml:"description"`
	FieldValue  int `yaml:"field_value"`
	Total       int `yaml:"total"`
}

// LoggingConfig selects log level and format names.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Rules: RulesConfig{
			Source:          SourceKindURL,
			PageURL:         DefaultRulesPageURL,
			Encoding:        source.EncodingWindows1252,
			RefreshInterval: rules.DefaultRefreshInterval,
		},
		HTTP: HTTPConfig{
			Timeout:   DefaultHTTPTimeout,
			RateLimit: DefaultHTTPRateLimit,
			UserAgent: DefaultUserAgent,
		},
		Limits: LimitsConfig{
			Description: render.DefaultDescriptionLimit,
			FieldValue:  render.DefaultFieldValueLimit,
			Total:       render.DefaultTotalLimit,
		},
		CardLinkBase: render.DefaultLinkBase,
		Footer:       "judge",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a yaml file and overlays it on Default. Keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (cfg Config) Validate() error {
	switch cfg.Rules.Source {
	case SourceKindURL:
		if cfg.Rules.PageURL == "" && cfg.Rules.DocumentURL == "" {
			return fmt.Errorf("%w: url source needs page_url or document_url", ErrInvalidConfig)
		}
	case SourceKindFile:
		if cfg.Rules.File == "" {
			return fmt.Errorf("%w: file source needs a file path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown rules source %q", ErrInvalidConfig, cfg.Rules.Source)
	}

	switch cfg.Rules.Encoding {
	case source.EncodingWindows1252, source.EncodingUTF8:
	default:
		return fmt.Errorf("%w: unsupported encoding %q", ErrInvalidConfig, cfg.Rules.Encoding)
	}

	if cfg.Rules.RefreshInterval <= 0 {
		return fmt.Errorf("%w: refresh_interval must be positive", ErrInvalidConfig)
	}
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("%w: http timeout must be positive", ErrInvalidConfig)
	}
	if cfg.HTTP.RateLimit < 0 {
		return fmt.Errorf("%w: http rate_limit must not be negative", ErrInvalidConfig)
	}
	if cfg.Limits.Description <= 0 || cfg.Limits.FieldValue <= 0 || cfg.Limits.Total <= 0 {
		return fmt.Errorf("%w: limits must be positive", ErrInvalidConfig)
	}
	return nil
}
