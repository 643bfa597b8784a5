// Package config loads player configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the player settings.
type Config struct {
	// APIBaseURL is the backend origin, e.g. http://localhost:8000.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	// MeditationsPath is joined to APIBaseURL unless it is an absolute URL.
	MeditationsPath string `env:"MEDITATIONS_API_PATH" envDefault:"/api/ai_meditation_starter_kit/meditations/"`

	RequestTimeout time.Duration `env:"MEDITATE_REQUEST_TIMEOUT" envDefault:"10s"`
	TickInterval   time.Duration `env:"MEDITATE_TICK_INTERVAL" envDefault:"100ms"`

	// AudioPlayer is the command run for wav cues; the file reference is
	// appended as the last argument. Empty disables audio.
	AudioPlayer string `env:"MEDITATE_AUDIO_PLAYER" envDefault:"ffplay -nodisp -autoexit -loglevel quiet"`

	// LogFile receives debug logs. Empty discards them.
	LogFile string `env:"MEDITATE_LOG_FILE"`

	OTelEndpoint string `env:"MEDITATE_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"MEDITATE_OTEL_ENABLED" envDefault:"true"`
}

// Load reads .env files (missing files are ignored, process env wins), then
// parses and validates Config.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BindFlags registers command-line overrides on fs using the current values
// as defaults. Call Validate again after fs.Parse.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.APIBaseURL, "api", c.APIBaseURL, "backend base URL")
	fs.StringVar(&c.MeditationsPath, "path", c.MeditationsPath, "meditations endpoint path or absolute URL")
}

// Validate checks fields that env parsing cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" && !isAbsoluteURL(c.MeditationsPath) {
		return errors.New("config: API_BASE_URL must be set")
	}
	if c.APIBaseURL != "" {
		u, err := url.Parse(c.APIBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: API_BASE_URL %q is not an absolute URL", c.APIBaseURL)
		}
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: MEDITATE_REQUEST_TIMEOUT must be positive")
	}
	if c.TickInterval <= 0 {
		return errors.New("config: MEDITATE_TICK_INTERVAL must be positive")
	}
	return nil
}

// BaseURL returns APIBaseURL without one trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimSuffix(strings.TrimSpace(c.APIBaseURL), "/")
}

// MeditationsURL composes the meditations endpoint URL.
func (c *Config) MeditationsURL() string {
	path := strings.TrimSpace(c.MeditationsPath)
	if isAbsoluteURL(path) {
		return path
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL() + path
}

// TracingEnabled reports whether spans should be exported.
func (c *Config) TracingEnabled() bool {
	return c.OTelEnabled && strings.TrimSpace(c.OTelEndpoint) != ""
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
