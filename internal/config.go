package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Site    SiteConfig        `yaml:"site"`
	Watch   WatchConfig       `yaml:"watch"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the filesystem layout: the content root (with its
// posts/ and pages/ subdirectories), the cache directory for derived
// artifacts, and the site directory for generated overview pages.
type ContentConfig struct {
	Dir      string `yaml:"dir"`
	CacheDir string `yaml:"cache_dir"`
	SiteDir  string `yaml:"site_dir"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.CacheDir, validation.Required),
		validation.Field(&c.SiteDir, validation.Required),
	)
}

// SiteConfig holds the public-facing site parameters.
type SiteConfig struct {
	BaseURL         string `yaml:"base_url"`
	PostsPerPage    int    `yaml:"posts_per_page"`
	DefaultLanguage string `yaml:"default_language"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.PostsPerPage, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&c.DefaultLanguage, validation.Required, validation.Length(2, 2)),
	)
}

// WatchConfig controls the posts-directory watcher.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

// Debounce returns the rebuild debounce interval.
func (c *WatchConfig) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// AuthConfig holds authentication for the admin surface (rebuild trigger,
// SSE stream).
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Dir:      "./content",
			CacheDir: "./cache",
			SiteDir:  "./public",
		},
		Site: SiteConfig{
			BaseURL:         "http://localhost:8080",
			PostsPerPage:    10,
			DefaultLanguage: "en",
		},
		Watch: WatchConfig{
			Enabled: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
