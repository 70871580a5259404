// Package config loads and validates updater configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	MAL       MALConfig       `mapstructure:"mal"`
	Gist      GistConfig      `mapstructure:"gist"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Server    ServerConfig    `mapstructure:"server"`
	Serve     ServeConfig     `mapstructure:"serve"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// MALConfig identifies the list to read and the credential used to read it.
type MALConfig struct {
	Username    string `mapstructure:"username"`
	ContentType string `mapstructure:"content_type"`
	Status      string `mapstructure:"status"`
	ClientID    string `mapstructure:"client_id"`
	AccessToken string `mapstructure:"access_token"`
	BaseURL     string `mapstructure:"base_url"`
}

// GistConfig identifies the snippet to overwrite and the write credential.
type GistConfig struct {
	ID      string `mapstructure:"id"`
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

// HTTPConfig configures outbound HTTP client behavior.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// RateLimitConfig governs the minimum interval between gist updates.
type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Path        string        `mapstructure:"path"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

// ServerConfig controls the serve-mode HTTP listener.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ServeConfig controls the serve-mode update schedule.
type ServeConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

var (
	contentTypes = map[string]bool{"anime": true, "manga": true}
	statuses     = map[string]bool{"current": true, "completed": true, "on-hold": true, "dropped": true}
)

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MALBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Empty defaults register the keys with Viper so AutomaticEnv can fill
	// them when no config file is present.
	v.SetDefault("mal.username", "")
	v.SetDefault("mal.client_id", "")
	v.SetDefault("mal.access_token", "")
	v.SetDefault("mal.base_url", "")
	v.SetDefault("gist.id", "")
	v.SetDefault("gist.token", "")
	v.SetDefault("gist.base_url", "")
	v.SetDefault("mal.content_type", "anime")
	v.SetDefault("mal.status", "current")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.path", ".malbox.db")
	v.SetDefault("ratelimit.min_interval", time.Hour)
	v.SetDefault("server.port", 8080)
	v.SetDefault("serve.interval", time.Hour)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.MAL.Username == "" {
		return fmt.Errorf("mal.username is required")
	}
	if !contentTypes[c.MAL.ContentType] {
		return fmt.Errorf("mal.content_type must be anime or manga, got %q", c.MAL.ContentType)
	}
	if !statuses[c.MAL.Status] {
		return fmt.Errorf("mal.status must be one of current, completed, on-hold, dropped, got %q", c.MAL.Status)
	}
	if c.MAL.ClientID == "" && c.MAL.AccessToken == "" {
		return fmt.Errorf("one of mal.client_id or mal.access_token is required")
	}
	if c.Gist.ID == "" {
		return fmt.Errorf("gist.id is required")
	}
	if c.Gist.Token == "" {
		return fmt.Errorf("gist.token is required")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.RateLimit.Enabled && c.RateLimit.MinInterval <= 0 {
		return fmt.Errorf("ratelimit.min_interval must be > 0 when ratelimit is enabled")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Serve.Interval <= 0 {
		return fmt.Errorf("serve.interval must be > 0")
	}
	return nil
}

// Timeout converts the HTTP timeout config into a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
