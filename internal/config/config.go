// Package config loads and validates scraper configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/JakeFAU/instascrape/internal/profile"
)

// EnvPrefix namespaces environment overrides, e.g. INSTASCRAPE_USER.
const EnvPrefix = "INSTASCRAPE"

// Config captures all scraper configuration knobs loaded via Viper.
type Config struct {
	User      string        `mapstructure:"user"`
	Interval  int           `mapstructure:"interval"`
	Output    string        `mapstructure:"output"`
	Webhook   string        `mapstructure:"webhook"`
	UserAgent string        `mapstructure:"user_agent"`
	HTTP      HTTPConfig    `mapstructure:"http"`
	Logging   LoggingConfig `mapstructure:"logging"`
	Metrics   MetricsConfig `mapstructure:"metrics"`
}

// HTTPConfig configures outbound HTTP clients.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig controls the optional HTTP surface. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from an optional file, a .env file, the environment
// and any flags bound from flags. Flags win over env, env over file.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(path, flags)
	if err != nil {
		return Config{}, err
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

func newViper(path string, flags *pflag.FlagSet) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"user":     "user",
	"interval": "interval",
	"output":   "output",
	"webhook":  "webhook",
	"metrics":  "metrics.addr",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("user", "")
	v.SetDefault("interval", 3600)
	v.SetDefault("output", "followers.csv")
	v.SetDefault("webhook", "")
	v.SetDefault("user_agent", profile.DefaultUserAgent)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("logging.development", true)
	v.SetDefault("metrics.addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return fmt.Errorf("user must be set")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be > 0 seconds")
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Webhook != "" {
		u, err := url.Parse(c.Webhook)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhook must be an http(s) URL")
		}
	}
	return nil
}

// PollInterval converts the configured seconds into a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// HTTPTimeout converts the HTTP timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ProfileURL returns the page polled for User.
func (c Config) ProfileURL() string {
	return profile.ProfileURL(c.User)
}

// Save writes c to path. The format follows the file extension (toml, yaml,
// json); existing files are overwritten.
func Save(c Config, path string) error {
	v := viper.New()
	v.Set("user", c.User)
	v.Set("interval", c.Interval)
	v.Set("output", c.Output)
	v.Set("webhook", c.Webhook)
	v.Set("user_agent", c.UserAgent)
	v.Set("http.timeout_seconds", c.HTTP.TimeoutSeconds)
	v.Set("logging.development", c.Logging.Development)
	v.Set("metrics.addr", c.Metrics.Addr)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
