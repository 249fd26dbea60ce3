package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bassista/newswatch/internal/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is built once at process start and handed to every component.
type Config struct {
	Source SourceConfig
	HTTP   HTTPConfig
	Notify NotifyConfig
	Data   DataConfig
	Misc   MiscConfig
}

// SourceConfig describes the remote listing being watched.
type SourceConfig struct {
	BaseURL    string // kept as configured; links resolve against it
	URLFormat  string // two %s verbs: base URL, then period key
	Selector   string
	DateFormat string // Go reference layout, e.g. 2006-01
	OffsetDays int
}

type HTTPConfig struct {
	Timeout   time.Duration // 0 keeps the transport default
	UserAgent string
}

type NotifyConfig struct {
	WebhookURL  string
	Title       string
	AuthorName  string
	Color       int
	RandomColor bool
}

type DataConfig struct {
	FilePath string
}

type MiscConfig struct {
	LogLevel string
	Schedule string
	Timezone string
}

// Configured reports whether a webhook is set. A missing webhook is not an
// error: the run exits early without touching state.
func (c *Config) Configured() bool {
	return strings.TrimSpace(c.Notify.WebhookURL) != ""
}

// Location resolves Misc.Timezone, defaulting to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Misc.Timezone == "" || c.Misc.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Misc.Timezone)
}

// LoadConfig reads config.yaml from NEWSWATCH_CONFIG_PATH (default ./config),
// a .env file from the working directory, and NEWSWATCH_* environment
// variables. Environment variables override file values.
//
// Without a webhook the returned Config is not validated; callers check
// Configured() and exit before using it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(getEnvOrDefault("NEWSWATCH_CONFIG_PATH", "./config"))

	setDefaults()

	// NEWSWATCH_SOURCE_BASE_URL overrides source.base_url, and so on.
	viper.SetEnvPrefix("NEWSWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		logger.WithComponent("config").Debug("no config file found, using defaults and env vars")
	}

	cfg := build()
	if !cfg.Configured() {
		// Nothing will run, so the rest of the config is not checked.
		return cfg, nil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WatchConfig re-reads the config file whenever it changes and passes the
// new, validated Config to onChange. Invalid edits are logged and ignored.
// It returns false when no config file is in use.
func WatchConfig(onChange func(*Config)) bool {
	if viper.ConfigFileUsed() == "" {
		return false
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		log := logger.WithComponent("config")
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		cfg := build()
		if err := cfg.validate(); err != nil {
			log.Warnf("ignoring invalid config change in %s: %v", e.Name, err)
			return
		}
		log.Infof("config reloaded from %s", e.Name)
		onChange(cfg)
	})
	viper.WatchConfig()
	return true
}

func setDefaults() {
	viper.SetDefault("source.base_url", "")
	viper.SetDefault("source.url_format", "%s/news/%s")
	viper.SetDefault("source.selector", "article")
	viper.SetDefault("source.date_format", "2006-01")
	viper.SetDefault("source.offset_days", 13)

	viper.SetDefault("http.timeout", time.Duration(0))
	viper.SetDefault("http.user_agent", "newswatch/1.0")

	viper.SetDefault("notify.webhook_url", "")
	viper.SetDefault("notify.title", "New entries")
	viper.SetDefault("notify.author_name", "newswatch")
	viper.SetDefault("notify.color", 0x5865F2)
	viper.SetDefault("notify.random_color", true)

	viper.SetDefault("data.file_path", "./data/state.json")

	viper.SetDefault("misc.log_level", "info")
	viper.SetDefault("misc.schedule", "@hourly")
	viper.SetDefault("misc.timezone", "Local")
}

func build() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:    viper.GetString("source.base_url"),
			URLFormat:  viper.GetString("source.url_format"),
			Selector:   viper.GetString("source.selector"),
			DateFormat: viper.GetString("source.date_format"),
			OffsetDays: viper.GetInt("source.offset_days"),
		},
		HTTP: HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		Notify: NotifyConfig{
			// The webhook is a secret and is usually injected by the runner.
			WebhookURL:  getEnvOrDefault("DISCORD_WEBHOOK_URL", viper.GetString("notify.webhook_url")),
			Title:       viper.GetString("notify.title"),
			AuthorName:  viper.GetString("notify.author_name"),
			Color:       viper.GetInt("notify.color"),
			RandomColor: viper.GetBool("notify.random_color"),
		},
		Data: DataConfig{
			FilePath: viper.GetString("data.file_path"),
		},
		Misc: MiscConfig{
			LogLevel: viper.GetString("misc.log_level"),
			Schedule: viper.GetString("misc.schedule"),
			Timezone: viper.GetString("misc.timezone"),
		},
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Source.BaseURL)
	if err != nil || c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url must be an absolute URL, got %q", c.Source.BaseURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source.base_url must be an http(s) URL, got %q", c.Source.BaseURL)
	}
	if n := strings.Count(c.Source.URLFormat, "%s"); n != 2 {
		return fmt.Errorf("source.url_format must contain two %%s verbs (base URL, period key), got %d", n)
	}
	if strings.TrimSpace(c.Source.Selector) == "" {
		return errors.New("source.selector is required")
	}
	if c.Source.DateFormat == "" {
		return errors.New("source.date_format is required")
	}
	if c.Source.OffsetDays < 0 {
		return fmt.Errorf("source.offset_days must be >= 0, got %d", c.Source.OffsetDays)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must be >= 0, got %v", c.HTTP.Timeout)
	}
	if c.Notify.Color < 0 || c.Notify.Color > 0xFFFFFF {
		return fmt.Errorf("notify.color must be a 24-bit RGB value, got %d", c.Notify.Color)
	}
	if c.Data.FilePath == "" {
		return errors.New("data.file_path is required")
	}
	if _, err := logrus.ParseLevel(c.Misc.LogLevel); err != nil {
		return fmt.Errorf("misc.log_level: %w", err)
	}
	if _, err := cron.ParseStandard(c.Misc.Schedule); err != nil {
		return fmt.Errorf("misc.schedule: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("misc.timezone: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
