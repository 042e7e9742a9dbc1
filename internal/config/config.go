// Package config resolves client settings from the environment, a .env file,
// ~/.config/rsv/config.json and built-in defaults, in that priority order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/marcus/rsv/internal/suggest"
)

const (
	configFile = "config.json"

	DefaultAPIURL           = "http://localhost:3000"
	DefaultPollInterval     = 10 * time.Second
	DefaultWaitlistInterval = 60 * time.Second
	DefaultMetricsInterval  = 60 * time.Second
	DefaultToastDuration    = 5 * time.Second
	DefaultCloseDelay       = 1500 * time.Millisecond
	DefaultZone             = "INTERIOR"
	DefaultInboxDriver      = "sqlite"
)

// WebhookConfig configures the outbound new-reservation webhook
type WebhookConfig struct {
	URL    string `json:"url,omitempty"`
	Secret string `json:"secret,omitempty"`
}

// LogConfig configures slog output
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// File is the on-disk configuration. Durations are strings ("10s").
type File struct {
	APIURL           string        `json:"api_url,omitempty"`
	PollInterval     string        `json:"poll_interval,omitempty"`
	WaitlistInterval string        `json:"waitlist_interval,omitempty"`
	MetricsInterval  string        `json:"metrics_interval,omitempty"`
	ToastDuration    string        `json:"toast_duration,omitempty"`
	CloseDelay       string        `json:"close_delay,omitempty"`
	RequestTimeout   string        `json:"request_timeout,omitempty"`
	PushURL          string        `json:"push_url,omitempty"`
	Zone             string        `json:"zone,omitempty"`
	InboxDriver      string        `json:"inbox_driver,omitempty"`
	Webhook          WebhookConfig `json:"webhook"`
	Log              LogConfig     `json:"log"`
}

// env mirrors File for environment overrides
type env struct {
	APIURL           string        `envconfig:"RSV_API_URL"`
	LegacyAPIURL     string        `envconfig:"VITE_API_BASE_URL"`
	Token            string        `envconfig:"RSV_TOKEN"`
	PollInterval     time.Duration `envconfig:"RSV_POLL_INTERVAL"`
	WaitlistInterval time.Duration `envconfig:"RSV_WAITLIST_INTERVAL"`
	MetricsInterval  time.Duration `envconfig:"RSV_METRICS_INTERVAL"`
	ToastDuration    time.Duration `envconfig:"RSV_TOAST_DURATION"`
	CloseDelay       time.Duration `envconfig:"RSV_CLOSE_DELAY"`
	RequestTimeout   time.Duration `envconfig:"RSV_REQUEST_TIMEOUT"`
	PushURL          string        `envconfig:"RSV_PUSH_URL"`
	Zone             string        `envconfig:"RSV_ZONE"`
	InboxDriver      string        `envconfig:"RSV_INBOX_DRIVER"`
	WebhookURL       string        `envconfig:"RSV_WEBHOOK_URL"`
	WebhookSecret    string        `envconfig:"RSV_WEBHOOK_SECRET"`
	LogLevel         string        `envconfig:"RSV_LOG_LEVEL"`
	LogFormat        string        `envconfig:"RSV_LOG_FORMAT"`
}

// Config is the resolved client configuration
type Config struct {
	Dir              string
	APIURL           string
	Token            string
	PollInterval     time.Duration
	WaitlistInterval time.Duration
	MetricsInterval  time.Duration
	ToastDuration    time.Duration
	CloseDelay       time.Duration
	RequestTimeout   time.Duration // 0 = no timeout
	PushURL          string
	Zone             string
	InboxDriver      string // "sqlite" (pure Go) or "sqlite3" (cgo)
	WebhookURL       string
	WebhookSecret    string
	LogLevel         string
	LogFormat        string
}

// Dir returns ~/.config/rsv, creating it if necessary.
// RSV_CONFIG_DIR overrides the location.
func Dir() (string, error) {
	if v := os.Getenv("RSV_CONFIG_DIR"); v != "" {
		if err := os.MkdirAll(v, 0755); err != nil {
			return "", fmt.Errorf("create config dir: %w", err)
		}
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "rsv")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// Load resolves configuration from the default directory
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom resolves configuration using dir for the config file.
// A .env file in the working directory is loaded into the environment first;
// variables already set are not overwritten.
func LoadFrom(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	file, err := ReadFile(dir)
	if err != nil {
		return nil, err
	}

	var e env
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg := &Config{
		Dir:              dir,
		APIURL:           first(e.APIURL, file.APIURL, e.LegacyAPIURL, DefaultAPIURL),
		Token:            e.Token,
		PollInterval:     duration(e.PollInterval, file.PollInterval, DefaultPollInterval),
		WaitlistInterval: duration(e.WaitlistInterval, file.WaitlistInterval, DefaultWaitlistInterval),
		MetricsInterval:  duration(e.MetricsInterval, file.MetricsInterval, DefaultMetricsInterval),
		ToastDuration:    duration(e.ToastDuration, file.ToastDuration, DefaultToastDuration),
		CloseDelay:       duration(e.CloseDelay, file.CloseDelay, DefaultCloseDelay),
		RequestTimeout:   duration(e.RequestTimeout, file.RequestTimeout, 0),
		PushURL:          first(e.PushURL, file.PushURL),
		Zone:             first(e.Zone, file.Zone, DefaultZone),
		InboxDriver:      first(e.InboxDriver, file.InboxDriver, DefaultInboxDriver),
		WebhookURL:       first(e.WebhookURL, file.Webhook.URL),
		WebhookSecret:    first(e.WebhookSecret, file.Webhook.Secret),
		LogLevel:         first(e.LogLevel, file.Log.Level, "warn"),
		LogFormat:        first(e.LogFormat, file.Log.Format, "text"),
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}

// ReadFile reads dir/config.json; a missing file yields an empty File
func ReadFile(dir string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	return &f, nil
}

// WriteFile writes dir/config.json atomically
func WriteFile(dir string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, configFile))
}

var setters = map[string]func(f *File, v string) error{
	"api_url":           func(f *File, v string) error { f.APIURL = strings.TrimRight(v, "/"); return nil },
	"poll_interval":     func(f *File, v string) error { return setDuration(&f.PollInterval, v) },
	"waitlist_interval": func(f *File, v string) error { return setDuration(&f.WaitlistInterval, v) },
	"metrics_interval":  func(f *File, v string) error { return setDuration(&f.MetricsInterval, v) },
	"toast_duration":    func(f *File, v string) error { return setDuration(&f.ToastDuration, v) },
	"close_delay":       func(f *File, v string) error { return setDuration(&f.CloseDelay, v) },
	"request_timeout":   func(f *File, v string) error { return setDuration(&f.RequestTimeout, v) },
	"push_url":          func(f *File, v string) error { f.PushURL = v; return nil },
	"zone":              func(f *File, v string) error { f.Zone = strings.ToUpper(v); return nil },
	"inbox_driver":      setInboxDriver,
	"webhook.url":       func(f *File, v string) error { f.Webhook.URL = v; return nil },
	"webhook.secret":    func(f *File, v string) error { f.Webhook.Secret = v; return nil },
	"log.level":         func(f *File, v string) error { f.Log.Level = v; return nil },
	"log.format":        func(f *File, v string) error { f.Log.Format = v; return nil },
}

// Keys lists the settable keys
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates one key in dir/config.json
func Set(dir, key, value string) error {
	set, ok := setters[key]
	if !ok {
		if hint := suggest.Message(key, Keys()); hint != "" {
			return fmt.Errorf("unknown config key %q, %s", key, hint)
		}
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return WithLock(dir, func() error {
		f, err := ReadFile(dir)
		if err != nil {
			return err
		}
		if err := set(f, value); err != nil {
			return err
		}
		return WriteFile(dir, f)
	})
}

func setInboxDriver(f *File, v string) error {
	switch v {
	case "", "sqlite", "sqlite3":
		f.InboxDriver = v
		return nil
	}
	return fmt.Errorf("invalid inbox_driver %q (valid: sqlite, sqlite3)", v)
}

func setDuration(dst *string, v string) error {
	if v == "" {
		*dst = ""
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", v, err)
	}
	if d < 0 {
		return fmt.Errorf("duration must not be negative: %s", v)
	}
	*dst = v
	return nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func duration(fromEnv time.Duration, fromFile string, def time.Duration) time.Duration {
	if fromEnv > 0 {
		return fromEnv
	}
	if fromFile != "" {
		if d, err := time.ParseDuration(fromFile); err == nil && d >= 0 {
			return d
		}
	}
	return def
}
