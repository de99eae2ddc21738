// Package config loads application configuration from a TOML file with
// environment-variable overrides for secrets and deployment knobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dailyayah/dailyayah/core/corpus"
)

// Default dataset file names, matching the published datasets this app is
// built around.
const (
	DefaultArabicFile      = "qpc-hafs.json"
	DefaultTranslationFile = "en-taqi-usmani-simple.json"
	DefaultTafsirFile      = "en-tafisr-ibn-kathir.json"
)

// Config is the full application configuration.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Mail   MailConfig   `toml:"mail"`
	Watch  WatchConfig  `toml:"watch"`
	Log    LogConfig    `toml:"log"`
}

// DataConfig locates the three source datasets.
type DataConfig struct {
	Dir         string `toml:"dir"`
	Arabic      string `toml:"arabic"`
	Translation string `toml:"translation"`
	Tafsir      string `toml:"tafsir"`
}

// Sources resolves the configured file names against the data directory.
func (d DataConfig) Sources() corpus.Sources {
	return corpus.Sources{
		Arabic:      filepath.Join(d.Dir, d.Arabic),
		Translation: filepath.Join(d.Dir, d.Translation),
		Tafsir:      filepath.Join(d.Dir, d.Tafsir),
	}
}

// CacheConfig controls the unified-data snapshot.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	File    string `toml:"file"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port       int    `toml:"port"`
	AdminToken string `toml:"admin_token"`
}

// MailConfig holds SMTP and schedule settings for the subscription feature.
type MailConfig struct {
	Enabled   bool   `toml:"enabled"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Sender    string `toml:"sender"`
	DB        string `toml:"db"`
	DailyTime string `toml:"daily_time"` // "HH:MM", 24-hour
	WeeklyDay int    `toml:"weekly_day"` // time.Weekday (0 = Sunday)
	BaseURL   string `toml:"base_url"`   // absolute URL prefix for unsubscribe links
}

// DailyAt parses the configured daily send time.
func (m MailConfig) DailyAt() (hour, minute int, err error) {
	t, err := time.Parse("15:04", m.DailyTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid daily_time %q: %w", m.DailyTime, err)
	}
	return t.Hour(), t.Minute(), nil
}

// WatchConfig enables source-file watching for automatic reloads.
type WatchConfig struct {
	Enabled bool `toml:"enabled"`
	// DebounceSeconds collapses bursts of file events into one reload.
	DebounceSeconds int `toml:"debounce_seconds"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or text
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: DataConfig{
			Dir:         "data",
			Arabic:      DefaultArabicFile,
			Translation: DefaultTranslationFile,
			Tafsir:      DefaultTafsirFile,
		},
		Cache: CacheConfig{
			Enabled: true,
			File:    filepath.Join("cache", "unified_data.json"),
		},
		Server: ServerConfig{Port: 8080},
		Mail: MailConfig{
			Host:      "smtp.gmail.com",
			Port:      587,
			Sender:    "noreply@dailyayah.app",
			DB:        filepath.Join("data", "subscribers.db"),
			DailyTime: "06:00",
			WeeklyDay: int(time.Friday),
		},
		Watch: WatchConfig{DebounceSeconds: 2},
		Log:   LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a TOML config file when path is non-empty (a missing explicit
// path is an error), merges it over the defaults, then applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if _, _, err := cfg.Mail.DailyAt(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. Secrets are env-only by
// convention; the rest mirror the most common deployment overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AYAH_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("AYAH_CACHE_FILE"); v != "" {
		cfg.Cache.File = v
	}
	if v := os.Getenv("AYAH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AYAH_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("AYAH_SMTP_USERNAME"); v != "" {
		cfg.Mail.Username = v
	}
	if v := os.Getenv("AYAH_SMTP_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
}
