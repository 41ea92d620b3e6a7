package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends for the document slot.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrTokenRequired  = errors.New("TELEGRAM_TOKEN is required")
)

// Config keeps runtime settings for the tracker and its bot.
type Config struct {
	TelegramToken  string
	OwnerID        int64
	StorageBackend string
	DatabaseURL    string
	RedisURL       string
	RedisKey       string
	StorageFile    string
	Location       *time.Location
	DailyResetTime string
	ReportTime     string
	LogLevel       string
}

// keys maps viper keys to the environment variables that feed them.
var keys = map[string]string{
	"telegram_token":    "TELEGRAM_TOKEN",
	"telegram_owner_id": "TELEGRAM_OWNER_ID",
	"storage_backend":   "STORAGE_BACKEND",
	"database_url":      "DATABASE_URL",
	"redis_url":         "REDIS_URL",
	"redis_key":         "REDIS_KEY",
	"storage_file":      "STORAGE_FILE",
	"timezone":          "TIMEZONE",
	"daily_reset_time":  "DAILY_RESET_TIME",
	"report_time":       "REPORT_TIME",
	"log_level":         "LOG_LEVEL",
}

// Load reads configuration from environment variables and, when file is not
// empty, from a YAML file. Environment variables win over the file.
func Load(file string) (Config, error) {
	v := viper.New()
	v.SetDefault("storage_backend", BackendSQLite)
	v.SetDefault("database_url", "taskquest.db")
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("redis_key", "taskquest:document")
	v.SetDefault("storage_file", "taskquest.json")
	v.SetDefault("timezone", "Local")
	v.SetDefault("daily_reset_time", "00:00")
	v.SetDefault("log_level", "info")

	for key, env := range keys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(v.GetString("telegram_token")),
		StorageBackend: strings.ToLower(strings.TrimSpace(v.GetString("storage_backend"))),
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		RedisURL:       strings.TrimSpace(v.GetString("redis_url")),
		RedisKey:       strings.TrimSpace(v.GetString("redis_key")),
		StorageFile:    strings.TrimSpace(v.GetString("storage_file")),
		DailyResetTime: strings.TrimSpace(v.GetString("daily_reset_time")),
		ReportTime:     strings.TrimSpace(v.GetString("report_time")),
		LogLevel:       strings.TrimSpace(v.GetString("log_level")),
	}

	if raw := strings.TrimSpace(v.GetString("telegram_owner_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TELEGRAM_OWNER_ID %q: %w", raw, err)
		}
		cfg.OwnerID = id
	}

	loc, err := time.LoadLocation(strings.TrimSpace(v.GetString("timezone")))
	if err != nil {
		return cfg, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	switch cfg.StorageBackend {
	case BackendSQLite, BackendRedis, BackendFile:
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StorageBackend)
	}

	return cfg, nil
}

// ValidateBot checks the settings only the Telegram bot needs.
func (c Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return ErrTokenRequired
	}
	return nil
}
