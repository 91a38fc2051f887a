// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Storage
	DatabaseURL string `yaml:"database_url" validate:"required"`
	BadgerPath  string `yaml:"badger_path"`

	// Browser
	Headless      bool   `yaml:"headless"`
	CookiesPath   string `yaml:"cookies_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	// Executor
	RetryBaseDelaySeconds int `yaml:"retry_base_delay_seconds" validate:"gte=0"`

	// Notifications (optional)
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`

	// Answers for custom questions the profile cannot cover
	DefaultAnswers map[string]string `yaml:"default_answers"`

	// Server
	Port string `yaml:"port"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Headless: true}

	if path == "" {
		path = "configs/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	//Override with env vars
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("BADGER_PATH"); v != "" {
		cfg.BadgerPath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	//Set default values if not set
	if cfg.BadgerPath == "" {
		cfg.BadgerPath = ".cache/counters"
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "logs/screenshots"
	}
	if cfg.RetryBaseDelaySeconds == 0 {
		cfg.RetryBaseDelaySeconds = 60
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
