package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	env "github.com/netflix/go-env"
)

// TelegramConfig holds Telegram bot settings.
type TelegramConfig struct {
	BotToken        string        `env:"TELEGRAM_BOT_TOKEN,required=true"`
	AllowFrom       string        `env:"TELEGRAM_ALLOW_FROM"`
	ResponseTimeout time.Duration `env:"TELEGRAM_RESPONSE_TIMEOUT,default=60s"`
	PollTimeout     int           `env:"TELEGRAM_POLL_TIMEOUT,default=30"`
}

// LoadTelegram loads Telegram configuration from environment variables.
func LoadTelegram() (*TelegramConfig, error) {
	var cfg TelegramConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.AllowedUserIDs(); err != nil {
		return nil, err
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = 60 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30
	}
	return &cfg, nil
}

// AllowedUserIDs parses TELEGRAM_ALLOW_FROM. An empty list allows everyone.
func (c *TelegramConfig) AllowedUserIDs() ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(c.AllowFrom, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOW_FROM: invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
