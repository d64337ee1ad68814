package config

import (
	"time"

	env "github.com/netflix/go-env"
)

// SlackConfig holds Slack-related settings
type SlackConfig struct {
	BotToken string `env:"SLACK_BOT_TOKEN,required=true"`
	// App-level token for Socket Mode (xapp-)
	AppToken string `env:"SLACK_APP_TOKEN,required=false"`
	// Enable Socket Mode when true (requires AppToken)
	SocketMode      bool          `env:"SLACK_SOCKET_MODE,default=false"`
	ResponseTimeout time.Duration `env:"SLACK_RESPONSE_TIMEOUT,default=60s"`
	EnableThreading bool          `env:"SLACK_ENABLE_THREADING,default=true"`
	// Rate limits per minute
	RateUserPerMinute    int `env:"SLACK_RATE_USER_PER_MINUTE,default=10"`
	RateChannelPerMinute int `env:"SLACK_RATE_CHANNEL_PER_MINUTE,default=30"`
	RateGlobalPerMinute  int `env:"SLACK_RATE_GLOBAL_PER_MINUTE,default=100"`
}

// LoadSlack loads Slack configuration from environment variables
func LoadSlack() (*SlackConfig, error) {
	var cfg SlackConfig
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, err
	}
	// If AppToken is present but SocketMode is not explicitly set, enable Socket Mode automatically
	if cfg.AppToken != "" && !cfg.SocketMode {
		cfg.SocketMode = true
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = 60 * time.Second
	}
	return &cfg, nil
}
