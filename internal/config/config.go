package config

import (
	"reflect"
	"time"

	"fx-sentiment/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Instruments       []string `envconfig:"SENTIMENT_INSTRUMENTS"`
	RefetchIntervalMs int64    `envconfig:"SENTIMENT_REFETCH_INTERVAL_MS"`
	StaleAfterMs      int64    `envconfig:"SENTIMENT_STALE_AFTER_MS"`
	MaxRetries        int      `envconfig:"SENTIMENT_MAX_RETRIES"`
	BaseBackoffMs     int64    `envconfig:"SENTIMENT_BASE_BACKOFF_MS"`
	MaxBackoffMs      int64    `envconfig:"SENTIMENT_MAX_BACKOFF_MS"`

	LLMAPIKey             string `envconfig:"LLM_API_KEY"`
	LLMBaseURL            string `envconfig:"LLM_BASE_URL"`
	LLMModel              string `envconfig:"LLM_MODEL"`
	LLMRequestTimeoutSecs int    `envconfig:"LLM_REQUEST_TIMEOUT_SECS"`
	LLMRateLimitPerMin    int    `envconfig:"LLM_RATE_LIMIT_PER_MIN"`

	RedisURL        string `envconfig:"REDIS_URL"`
	SnapshotTTLSecs int    `envconfig:"SNAPSHOT_TTL_SECS"`

	TelegramBotToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramAlertChatID int64  `envconfig:"TELEGRAM_ALERT_CHAT_ID"`

	HTTPPort       int    `envconfig:"HTTP_PORT"`
	APIKey         string `envconfig:"API_KEY"`
	MCPHTTPEnabled bool   `envconfig:"MCP_HTTP_ENABLED"`

	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`
}

// Defaults returns the configuration used when no environment overrides are set.
func Defaults() *Config {
	return &Config{
		Instruments:           append([]string(nil), domain.DefaultInstruments...),
		RefetchIntervalMs:     300000,
		StaleAfterMs:          240000,
		MaxRetries:            3,
		BaseBackoffMs:         1000,
		MaxBackoffMs:          30000,
		LLMBaseURL:            "https://api.x.ai/v1",
		LLMModel:              "grok-beta",
		LLMRequestTimeoutSecs: 60,
		LLMRateLimitPerMin:    6,
		RedisURL:              "localhost:6379",
		SnapshotTTLSecs:       3600,
		HTTPPort:              8080,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// Load overlays the environment on Defaults. Each variable is decoded on its own, so a
// malformed value only resets that field.
func Load() *Config {
	cfg := Defaults()
	processFields(cfg)

	cfg.Instruments = domain.NormalizeInstruments(cfg.Instruments)
	if len(cfg.Instruments) == 0 {
		log.Warn("SENTIMENT_INSTRUMENTS empty, using defaults")
		cfg.Instruments = append([]string(nil), domain.DefaultInstruments...)
	}

	d := Defaults()
	if cfg.RefetchIntervalMs <= 0 {
		cfg.RefetchIntervalMs = d.RefetchIntervalMs
	}
	if cfg.StaleAfterMs <= 0 {
		cfg.StaleAfterMs = d.StaleAfterMs
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = d.MaxRetries
	}
	if cfg.BaseBackoffMs <= 0 {
		cfg.BaseBackoffMs = d.BaseBackoffMs
	}
	if cfg.MaxBackoffMs <= 0 {
		cfg.MaxBackoffMs = d.MaxBackoffMs
	}
	if cfg.MaxBackoffMs < cfg.BaseBackoffMs {
		log.Warnf("SENTIMENT_MAX_BACKOFF_MS=%d below base backoff, clamping", cfg.MaxBackoffMs)
		cfg.MaxBackoffMs = cfg.BaseBackoffMs
	}
	if cfg.LLMRequestTimeoutSecs <= 0 {
		cfg.LLMRequestTimeoutSecs = d.LLMRequestTimeoutSecs
	}
	if cfg.LLMRateLimitPerMin <= 0 {
		cfg.LLMRateLimitPerMin = d.LLMRateLimitPerMin
	}
	if cfg.SnapshotTTLSecs <= 0 {
		cfg.SnapshotTTLSecs = d.SnapshotTTLSecs
	}
	if cfg.HTTPPort <= 0 {
		cfg.HTTPPort = d.HTTPPort
	}

	if cfg.LLMAPIKey == "" {
		log.Warn("LLM_API_KEY not set, every fetch will fail as fatal")
	}
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, snapshot mirror disabled")
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramAlertChatID == 0 {
		log.Warn("TELEGRAM_ALERT_CHAT_ID not set, rate-limit alerts will only be logged")
	}

	return cfg
}

func processFields(cfg *Config) {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		single := reflect.New(reflect.StructOf([]reflect.StructField{field}))
		single.Elem().Field(0).Set(v.Field(i))
		if err := envconfig.Process("", single.Interface()); err != nil {
			log.Warn("invalid environment variable, using default", "key", field.Tag.Get("envconfig"), "err", err)
			continue
		}
		v.Field(i).Set(single.Elem().Field(0))
	}
}

func (c *Config) RefetchInterval() time.Duration {
	return time.Duration(c.RefetchIntervalMs) * time.Millisecond
}

func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterMs) * time.Millisecond
}

func (c *Config) BaseBackoff() time.Duration {
	return time.Duration(c.BaseBackoffMs) * time.Millisecond
}

func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMs) * time.Millisecond
}

func (c *Config) LLMRequestTimeout() time.Duration {
	return time.Duration(c.LLMRequestTimeoutSecs) * time.Second
}

func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSecs) * time.Second
}
