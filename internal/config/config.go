package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tuanvm/geminichat/internal/domain"
)

type Config struct {
	// Core
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	DatabaseURL  string `env:"DATABASE_URL,required"`

	// Generation API
	GeminiBaseURL     string        `env:"GEMINI_API_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	DefaultModel      string        `env:"DEFAULT_MODEL" envDefault:"gemini-2.0-flash"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"90s"`
	EmptyReplyText    string        `env:"EMPTY_REPLY_TEXT" envDefault:"(empty reply)"`

	// Request limits
	MaxPromptChars     int `env:"MAX_PROMPT_CHARS" envDefault:"132000"`
	MaxAttachmentBytes int `env:"MAX_ATTACHMENT_BYTES" envDefault:"20971520"`
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"6"`

	// Server
	Port             int    `env:"PORT" envDefault:"3000"`
	AllowedOrigin    string `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
	ReplyWithHistory bool   `env:"REPLY_INCLUDE_HISTORY" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	return cfg, nil
}
