// Package config loads the relay's runtime configuration from environment
// variables. It is read once at startup and passed down explicitly.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"mortgage-voice-relay/internal/domain"
)

// DefaultAllowedOrigins is the browser allow-list used when
// CORS_ALLOWED_ORIGINS is unset.
var DefaultAllowedOrigins = []string{
	"https://voice-agent-frontend-alpha.vercel.app",
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

type Config struct {
	// Server
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"5000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LambdaFunction  string        `env:"AWS_LAMBDA_FUNCTION_NAME"`

	// HTTP edge
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	MaxUploadBytes int64    `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`

	// LLM
	XAIAPIKey     string        `env:"XAI_API_KEY"`
	XAIBaseURL    string        `env:"XAI_BASE_URL" envDefault:"https://api.x.ai/v1"`
	XAIModel      string        `env:"XAI_MODEL" envDefault:"grok-3-beta"`
	XAITimeout    time.Duration `env:"XAI_TIMEOUT" envDefault:"30s"`
	SystemPrompt  string        `env:"SYSTEM_PROMPT"`
	SummaryPrompt string        `env:"SUMMARY_PROMPT"`

	// AWS (optional)
	ParamPrefix   string `env:"PARAM_PREFIX"`
	DeliveryTable string `env:"DELIVERY_TABLE"`

	// SMTP
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPSecure   bool   `env:"SMTP_SECURE" envDefault:"true"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	EmailFrom    string `env:"EMAIL_FROM"`
	EmailTo      string `env:"EMAIL_TO"`
	EmailSubject string `env:"EMAIL_SUBJECT"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables only.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("parse config: PORT %d out of range", cfg.Port)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("parse config: MAX_UPLOAD_BYTES must be positive")
	}
	return cfg, nil
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsLambda reports whether the process runs inside AWS Lambda.
func (c *Config) IsLambda() bool {
	return c.LambdaFunction != ""
}

// UsesAWS reports whether any optional AWS integration is configured.
func (c *Config) UsesAWS() bool {
	return c.ParamPrefix != "" || c.DeliveryTable != ""
}

// MailSettings projects the SMTP fields for the email relay.
func (c *Config) MailSettings() domain.MailSettings {
	return domain.MailSettings{
		Host:     strings.TrimSpace(c.SMTPHost),
		Port:     c.SMTPPort,
		Secure:   c.SMTPSecure,
		Username: c.SMTPUser,
		Password: c.SMTPPass,
		From:     c.EmailFrom,
		To:       c.EmailTo,
		Subject:  c.EmailSubject,
	}
}

// NewLogger builds the process logger: JSON to stdout at LOG_LEVEL.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
