package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mortgage-voice-relay/internal/domain"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Host)
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, "https://api.x.ai/v1", cfg.XAIBaseURL)
	require.Equal(t, "grok-3-beta", cfg.XAIModel)
	require.Equal(t, 30*time.Second, cfg.XAITimeout)
	require.Equal(t, 465, cfg.SMTPPort)
	require.True(t, cfg.SMTPSecure)
	require.Equal(t, int64(25<<20), cfg.MaxUploadBytes)
	require.Equal(t, DefaultAllowedOrigins, cfg.AllowedOrigins)
	require.False(t, cfg.IsLambda())
	require.False(t, cfg.UsesAWS())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PORT":                     "8080",
		"XAI_API_KEY":              "xai-123",
		"XAI_TIMEOUT":              "5s",
		"SMTP_SECURE":              "false",
		"SMTP_PORT":                "587",
		"CORS_ALLOWED_ORIGINS":     " https://a.example , ,https://b.example",
		"AWS_LAMBDA_FUNCTION_NAME": "relay",
		"DELIVERY_TABLE":           "deliveries",
	})
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "xai-123", cfg.XAIAPIKey)
	require.Equal(t, 5*time.Second, cfg.XAITimeout)
	require.False(t, cfg.SMTPSecure)
	require.Equal(t, 587, cfg.SMTPPort)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.True(t, cfg.IsLambda())
	require.True(t, cfg.UsesAWS())
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"non-numeric port":   {"PORT": "http"},
		"port out of range":  {"PORT": "70000"},
		"bad timeout":        {"XAI_TIMEOUT": "soon"},
		"bad secure flag":    {"SMTP_SECURE": "maybe"},
		"zero upload budget": {"MAX_UPLOAD_BYTES": "0"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(vars)
			require.Error(t, err)
		})
	}
}

func TestMailSettings(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"SMTP_HOST":  " smtp.example.com ",
		"SMTP_USER":  "relay",
		"SMTP_PASS":  "secret",
		"EMAIL_FROM": "agent@omni.example",
		"EMAIL_TO":   "loans@omni.example",
	})
	require.NoError(t, err)

	require.Equal(t, domain.MailSettings{
		Host:     "smtp.example.com",
		Port:     465,
		Secure:   true,
		Username: "relay",
		Password: "secret",
		From:     "agent@omni.example",
		To:       "loans@omni.example",
	}, cfg.MailSettings())
	require.Empty(t, cfg.MailSettings().MissingKeys())
}
