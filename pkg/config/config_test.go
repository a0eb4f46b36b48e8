package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		TelegramToken:        "123:abc",
		TelegramAllowedUser:  "42",
		OpenRouterAPIKey:     "sk-or-test",
		TranscriptionBackend: "whisper-cli",
		DataDir:              "/tmp/voiceblog-test",
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.NarrativeModel != "anthropic/claude-3.7-sonnet" {
		t.Errorf("default narrative model not applied, got %q", cfg.NarrativeModel)
	}
	if cfg.CompileAt != "21:00" {
		t.Errorf("default compile time not applied, got %q", cfg.CompileAt)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing telegram token", func(c *Config) { c.TelegramToken = "" }, "telegram_token"},
		{"missing allowed user", func(c *Config) { c.TelegramAllowedUser = "" }, "telegram_allowed_user"},
		{"missing openrouter key", func(c *Config) { c.OpenRouterAPIKey = "" }, "openrouter_apikey"},
		{"unknown transcription backend", func(c *Config) { c.TranscriptionBackend = "carrier-pigeon" }, "transcription_backend"},
		{"api backend without key", func(c *Config) { c.TranscriptionBackend = "groq" }, "transcription_apikey"},
		{"unknown blog platform", func(c *Config) { c.BlogPlatform = "geocities" }, "blog_platform"},
		{"negative retention", func(c *Config) { c.RetentionDays = -1 }, "retention_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateAcceptsEmptyBlogPlatform(t *testing.T) {
	cfg := validConfig()
	cfg.BlogPlatform = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty blog platform is the local-only default: %v", err)
	}
}
