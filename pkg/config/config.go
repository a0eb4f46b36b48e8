package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the user's API keys, model preferences and pipeline settings.
// It is loaded once at startup and passed explicitly into every constructor
// that needs a piece of it.
type Config struct {
	TelegramToken       string `json:"telegram_token"`
	TelegramAllowedUser string `json:"telegram_allowed_user"` // Telegram user ID, the only principal the bot answers

	// Narrative generation (OpenRouter chat completions)
	OpenRouterAPIKey string `json:"openrouter_apikey"`
	NarrativeModel   string `json:"narrative_model"` // e.g. "anthropic/claude-3.7-sonnet"

	// Transcription backend: "openai", "groq" or "whisper-cli"
	TranscriptionBackend string `json:"transcription_backend"`
	TranscriptionAPIKey  string `json:"transcription_apikey"`
	TranscriptionModel   string `json:"transcription_model"`

	// Blog destination: "", "ghost", "wordpress" or "medium".
	// Empty means save locally only.
	BlogPlatform string `json:"blog_platform"`
	BlogAPIURL   string `json:"blog_api_url"`
	BlogAPIKey   string `json:"blog_api_key"`

	CompileAt     string `json:"compile_at"`     // local time of the daily compile, "HH:MM"
	DataDir       string `json:"data_dir"`       // workspace root, default ~/.voiceblog
	RetentionDays int    `json:"retention_days"` // purge voice notes older than this; 0 keeps everything
}

// getConfigPath returns the absolute path to ~/.voiceblog/config.json.
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}
	dir := filepath.Join(home, ".voiceblog")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create voiceblog directory: %w", err)
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk.
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config not found at %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables (the .env fallback).
func FromEnv() *Config {
	retention := 0
	fmt.Sscanf(os.Getenv("RETENTION_DAYS"), "%d", &retention)

	return &Config{
		TelegramToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAllowedUser:  os.Getenv("ALLOWED_USER_ID"),
		OpenRouterAPIKey:     os.Getenv("OPENROUTER_API_KEY"),
		NarrativeModel:       os.Getenv("NARRATIVE_MODEL"),
		TranscriptionBackend: os.Getenv("TRANSCRIPTION_BACKEND"),
		TranscriptionAPIKey:  os.Getenv("TRANSCRIPTION_API_KEY"),
		TranscriptionModel:   os.Getenv("TRANSCRIPTION_MODEL"),
		BlogPlatform:         os.Getenv("BLOG_PLATFORM"),
		BlogAPIURL:           os.Getenv("BLOG_API_URL"),
		BlogAPIKey:           os.Getenv("BLOG_API_KEY"),
		CompileAt:            os.Getenv("COMPILE_AT"),
		DataDir:              os.Getenv("DATA_DIR"),
		RetentionDays:        retention,
	}
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram_token is required")
	}
	if c.TelegramAllowedUser == "" {
		return fmt.Errorf("telegram_allowed_user is required")
	}
	if c.OpenRouterAPIKey == "" {
		return fmt.Errorf("openrouter_apikey is required")
	}

	if c.NarrativeModel == "" {
		c.NarrativeModel = "anthropic/claude-3.7-sonnet"
	}
	if c.TranscriptionBackend == "" {
		c.TranscriptionBackend = "openai"
	}
	switch c.TranscriptionBackend {
	case "openai", "groq":
		if c.TranscriptionAPIKey == "" {
			return fmt.Errorf("transcription_apikey is required for the %s backend", c.TranscriptionBackend)
		}
	case "whisper-cli":
		// local binary, no key
	default:
		return fmt.Errorf("unknown transcription_backend %q", c.TranscriptionBackend)
	}

	switch c.BlogPlatform {
	case "", "ghost", "wordpress", "medium":
	default:
		return fmt.Errorf("unknown blog_platform %q", c.BlogPlatform)
	}

	if c.CompileAt == "" {
		c.CompileAt = "21:00"
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not find home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".voiceblog")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative")
	}

	return nil
}

// Save writes the config back to disk.
func (c *Config) Save() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	// Strict permissions since it contains API keys (rw-------)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to disk: %w", err)
	}

	return nil
}
