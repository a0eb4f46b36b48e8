package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"
)

// Known OpenAI-compatible transcription endpoints.
const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
)

// WhisperAPIProvider implements TranscriptionProvider against any
// OpenAI-compatible /audio/transcriptions endpoint (OpenAI, Groq).
type WhisperAPIProvider struct {
	client *openai.Client
	model  string
}

// NewWhisperAPIProvider creates a transcription provider for the given base
// URL. An empty baseURL targets OpenAI; an empty model uses whisper-1.
func NewWhisperAPIProvider(baseURL, apiKey, model string) *WhisperAPIProvider {
	if model == "" {
		model = openai.Whisper1
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	return &WhisperAPIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// NewGroqTranscriptionProvider targets Groq's Whisper deployment.
func NewGroqTranscriptionProvider(apiKey string) *WhisperAPIProvider {
	return NewWhisperAPIProvider(GroqBaseURL, apiKey, "whisper-large-v3")
}

func (p *WhisperAPIProvider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	log.Debug("transcribing audio", "file", audioPath, "model", p.model)

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}
