package providers

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// WhisperCLIProvider implements TranscriptionProvider using the local
// whisper CLI, for setups without a transcription API key.
type WhisperCLIProvider struct {
	Model string
}

// NewWhisperCLIProvider creates a local whisper transcription provider.
func NewWhisperCLIProvider(model string) *WhisperCLIProvider {
	if model == "" {
		model = "small"
	}
	return &WhisperCLIProvider{Model: model}
}

func (p *WhisperCLIProvider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "whisper_out_*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir for whisper: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	args := []string{
		audioPath,
		"--model", p.Model,
		"--output_dir", tmpDir,
		"--output_format", "txt",
	}

	log.Debug("running whisper CLI", "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, "whisper", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("whisper CLI failed: %w\noutput: %s", err, string(output))
	}

	// Whisper writes <audio_filename>.txt into the output dir.
	base := filepath.Base(audioPath)
	ext := filepath.Ext(base)
	txtFile := filepath.Join(tmpDir, strings.TrimSuffix(base, ext)+".txt")

	content, err := os.ReadFile(txtFile)
	if err != nil {
		return "", fmt.Errorf("failed to read whisper output file: %w", err)
	}

	return strings.TrimSpace(string(content)), nil
}
