package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"voiceblog/pkg/archive"
)

type mockCompleter struct {
	reply      string
	err        error
	delay      time.Duration
	lastPrompt string
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.reply, m.err
}

func newTestGenerator(t *testing.T, completer TextCompleter) (*Generator, *archive.Store) {
	t.Helper()
	arch, err := archive.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("archive.NewStore: %v", err)
	}
	return NewGenerator(completer, arch), arch
}

func TestGenerateSuccessSavesDraft(t *testing.T) {
	completer := &mockCompleter{reply: "Today I started with coffee... wrapped up feeling good."}
	gen, arch := newTestGenerator(t, completer)

	texts := []string{
		"[8:00 AM] Had coffee, thinking about the project.",
		"[Transcription failed] Error: Speech not recognized",
		"[8:00 PM] Wrapped up, feeling good.",
	}
	doc := gen.Generate(context.Background(), texts, "2024-01-15")

	if doc.Status != StatusOK {
		t.Fatalf("expected ok status, got %s (%s)", doc.Status, doc.Reason)
	}
	if doc.SourceDay != "2024-01-15" {
		t.Errorf("unexpected source day %s", doc.SourceDay)
	}
	if doc.Body != completer.reply {
		t.Errorf("unexpected body: %q", doc.Body)
	}

	// The prompt embeds the reference date and all notes in order,
	// sentinel included.
	if !strings.Contains(completer.lastPrompt, "2024-01-15") {
		t.Error("prompt missing reference date")
	}
	if !strings.Contains(completer.lastPrompt, "[Transcription failed] Error: Speech not recognized") {
		t.Error("prompt missing failure sentinel")
	}
	coffee := strings.Index(completer.lastPrompt, "Had coffee")
	wrapped := strings.Index(completer.lastPrompt, "Wrapped up")
	if coffee == -1 || wrapped == -1 || coffee > wrapped {
		t.Error("notes out of order in prompt")
	}

	// Draft saved before any publish can run.
	saved, err := arch.ReadPost("2024-01-15")
	if err != nil {
		t.Fatalf("expected a saved draft: %v", err)
	}
	if saved != completer.reply {
		t.Errorf("draft does not match generated body: %q", saved)
	}
}

func TestGenerateFailureBecomesDocument(t *testing.T) {
	completer := &mockCompleter{err: errors.New("API error 503: overloaded")}
	gen, arch := newTestGenerator(t, completer)

	doc := gen.Generate(context.Background(), []string{"a note"}, "2024-01-15")

	if doc.Status != StatusGenerationFailed {
		t.Fatalf("expected generation_failed, got %s", doc.Status)
	}
	if !strings.Contains(doc.Body, "Error generating blog post") {
		t.Errorf("body is not a human-readable error: %q", doc.Body)
	}
	if !strings.Contains(doc.Reason, "503") {
		t.Errorf("reason lost the cause: %q", doc.Reason)
	}

	// No draft for a failed generation.
	if _, err := arch.ReadPost("2024-01-15"); err == nil {
		t.Error("failed generation must not leave a draft")
	}
}

func TestGenerateTimeoutDoesNotHang(t *testing.T) {
	completer := &mockCompleter{reply: "too late", delay: time.Hour}
	gen, _ := newTestGenerator(t, completer)
	gen.timeout = 20 * time.Millisecond

	start := time.Now()
	doc := gen.Generate(context.Background(), []string{"a note"}, "2024-01-15")

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("generate did not respect its timeout, took %s", elapsed)
	}
	if doc.Status != StatusGenerationFailed {
		t.Fatalf("expected generation_failed on timeout, got %s", doc.Status)
	}
}
