package pipeline

import (
	"errors"
	"strings"
	"testing"
	"time"

	"voiceblog/pkg/transcript"
)

type stubSource struct {
	fragments []transcript.Fragment
	err       error
}

func (s *stubSource) List(dayKey string) ([]transcript.Fragment, error) {
	return s.fragments, s.err
}

func fragmentsFor(day string, texts ...string) []transcript.Fragment {
	base := time.Date(2024, 1, 15, 8, 0, 0, 0, time.Local)
	out := make([]transcript.Fragment, len(texts))
	for i, text := range texts {
		out[i] = transcript.Fragment{
			DayKey:      day,
			CaptureTime: base.Add(time.Duration(i) * time.Hour),
			Text:        text,
		}
	}
	return out
}

func TestBuildBundleEmptyDay(t *testing.T) {
	agg := NewAggregator(&stubSource{})

	_, err := agg.BuildBundle("2024-01-15")
	if !errors.Is(err, ErrEmptyDay) {
		t.Fatalf("expected ErrEmptyDay, got %v", err)
	}
}

func TestBuildBundleJoinsWithBlankLines(t *testing.T) {
	agg := NewAggregator(&stubSource{
		fragments: fragmentsFor("2024-01-15",
			"Had coffee, thinking about the project.",
			"[Transcription failed] Error: Speech not recognized",
			"Wrapped up, feeling good.",
		),
	})

	bundle, err := agg.BuildBundle("2024-01-15")
	if err != nil {
		t.Fatalf("BuildBundle: %v", err)
	}

	joined := bundle.Joined()
	if got := strings.Count(joined, "\n\n"); got != 2 {
		t.Errorf("expected 2 blank-line separators, got %d", got)
	}
	// Failure sentinels pass through verbatim.
	if !strings.Contains(joined, "[Transcription failed] Error: Speech not recognized") {
		t.Error("failure sentinel was dropped from the bundle")
	}
	if !strings.HasPrefix(joined, "Had coffee") || !strings.HasSuffix(joined, "feeling good.") {
		t.Errorf("bundle order not preserved: %q", joined)
	}
}

func TestBuildBundleWrapsStoreError(t *testing.T) {
	agg := NewAggregator(&stubSource{err: errors.New("disk gone")})

	_, err := agg.BuildBundle("2024-01-15")
	if err == nil || errors.Is(err, ErrEmptyDay) {
		t.Fatalf("expected a wrapped store error, got %v", err)
	}
	if !strings.Contains(err.Error(), "disk gone") {
		t.Errorf("store error not wrapped: %v", err)
	}
}
