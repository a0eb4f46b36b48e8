package providers

import (
	"context"
	"fmt"
	"strings"
)

// TranscriptionProvider defines the interface for audio-to-text transcription.
type TranscriptionProvider interface {
	// Transcribe takes a local path to an audio file and returns its transcription.
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// failurePrefix marks a transcript that could not be produced. The marker is
// stored like any other fragment so the day's compilation can see the gap.
const failurePrefix = "[Transcription failed]"

// FailureSentinel renders a transcription error as storable fragment text.
func FailureSentinel(err error) string {
	return fmt.Sprintf("%s Error: %s", failurePrefix, err)
}

// IsFailureSentinel reports whether a fragment text is a failure marker.
func IsFailureSentinel(text string) bool {
	return strings.HasPrefix(text, failurePrefix)
}
