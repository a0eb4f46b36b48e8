// Package narrative turns a day's raw transcripts into a blog post.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voiceblog/pkg/archive"

	"github.com/charmbracelet/log"
)

// Status reports whether generation produced usable content.
type Status string

const (
	StatusOK               Status = "ok"
	StatusGenerationFailed Status = "generation_failed"
)

// Document is the generated long-form text for one day. A failed generation
// is still a document — the body carries a human-readable description and the
// pipeline keeps going, so local save and reporting run uniformly.
type Document struct {
	SourceDay string
	Body      string
	Status    Status
	Reason    string // set when Status == StatusGenerationFailed
}

// TextCompleter is the text-generation capability the generator calls.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const defaultTimeout = 60 * time.Second

// Generator builds the prompt, drives one bounded model call and keeps a
// local draft of whatever was generated.
type Generator struct {
	completer TextCompleter
	archive   *archive.Store
	timeout   time.Duration
}

// NewGenerator creates a Generator with the default request timeout.
func NewGenerator(completer TextCompleter, archive *archive.Store) *Generator {
	return &Generator{
		completer: completer,
		archive:   archive,
		timeout:   defaultTimeout,
	}
}

// buildPrompt assembles the instruction plus the day's notes in capture order.
func buildPrompt(texts []string, day string) string {
	return fmt.Sprintf(`I have recorded the following voice notes throughout the day on %s.
Please format them into a coherent, well-structured blog post.
Organize related thoughts, correct any grammar or transcription errors,
and make it flow naturally while preserving my original thoughts and insights.

Here are the notes:

%s
`, day, strings.Join(texts, "\n\n"))
}

// Generate produces the day's document. It never returns an error: a timeout
// or a rejected request yields a StatusGenerationFailed document instead. On
// success the body is saved to the archive before any publish attempt can
// happen, so a crash later in the run never loses generated content.
func (g *Generator) Generate(ctx context.Context, texts []string, day string) Document {
	prompt := buildPrompt(texts, day)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	log.Info("generating blog post", "day", day, "notes", len(texts))
	body, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		log.Error("blog post generation failed", "day", day, "err", err)
		return Document{
			SourceDay: day,
			Body:      fmt.Sprintf("Error generating blog post: %s", err),
			Status:    StatusGenerationFailed,
			Reason:    err.Error(),
		}
	}

	if err := g.archive.SavePost(day, body); err != nil {
		// The dispatcher's mandatory save is the durability gate; a failed
		// draft save is only worth a warning here.
		log.Warn("failed to save draft blog post", "day", day, "err", err)
	}

	return Document{
		SourceDay: day,
		Body:      body,
		Status:    StatusOK,
	}
}
