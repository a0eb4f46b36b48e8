// Package pipeline assembles a day's transcripts into a blog post and drives
// the single publish attempt.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"voiceblog/pkg/narrative"
	"voiceblog/pkg/publish"

	"github.com/charmbracelet/log"
)

// ErrBusy means a run (manual or scheduled) is already in flight. Triggers
// are rejected rather than queued so a day can never publish twice.
var ErrBusy = errors.New("a compilation is already running")

// Generator turns a day's transcripts into a document. It returns failure as
// data, never as an error.
type Generator interface {
	Generate(ctx context.Context, texts []string, day string) narrative.Document
}

// Publisher persists the document and performs at most one remote attempt.
type Publisher interface {
	Publish(ctx context.Context, doc narrative.Document, day string) (publish.Result, error)
}

// Report is what one completed run produced.
type Report struct {
	DayKey        string
	FragmentCount int
	Document      narrative.Document
	Publish       publish.Result
}

// Runner executes the daily pipeline with single-run exclusivity.
type Runner struct {
	mu         sync.Mutex
	aggregator *Aggregator
	generator  Generator
	publisher  Publisher
}

// NewRunner wires the pipeline stages together.
func NewRunner(aggregator *Aggregator, generator Generator, publisher Publisher) *Runner {
	return &Runner{
		aggregator: aggregator,
		generator:  generator,
		publisher:  publisher,
	}
}

// Run executes one full pipeline pass for a day: aggregate, generate,
// locally save, publish. It returns ErrBusy if another run holds the lock,
// ErrEmptyDay if there is nothing to process, and otherwise fails only when
// the mandatory local save does (publish.ErrPersistence).
func (r *Runner) Run(ctx context.Context, dayKey string) (*Report, error) {
	if !r.mu.TryLock() {
		log.Warn("compilation trigger rejected, run already in flight", "day", dayKey)
		return nil, ErrBusy
	}
	defer r.mu.Unlock()

	log.Info("starting compilation", "day", dayKey)

	bundle, err := r.aggregator.BuildBundle(dayKey)
	if err != nil {
		if errors.Is(err, ErrEmptyDay) {
			log.Info("nothing to process", "day", dayKey)
		}
		return nil, err
	}

	doc := r.generator.Generate(ctx, bundle.Texts, dayKey)

	result, err := r.publisher.Publish(ctx, doc, dayKey)
	if err != nil {
		return nil, err
	}

	log.Info("compilation finished", "day", dayKey, "outcome", result.Outcome)

	return &Report{
		DayKey:        dayKey,
		FragmentCount: len(bundle.Texts),
		Document:      doc,
		Publish:       result,
	}, nil
}
