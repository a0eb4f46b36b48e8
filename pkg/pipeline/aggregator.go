package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"voiceblog/pkg/transcript"
)

// ErrEmptyDay signals that a day has nothing to process. It is a normal
// terminal state for a run, not a failure.
var ErrEmptyDay = errors.New("no voice notes recorded for this day")

// FragmentSource lists a day's fragments in capture order.
type FragmentSource interface {
	List(dayKey string) ([]transcript.Fragment, error)
}

// Bundle is the ordered, in-memory grouping of one day's transcripts.
type Bundle struct {
	DayKey string
	Texts  []string
}

// Joined concatenates the texts with a blank-line separator. Failure
// sentinels pass through verbatim; interpreting gaps is the generator's job.
func (b *Bundle) Joined() string {
	return strings.Join(b.Texts, "\n\n")
}

// Aggregator collects a day's fragments for narrative generation.
type Aggregator struct {
	source FragmentSource
}

// NewAggregator creates an Aggregator over a fragment source.
func NewAggregator(source FragmentSource) *Aggregator {
	return &Aggregator{source: source}
}

// BuildBundle reads the day's fragments. A day with zero fragments returns
// ErrEmptyDay.
func (a *Aggregator) BuildBundle(dayKey string) (*Bundle, error) {
	fragments, err := a.source.List(dayKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list fragments for %s: %w", dayKey, err)
	}
	if len(fragments) == 0 {
		return nil, ErrEmptyDay
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}

	return &Bundle{DayKey: dayKey, Texts: texts}, nil
}
