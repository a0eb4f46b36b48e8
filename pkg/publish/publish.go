// Package publish drives the single best-effort publish attempt for a
// generated blog post: a mandatory local save, then at most one network call
// to the configured destination platform.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"voiceblog/pkg/archive"
	"voiceblog/pkg/narrative"

	"github.com/charmbracelet/log"
)

// Destination selects the blog platform posts are published to.
type Destination string

const (
	DestinationNone      Destination = ""
	DestinationGhost     Destination = "ghost"
	DestinationWordPress Destination = "wordpress"
	DestinationMedium    Destination = "medium"
)

// ParseDestination validates a configured platform name.
func ParseDestination(s string) (Destination, error) {
	switch Destination(s) {
	case DestinationNone, DestinationGhost, DestinationWordPress, DestinationMedium:
		return Destination(s), nil
	}
	return DestinationNone, fmt.Errorf("unknown blog platform %q", s)
}

// Outcome classifies what happened to a publish call.
type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Result is the definite outcome of one publish call. Exactly one is
// produced per pipeline run; it is reported, never retried.
type Result struct {
	Outcome Outcome
	Locator string // URL or ID of the published post
	Reason  string // why the call was skipped or failed
}

// ErrPersistence means the mandatory local save failed. It is the one
// condition that aborts a run: continuing would silently discard content.
var ErrPersistence = errors.New("local save failed")

const (
	requestTimeout = 30 * time.Second
	titlePrefix    = "Daily Reflections"
)

// Publisher dispatches to the one destination resolved at startup.
type Publisher struct {
	dest    Destination
	apiURL  string
	apiKey  string
	archive *archive.Store
	client  *http.Client

	mediumBaseURL string // swapped out in tests
}

// New creates a Publisher. The destination is fixed here, never re-read from
// configuration mid-call.
func New(dest Destination, apiURL, apiKey string, archive *archive.Store) *Publisher {
	return &Publisher{
		dest:          dest,
		apiURL:        apiURL,
		apiKey:        apiKey,
		archive:       archive,
		client:        &http.Client{Timeout: requestTimeout},
		mediumBaseURL: "https://api.medium.com",
	}
}

// Publish persists the document locally, then performs at most one remote
// attempt. The returned error is non-nil only for ErrPersistence; every
// remote problem is folded into the Result.
func (p *Publisher) Publish(ctx context.Context, doc narrative.Document, day string) (Result, error) {
	// The local save is unconditional — even destination=none and failed
	// generations leave a durable artifact behind.
	if err := p.archive.SavePost(day, doc.Body); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrPersistence, err)
	}
	log.Info("blog post saved locally", "day", day)

	if p.dest == DestinationNone {
		log.Warn("no blog platform configured, saved locally only")
		return Result{Outcome: OutcomeSkipped, Reason: "no destination configured"}, nil
	}
	if !p.hasCredentials() {
		log.Warn("blog platform credentials not configured, saved locally only", "platform", p.dest)
		return Result{Outcome: OutcomeSkipped, Reason: fmt.Sprintf("%s API details not configured", p.dest)}, nil
	}

	result := p.attemptRemote(ctx, doc, day)

	if result.Outcome == OutcomePublished {
		if err := p.archive.SaveLocator(day, result.Locator); err != nil {
			// The post is out; losing the pointer to it is not a failure.
			log.Warn("failed to save post locator", "day", day, "err", err)
		}
	}

	return result, nil
}

func (p *Publisher) hasCredentials() bool {
	switch p.dest {
	case DestinationMedium:
		return p.apiKey != "" // Medium only needs the integration token
	default:
		return p.apiURL != "" && p.apiKey != ""
	}
}

// attemptRemote runs the one destination-specific routine. Nothing may
// escape the dispatcher boundary: panics become a failed Result so the run
// always completes with a definite outcome.
func (p *Publisher) attemptRemote(ctx context.Context, doc narrative.Document, day string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("publish routine panicked", "platform", p.dest, "panic", r)
			result = Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	log.Info("publishing blog post", "platform", p.dest, "day", day)

	switch p.dest {
	case DestinationGhost:
		result = p.publishGhost(ctx, doc, day)
	case DestinationWordPress:
		result = p.publishWordPress(ctx, doc, day)
	case DestinationMedium:
		result = p.publishMedium(ctx, doc, day)
	default:
		result = Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("unsupported platform %q", p.dest)}
	}

	switch result.Outcome {
	case OutcomePublished:
		log.Info("blog post published", "platform", p.dest, "locator", result.Locator)
	case OutcomeFailed:
		log.Error("blog post publish failed", "platform", p.dest, "reason", result.Reason)
	}
	return result
}

// postTitle renders the day key as the human-facing post title.
func postTitle(day string) string {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return titlePrefix + " - " + day
	}
	return titlePrefix + " - " + t.Format("January 2, 2006")
}
