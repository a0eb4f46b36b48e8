package bot

import (
	"context"
	"time"

	"voiceblog/pkg/transcript"

	"github.com/charmbracelet/log"
)

// Janitor is the background retention sweep: it purges voice note partitions
// older than the configured number of days. It never touches the day a
// compilation might still be reading — the cutoff is always in the past.
type Janitor struct {
	store         *transcript.Store
	retentionDays int
	interval      time.Duration
	now           func() time.Time
}

// NewJanitor creates a retention janitor. retentionDays <= 0 disables it.
func NewJanitor(store *transcript.Store, retentionDays int) *Janitor {
	return &Janitor{
		store:         store,
		retentionDays: retentionDays,
		interval:      6 * time.Hour,
		now:           time.Now,
	}
}

// Start runs the sweep loop. It blocks until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	if j.retentionDays <= 0 {
		log.Debug("retention janitor disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-ctx.Done():
			log.Info("retention janitor stopping")
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	if j.retentionDays <= 0 {
		return
	}

	// Day keys sort lexically in date order, so a string compare against the
	// cutoff key is enough.
	cutoff := transcript.DayKeyFor(j.now().AddDate(0, 0, -j.retentionDays))

	days, err := j.store.Days()
	if err != nil {
		log.Error("retention sweep failed to list days", "err", err)
		return
	}

	for _, day := range days {
		if day >= cutoff {
			break
		}
		log.Info("purging expired voice notes", "day", day)
		j.store.Purge(day)
	}
}
