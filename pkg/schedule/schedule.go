// Package schedule fires the daily compilation at a fixed local time.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Service wraps a cron runner holding the one fixed daily job.
type Service struct {
	runner *cron.Cron
}

// New creates a stopped scheduler in the local time zone.
func New() *Service {
	return &Service{runner: cron.New()}
}

// Daily registers fn to fire every day at "HH:MM" local time.
func (s *Service) Daily(timeOfDay string, fn func()) error {
	hh, mm, ok := strings.Cut(timeOfDay, ":")
	if !ok {
		return fmt.Errorf("time of day must be HH:MM, got %q", timeOfDay)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour in %q", timeOfDay)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid minute in %q", timeOfDay)
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := s.runner.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("failed to schedule daily job: %w", err)
	}

	log.Info("scheduled daily compilation", "at", timeOfDay)
	return nil
}

// Start begins the scheduler and stops it when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.runner.Start()
	go func() {
		<-ctx.Done()
		s.runner.Stop()
		log.Info("scheduler stopped")
	}()
}
