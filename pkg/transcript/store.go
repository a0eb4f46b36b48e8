// Package transcript persists the day's voice note transcriptions.
//
// Each fragment is one immutable file named <day>_<HH-MM-SS.mmm>.txt, so a
// lexical sort of the directory is capture order and an append can never land
// "inside" an in-progress listing.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DayKeyLayout is the calendar-date partition key format.
	DayKeyLayout = "2006-01-02"

	// stampLayout names a fragment inside its day. Millisecond precision
	// keeps identifiers unique even for back-to-back recordings.
	stampLayout = "15-04-05.000"
)

// Fragment is one transcribed voice recording plus its capture timestamp.
// The day key is assigned once at creation and never re-derived, so a
// fragment processed after midnight still belongs to the day it was recorded.
type Fragment struct {
	DayKey      string
	CaptureTime time.Time
	Text        string
}

// DayKeyFor returns the partition key for a capture time.
func DayKeyFor(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// NewFragment builds a fragment for a capture time, fixing its day key.
func NewFragment(captureTime time.Time, text string) Fragment {
	return Fragment{
		DayKey:      DayKeyFor(captureTime),
		CaptureTime: captureTime,
		Text:        text,
	}
}

// Store is the append-only, day-partitioned transcript store.
type Store struct {
	dir string
}

// NewStore initializes the store directory under the workspace.
func NewStore(workspace string) (*Store, error) {
	dir := filepath.Join(workspace, "voice_notes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory fragments are stored in.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) fragmentPath(f Fragment) string {
	name := f.DayKey + "_" + f.CaptureTime.Format(stampLayout) + ".txt"
	return filepath.Join(s.dir, name)
}

// AudioPath returns where the raw audio for a capture time should be kept,
// next to its transcript so Purge removes both.
func (s *Store) AudioPath(captureTime time.Time) string {
	name := DayKeyFor(captureTime) + "_" + captureTime.Format(stampLayout) + ".ogg"
	return filepath.Join(s.dir, name)
}

// Append writes a fragment to disk. Reusing an identifier overwrites the
// previous content, which should not normally occur.
func (s *Store) Append(f Fragment) error {
	if err := os.WriteFile(s.fragmentPath(f), []byte(f.Text), 0644); err != nil {
		return fmt.Errorf("failed to write fragment: %w", err)
	}
	return nil
}

// List returns the day's fragments in ascending capture order. Individually
// unreadable entries are logged and skipped; a day with no fragments yields
// an empty slice, not an error.
func (s *Store) List(dayKey string) ([]Fragment, error) {
	names, err := s.fragmentNames(dayKey)
	if err != nil {
		return nil, err
	}

	fragments := make([]Fragment, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			log.Warn("skipping unreadable fragment", "file", name, "err", err)
			continue
		}

		stamp := strings.TrimSuffix(name, ".txt")
		captureTime, err := time.ParseInLocation(DayKeyLayout+"_"+stampLayout, stamp, time.Local)
		if err != nil {
			log.Warn("skipping fragment with malformed name", "file", name, "err", err)
			continue
		}

		fragments = append(fragments, Fragment{
			DayKey:      dayKey,
			CaptureTime: captureTime,
			Text:        strings.TrimSpace(string(data)),
		})
	}

	return fragments, nil
}

// Count reports how many fragments exist for a day without reading them.
func (s *Store) Count(dayKey string) (int, error) {
	names, err := s.fragmentNames(dayKey)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Purge deletes everything recorded for a day, audio included. Deletion is
// best-effort per file: individual failures are logged, never returned.
func (s *Store) Purge(dayKey string) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Error("purge: failed to read transcript dir", "err", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), dayKey+"_") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Error("purge: failed to remove file", "file", entry.Name(), "err", err)
			continue
		}
		log.Info("purge: removed file", "file", entry.Name())
	}
}

// Days returns every day key that still has files on disk, ascending.
func (s *Store) Days() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript dir: %w", err)
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) < len(DayKeyLayout)+1 || name[len(DayKeyLayout)] != '_' {
			continue
		}
		day := name[:len(DayKeyLayout)]
		if _, err := time.Parse(DayKeyLayout, day); err != nil {
			continue
		}
		seen[day] = true
	}

	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Strings(days)
	return days, nil
}

// fragmentNames returns the sorted transcript file names for a day. Sorting
// the timestamp-embedding names lexically is capture order.
func (s *Store) fragmentNames(dayKey string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, dayKey+"_") || !strings.HasSuffix(name, ".txt") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
