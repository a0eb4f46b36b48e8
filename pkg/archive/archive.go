// Package archive keeps the local durable copies of generated blog posts.
// A post is always on disk here before any publish attempt is made.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes blog post bodies and publish locators under blog_posts/.
type Store struct {
	dir string
}

// NewStore initializes the archive directory under the workspace.
func NewStore(workspace string) (*Store, error) {
	dir := filepath.Join(workspace, "blog_posts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) postPath(day string) string {
	return filepath.Join(s.dir, day+".md")
}

func (s *Store) locatorPath(day string) string {
	return filepath.Join(s.dir, day+"_url.txt")
}

// SavePost writes the post body for a day, overwriting any prior save.
func (s *Store) SavePost(day, body string) error {
	if err := os.WriteFile(s.postPath(day), []byte(body), 0644); err != nil {
		return fmt.Errorf("failed to save blog post for %s: %w", day, err)
	}
	return nil
}

// ReadPost returns the saved post body for a day.
func (s *Store) ReadPost(day string) (string, error) {
	data, err := os.ReadFile(s.postPath(day))
	if err != nil {
		return "", fmt.Errorf("failed to read blog post for %s: %w", day, err)
	}
	return string(data), nil
}

// SaveLocator records the URL or ID a published post ended up at.
func (s *Store) SaveLocator(day, locator string) error {
	if err := os.WriteFile(s.locatorPath(day), []byte(locator), 0644); err != nil {
		return fmt.Errorf("failed to save locator for %s: %w", day, err)
	}
	return nil
}

// ReadLocator returns the recorded locator for a day.
func (s *Store) ReadLocator(day string) (string, error) {
	data, err := os.ReadFile(s.locatorPath(day))
	if err != nil {
		return "", fmt.Errorf("failed to read locator for %s: %w", day, err)
	}
	return strings.TrimSpace(string(data)), nil
}
