package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"voiceblog/pkg/narrative"
)

type wordPressPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
	Date    string `json:"date"`
	Format  string `json:"format"`
}

type wordPressResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

// publishWordPress creates a published post through the WordPress REST API
// with a static bearer token. One attempt, no retries.
func (p *Publisher) publishWordPress(ctx context.Context, doc narrative.Document, day string) Result {
	payload := wordPressPost{
		Title:   postTitle(day),
		Content: doc.Body,
		Status:  "publish",
		Date:    day,
		Format:  "standard",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to marshal post: %s", err)}
	}

	endpoint := strings.TrimSuffix(p.apiURL, "/") + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to create request: %s", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("request failed: %s", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("WordPress API error %d: %s", resp.StatusCode, string(respBody))}
	}

	var wr wordPressResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to decode response: %s", err)}
	}

	locator := wr.Link
	if locator == "" {
		locator = fmt.Sprintf("Post published with ID: %d", wr.ID)
	}

	return Result{Outcome: OutcomePublished, Locator: locator}
}
