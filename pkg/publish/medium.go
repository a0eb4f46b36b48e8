package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"voiceblog/pkg/narrative"
)

type mediumUserResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type mediumPost struct {
	Title         string   `json:"title"`
	ContentFormat string   `json:"contentFormat"`
	Content       string   `json:"content"`
	PublishStatus string   `json:"publishStatus"`
	Tags          []string `json:"tags"`
}

type mediumPostResponse struct {
	Data struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"data"`
}

// publishMedium creates a public Medium story. The API needs two calls: the
// integration token only identifies the user through /v1/me, then the post
// goes to that user's posts collection. Still a single publish attempt.
func (p *Publisher) publishMedium(ctx context.Context, doc narrative.Document, day string) Result {
	userID, result := p.mediumUserID(ctx)
	if result != nil {
		return *result
	}

	payload := mediumPost{
		Title:         postTitle(day),
		ContentFormat: "markdown",
		Content:       doc.Body,
		PublishStatus: "public",
		Tags:          []string{"daily-reflections", "voice-notes"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to marshal post: %s", err)}
	}

	endpoint := fmt.Sprintf("%s/v1/users/%s/posts", p.mediumBaseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to create request: %s", err)}
	}
	p.mediumHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("request failed: %s", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("Medium API error %d: %s", resp.StatusCode, string(respBody))}
	}

	var mr mediumPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to decode response: %s", err)}
	}

	locator := mr.Data.URL
	if locator == "" {
		locator = fmt.Sprintf("Post published with ID: %s", mr.Data.ID)
	}

	return Result{Outcome: OutcomePublished, Locator: locator}
}

// mediumUserID resolves the integration token to a user ID. On failure it
// returns the Result to report instead.
func (p *Publisher) mediumUserID(ctx context.Context) (string, *Result) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.mediumBaseURL+"/v1/me", nil)
	if err != nil {
		return "", &Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to create request: %s", err)}
	}
	p.mediumHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("request failed: %s", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to get Medium user: %d - %s", resp.StatusCode, string(respBody))}
	}

	var ur mediumUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", &Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to decode user response: %s", err)}
	}
	if ur.Data.ID == "" {
		return "", &Result{Outcome: OutcomeFailed, Reason: "could not retrieve Medium user ID"}
	}

	return ur.Data.ID, nil
}

func (p *Publisher) mediumHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
