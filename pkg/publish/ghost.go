package publish

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"voiceblog/pkg/narrative"
)

// ghostTokenTTL is how long a Ghost Admin API token stays valid. Ghost
// rejects anything longer than a few minutes.
const ghostTokenTTL = 5 * time.Minute

// ghostToken builds the short-lived HS256 token the Ghost Admin API expects.
// The admin key comes as "id:secret" with a hex-encoded secret; the key id
// goes into the kid header and the audience is fixed to /admin/.
func ghostToken(adminKey string, now time.Time) (string, error) {
	id, secret, ok := strings.Cut(adminKey, ":")
	if !ok {
		return "", fmt.Errorf("admin API key must be in 'id:secret' format")
	}

	key, err := hex.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("admin API key secret is not valid hex: %w", err)
	}

	iat := now.Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": iat,
		"exp": iat + int64(ghostTokenTTL.Seconds()),
		"aud": "/admin/",
	})
	token.Header["kid"] = id

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

// mobiledoc wraps markdown content in the document format Ghost stores
// posts in: a single markdown card.
func mobiledoc(markdown string) (string, error) {
	doc := map[string]interface{}{
		"version": "0.3.1",
		"markups": []interface{}{},
		"atoms":   []interface{}{},
		"cards":   []interface{}{[]interface{}{"markdown", map[string]string{"markdown": markdown}}},
		"sections": []interface{}{
			[]interface{}{10, 0},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type ghostPost struct {
	Title       string     `json:"title"`
	Mobiledoc   string     `json:"mobiledoc"`
	Status      string     `json:"status"`
	PublishedAt string     `json:"published_at"`
	Tags        []ghostTag `json:"tags,omitempty"`
}

type ghostTag struct {
	Name string `json:"name"`
}

type ghostResponse struct {
	Posts []struct {
		ID   string `json:"id"`
		URL  string `json:"url"`
		Slug string `json:"slug"`
	} `json:"posts"`
}

// publishGhost creates a published post through the Ghost Admin API using a
// freshly signed token. One attempt, no retries.
func (p *Publisher) publishGhost(ctx context.Context, doc narrative.Document, day string) Result {
	token, err := ghostToken(p.apiKey, time.Now())
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	md, err := mobiledoc(doc.Body)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to build mobiledoc: %s", err)}
	}

	apiURL := strings.TrimSuffix(p.apiURL, "/")
	payload := map[string][]ghostPost{
		"posts": {{
			Title:       postTitle(day),
			Mobiledoc:   md,
			Status:      "published",
			PublishedAt: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
			Tags:        []ghostTag{{Name: "Daily Reflections"}, {Name: "Voice Notes"}},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to marshal post: %s", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/ghost/api/admin/posts/", bytes.NewReader(body))
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to create request: %s", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Ghost "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("request failed: %s", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("Ghost API error %d: %s", resp.StatusCode, string(respBody))}
	}

	var gr ghostResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to decode response: %s", err)}
	}
	if len(gr.Posts) == 0 {
		return Result{Outcome: OutcomeFailed, Reason: "Ghost returned no post"}
	}

	post := gr.Posts[0]
	locator := post.URL
	if locator == "" && post.Slug != "" {
		locator = apiURL + "/" + post.Slug
	}
	if locator == "" {
		locator = fmt.Sprintf("Post published with ID: %s", post.ID)
	}

	return Result{Outcome: OutcomePublished, Locator: locator}
}
