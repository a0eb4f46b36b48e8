package publish

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testAdminKey = "64f1a2b3c4d5e6f7a8b9c0d1:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestGhostTokenClaims(t *testing.T) {
	now := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	signed, err := ghostToken(testAdminKey, now)
	if err != nil {
		t.Fatalf("ghostToken: %v", err)
	}

	secret, _ := hex.DecodeString(strings.SplitN(testAdminKey, ":", 2)[1])
	token, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("/admin/"), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}

	if kid := token.Header["kid"]; kid != "64f1a2b3c4d5e6f7a8b9c0d1" {
		t.Errorf("kid header: expected key id, got %v", kid)
	}

	claims := token.Claims.(jwt.MapClaims)
	iat := int64(claims["iat"].(float64))
	exp := int64(claims["exp"].(float64))
	if iat != now.Unix() {
		t.Errorf("iat: expected %d, got %d", now.Unix(), iat)
	}
	if exp-iat != int64(ghostTokenTTL.Seconds()) {
		t.Errorf("token lifetime: expected %v, got %ds", ghostTokenTTL, exp-iat)
	}
}

func TestGhostTokenRejectsMalformedKey(t *testing.T) {
	if _, err := ghostToken("no-colon-here", time.Now()); err == nil {
		t.Error("expected error for a key without id:secret shape")
	}
	if _, err := ghostToken("id:not-hex!", time.Now()); err == nil {
		t.Error("expected error for a non-hex secret")
	}
}

func TestPublishGhostSuccess(t *testing.T) {
	var gotAuth string
	var gotBody struct {
		Posts []struct {
			Title     string `json:"title"`
			Mobiledoc string `json:"mobiledoc"`
			Status    string `json:"status"`
			Tags      []struct {
				Name string `json:"name"`
			} `json:"tags"`
		} `json:"posts"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ghost/api/admin/posts/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"posts": []map[string]string{{
				"id":   "abc123",
				"url":  "https://blog.example.com/daily-reflections-january-15-2024/",
				"slug": "daily-reflections-january-15-2024",
			}},
		})
	}))
	defer server.Close()

	arch, _ := newTestArchive(t)
	pub := New(DestinationGhost, server.URL, testAdminKey, arch)

	result, err := pub.Publish(context.Background(), okDocument(), "2024-01-15")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.Outcome != OutcomePublished {
		t.Fatalf("expected published, got %s (%s)", result.Outcome, result.Reason)
	}

	// Ghost uses its own authorization scheme, not Bearer.
	if !strings.HasPrefix(gotAuth, "Ghost ") {
		t.Errorf("expected Ghost authorization scheme, got %q", gotAuth)
	}

	if len(gotBody.Posts) != 1 {
		t.Fatalf("expected one post in payload, got %d", len(gotBody.Posts))
	}
	post := gotBody.Posts[0]
	if post.Title != "Daily Reflections - January 15, 2024" {
		t.Errorf("unexpected title %q", post.Title)
	}
	if post.Status != "published" {
		t.Errorf("unexpected status %q", post.Status)
	}
	if len(post.Tags) != 2 || post.Tags[0].Name != "Daily Reflections" {
		t.Errorf("unexpected tags %+v", post.Tags)
	}

	// The body travels inside a mobiledoc markdown card.
	var md struct {
		Cards [][]interface{} `json:"cards"`
	}
	if err := json.Unmarshal([]byte(post.Mobiledoc), &md); err != nil {
		t.Fatalf("mobiledoc is not valid JSON: %v", err)
	}
	if len(md.Cards) != 1 || md.Cards[0][0] != "markdown" {
		t.Errorf("expected a single markdown card, got %+v", md.Cards)
	}
}

func TestPublishGhostSlugFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"posts": []map[string]string{{"id": "abc123", "slug": "daily-reflections"}},
		})
	}))
	defer server.Close()

	arch, _ := newTestArchive(t)
	pub := New(DestinationGhost, server.URL, testAdminKey, arch)

	result, err := pub.Publish(context.Background(), okDocument(), "2024-01-15")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.Locator != server.URL+"/daily-reflections" {
		t.Errorf("expected slug-derived locator, got %q", result.Locator)
	}
}
