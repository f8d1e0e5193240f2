package musicmeta

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/musileague/backend/internal/platform/logging"
	"github.com/musileague/backend/internal/platform/resilience"
)

func TestClient_GetArtists_MapsPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header = %q", got)
		}
		if got := r.URL.Query().Get("ids"); got != "art_a,art_b" {
			t.Errorf("ids query = %q", got)
		}
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(`{"artists":[
			{"id":"art_a","name":"Alpha","popularity":71,"followers":1200,"is_featured":true},
			{"id":"art_b","name":"Beta","popularity":40,"followers":300}
		]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Token:   "test-token",
		Logger:  logging.NewNop(),
	})

	artists, err := client.GetArtists(t.Context(), []string{"art_a", "art_b", "art_a", ""})
	if err != nil {
		t.Fatalf("get artists failed: %v", err)
	}
	if len(artists) != 2 {
		t.Fatalf("expected 2 artists, got %d", len(artists))
	}
	if artists[0].ID != "art_a" || artists[0].Popularity != 71 || !artists[0].IsFeatured {
		t.Fatalf("unexpected first artist: %+v", artists[0])
	}
	if artists[1].Followers != 300 {
		t.Fatalf("unexpected followers: %d", artists[1].Followers)
	}
}

func TestClient_GetArtists_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"artists":[{"id":"art_a","name":"Alpha","popularity":71}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		MaxRetries: 2,
		Logger:     logging.NewNop(),
	})

	artists, err := client.GetArtists(t.Context(), []string{"art_a"})
	if err != nil {
		t.Fatalf("get artists failed: %v", err)
	}
	if len(artists) != 1 {
		t.Fatalf("expected 1 artist, got %d", len(artists))
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits.Load())
	}
}

func TestClient_GetArtists_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		MaxRetries: 3,
		Logger:     logging.NewNop(),
	})

	if _, err := client.GetArtists(t.Context(), []string{"art_a"}); err == nil {
		t.Fatal("expected error for 401")
	}
	if hits.Load() != 1 {
		t.Fatalf("401 must not retry, got %d attempts", hits.Load())
	}
}

func TestClient_GetArtists_EmptyInputSkipsRequest(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://localhost:0", Logger: logging.NewNop()})

	artists, err := client.GetArtists(t.Context(), []string{"", "  "})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if artists != nil {
		t.Fatalf("expected no artists, got %v", artists)
	}
}

func TestClient_CircuitBreakerRejectsWhenOpen(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Logger:  logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
		},
	})

	if _, err := client.GetArtists(t.Context(), []string{"art_a"}); err == nil {
		t.Fatal("expected failure while provider is down")
	}
	if state := client.breaker.State(); state != resilience.CircuitStateOpen {
		t.Fatalf("breaker state = %s, want open", state)
	}
}
