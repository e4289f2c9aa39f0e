package scoresfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/platform/logging"
	"github.com/pickemhq/pickem-api/internal/platform/resilience"
	"github.com/pickemhq/pickem-api/internal/usecase"
)

func newFeedClient(srv *httptest.Server) *Client {
	return NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		Token:          "feed-token",
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.BreakerConfig{Enabled: false},
	})
}

func TestFetchWeek_ParsesResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/weeks/3/results" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "feed-token" {
			t.Errorf("missing api token")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"week": 3,
			"games": [
				{"game_id": "game_w3_gb_chi", "status": "final", "home_score": 24, "away_score": 17, "winner": "HOME"},
				{"game_id": "", "status": "final"},
				{"game_id": "game_w3_det_min", "status": "IN_PROGRESS", "home_score": 10, "away_score": 13}
			]
		}`))
	}))
	defer srv.Close()

	results, err := newFeedClient(srv).FetchWeek(context.Background(), 3)
	if err != nil {
		t.Fatalf("fetch week failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results (blank game id dropped), got %d", len(results))
	}
	if results[0].GameID != "game_w3_gb_chi" || results[0].Status != game.StatusFinal {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[0].Winner != game.SideHome {
		t.Fatalf("expected HOME winner, got %q", results[0].Winner)
	}
	if results[1].Winner != "" {
		t.Fatalf("expected empty winner for unfinished game, got %q", results[1].Winner)
	}
}

func TestFetchWeek_ServerErrorIsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newFeedClient(srv).FetchWeek(context.Background(), 1)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestFetchWeek_OpenBreakerShortCircuits(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.BreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Hour,
			ProbeLimit:       1,
		},
	})

	if _, err := client.FetchWeek(context.Background(), 1); err == nil {
		t.Fatalf("expected first fetch to fail")
	}
	callsAfterFirst := calls

	_, err := client.FetchWeek(context.Background(), 1)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from open breaker, got %v", err)
	}
	if calls != callsAfterFirst {
		t.Fatalf("expected no upstream call while breaker open")
	}
}

func TestFetchWeek_RejectsInvalidWeek(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://feed.local", Logger: logging.NewNop()})
	if _, err := client.FetchWeek(context.Background(), 0); err == nil {
		t.Fatalf("expected error for week 0")
	}
}
