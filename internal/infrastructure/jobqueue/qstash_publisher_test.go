package jobqueue

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pickemhq/pickem-api/internal/platform/logging"
	"github.com/pickemhq/pickem-api/internal/platform/resilience"
	"github.com/pickemhq/pickem-api/internal/usecase"
)

func TestEnqueueResultsSync_PublishesToQStash(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotForward, gotDedup, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotForward = r.Header.Get("Upstash-Forward-X-Internal-Job-Token")
		gotDedup = r.Header.Get("Upstash-Deduplication-Id")
		raw, _ := io.ReadAll(r.Body)
		gotBody = strings.TrimSpace(string(raw))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          srv.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://api.pickem.example.com",
		InternalJobToken: "job-secret",
	}, logging.NewNop())

	if err := publisher.EnqueueResultsSync(context.Background(), 3, 0); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	wantPath := "/v2/publish/https://api.pickem.example.com" + ResultsSyncJobPath
	if gotPath != wantPath {
		t.Fatalf("unexpected publish path: got %q want %q", gotPath, wantPath)
	}
	if gotAuth != "Bearer qstash-token" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
	if gotForward != "job-secret" {
		t.Fatalf("unexpected forwarded job token: %q", gotForward)
	}
	if gotDedup != "results-sync-week-3" {
		t.Fatalf("unexpected deduplication id: %q", gotDedup)
	}
	if gotBody != `{"week":3}` {
		t.Fatalf("unexpected body: %q", gotBody)
	}
}

func TestEnqueue_RejectsMissingPath(t *testing.T) {
	t.Parallel()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       "https://qstash.upstash.io",
		TargetBaseURL: "https://api.pickem.example.com",
	}, logging.NewNop())

	if err := publisher.Enqueue(context.Background(), "  ", nil, 0, ""); err == nil {
		t.Fatalf("expected error for empty job path")
	}
}

func TestEnqueue_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       srv.URL,
		TargetBaseURL: "https://api.pickem.example.com",
		Timeout:       time.Second,
	}, logging.NewNop())

	if err := publisher.EnqueueRecompute(context.Background(), 0); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}

func TestEnqueue_OpenCircuitSkipsPublish(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       srv.URL,
		TargetBaseURL: "https://api.pickem.example.com",
		Timeout:       time.Second,
		CircuitBreaker: resilience.BreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
		},
	}, logging.NewNop())

	if err := publisher.EnqueueRecompute(context.Background(), 0); err == nil {
		t.Fatalf("expected error for failing upstream")
	}

	err := publisher.EnqueueRecompute(context.Background(), 0)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from open circuit, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the open circuit to stop the second publish, got %d calls", calls)
	}
}
