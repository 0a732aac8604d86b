package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"synerx-dashboard/config"
)

func testClient(serverURL string) *Client {
	return NewClient(config.Backend{
		BaseURL:        serverURL,
		APIKey:         "test-key",
		RequestTimeout: time.Second,
	})
}

func TestJobsStatusDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/status" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("expected api key header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"job_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","status":"processing","progress":55}]`))
	}))
	defer srv.Close()

	jobs, err := testClient(srv.URL).JobsStatus(context.Background())
	if err != nil {
		t.Fatalf("jobs status: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Progress != 55 {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestNon2xxReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).AnalyticsSummary(context.Background())
	if err == nil {
		t.Fatalf("expected error for 502")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", statusErr.Code)
	}
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(config.Backend{
		BaseURL:        srv.URL,
		RequestTimeout: 20 * time.Millisecond,
	})

	if err := client.Health(context.Background()); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestStorageCleanupParsesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/storage/cleanup" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"removed":3}`))
	}))
	defer srv.Close()

	removed, err := testClient(srv.URL).StorageCleanup(context.Background())
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
}
