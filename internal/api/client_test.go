package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"slidecast/internal/jobstore"
)

func TestClientProcess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/video/process" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{"job_id":"abc","status":"queued"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Process(context.Background(), jobstore.Request{URL: "https://example.com/v"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.JobID != "abc" || resp.Status != jobstore.StatusQueued {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestClientBareHostGetsScheme(t *testing.T) {
	client := NewClient("127.0.0.1:8764")
	if client.baseURL != "http://127.0.0.1:8764" {
		t.Fatalf("baseURL = %q", client.baseURL)
	}
}

func TestClientSurfacesDaemonErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":"job abc already completed"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Cancel(context.Background(), "abc")
	if err == nil || err.Error() != "daemon: job abc already completed" {
		t.Fatalf("err = %v", err)
	}
}

func TestClientHistoryFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "failed" {
			t.Errorf("status filter = %q", got)
		}
		fmt.Fprint(w, `{"videos":[{"job_id":"a","status":"failed","progress":0,"request":{"url":"u"},"created_at":"2026-08-29T00:00:00Z","updated_at":"2026-08-29T00:00:00Z"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	jobs, err := client.History(context.Background(), jobstore.StatusFailed)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].ID != "a" {
		t.Fatalf("jobs = %+v", jobs)
	}
}

func TestClientRequiresAddress(t *testing.T) {
	client := NewClient("")
	if _, err := client.Health(context.Background()); err == nil {
		t.Fatal("expected error for empty address")
	}
}
