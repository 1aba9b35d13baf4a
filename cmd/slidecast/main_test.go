package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newFakeDaemon(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestProcessCommandSubmitsJob(t *testing.T) {
	var gotBody string
	server := newFakeDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/video/process" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.String()
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{"job_id":"j1","status":"queued"}`)
	})

	out, err := runCommand(t, "process", "https://example.com/v",
		"--addr", server.URL, "--translate-to", "fr", "--outline")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Job j1 queued") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(gotBody, `"translate_to":"fr"`) || !strings.Contains(gotBody, `"generate_outline":true`) {
		t.Fatalf("request body = %s", gotBody)
	}
}

func TestStatusCommandRendersJob(t *testing.T) {
	server := newFakeDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"job_id":"j1","status":"completed","progress":100,
			"request":{"url":"https://example.com/v"},
			"result":{"title":"Talk","slide_count":12,"frames_dir":"/data/frames/j1"},
			"created_at":"2026-08-29T00:00:00Z","updated_at":"2026-08-29T00:05:00Z",
			"history":[{"timestamp":"2026-08-29T00:00:00Z","step":"queued","progress":0,"message":"job accepted"}]
		}`)
	})

	out, err := runCommand(t, "status", "j1", "--addr", server.URL, "--history")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"completed", "Talk", "12", "job accepted"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJobsCommandEmptyListing(t *testing.T) {
	server := newFakeDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"videos":[]}`)
	})

	out, err := runCommand(t, "jobs", "--addr", server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No jobs found") {
		t.Fatalf("output = %q", out)
	}
}

func TestCancelCommandReportsPendingStop(t *testing.T) {
	server := newFakeDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/cancel") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"job_id":"j1","status":"running"}`)
	})

	out, err := runCommand(t, "cancel", "j1", "--addr", server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cancellation requested") {
		t.Fatalf("output = %q", out)
	}
}

func TestDeleteCommandSurfacesConflict(t *testing.T) {
	server := newFakeDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":"job j1 not finished"}`)
	})

	_, err := runCommand(t, "delete", "j1", "--addr", server.URL)
	if err == nil || !strings.Contains(err.Error(), "not finished") {
		t.Fatalf("err = %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "slidecast") {
		t.Fatalf("output = %q", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := t.TempDir() + "/config.toml"
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("output = %q", out)
	}

	// A second init must refuse to overwrite.
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}
