package whisper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidecast/internal/services"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, []byte("fake audio bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeUploadsMultipart(t *testing.T) {
	const srt = "1\n00:00:00,000 --> 00:00:02,000\nhello\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("response_format"); got != "srt" {
			t.Errorf("response_format = %q", got)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			file.Close()
		}
		w.Write([]byte(srt))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	transcript, err := client.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !strings.Contains(transcript, "hello") {
		t.Fatalf("transcript = %q", transcript)
	}
}

func TestTranscribeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too large", http.StatusRequestEntityTooLarge)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	_, err := client.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("error = %v", err)
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v", err)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	client := NewClient(Config{APIKey: "key"})
	_, err := client.Transcribe(context.Background(), "/does/not/exist.mp3")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v", err)
	}
}
