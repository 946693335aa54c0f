package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{APIKey: "test-key"})

	if client.baseURL != "https://api.openai.com/v1" {
		t.Errorf("baseURL = %q, want OpenAI default", client.baseURL)
	}
	if client.model != "whisper-1" {
		t.Errorf("model = %q, want whisper-1", client.model)
	}
	if client.httpClient.Timeout != 5*time.Minute {
		t.Errorf("timeout = %v, want 5m", client.httpClient.Timeout)
	}
}

func TestNewClient_Overrides(t *testing.T) {
	client := NewClient(Config{
		APIKey:  "k",
		BaseURL: "https://proxy.example.com/v1",
		Model:   "gpt-4o-transcribe",
		Timeout: time.Minute,
	})

	if client.baseURL != "https://proxy.example.com/v1" {
		t.Errorf("baseURL = %q", client.baseURL)
	}
	if client.model != "gpt-4o-transcribe" {
		t.Errorf("model = %q", client.model)
	}
}

func TestTranscribeFile_Success(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(mediaPath, []byte("fake-video-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing or wrong Authorization header")
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model field = %q, want whisper-1", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "video.mp4" {
			t.Errorf("filename = %q, want video.mp4", header.Filename)
		}

		json.NewEncoder(w).Encode(map[string]string{"text": "hello from the video"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	text, err := client.TranscribeFile(context.Background(), mediaPath)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if text != "hello from the video" {
		t.Errorf("text = %q", text)
	}
}

func TestTranscribeFile_ErrorBodySurfaced(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(mediaPath, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	apiBody := `{"error":{"message":"Failed to load audio: file does not contain any stream"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(apiBody))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})

	_, err := client.TranscribeFile(context.Background(), mediaPath)
	if err == nil {
		t.Fatal("expected error")
	}
	// Callers match on the body to recognize silent videos.
	if !strings.Contains(err.Error(), "Failed to load audio") ||
		!strings.Contains(err.Error(), "does not contain any stream") {
		t.Errorf("error = %q, want API body included", err.Error())
	}
	if !strings.Contains(err.Error(), "API error (status 400)") {
		t.Errorf("error = %q, want status included", err.Error())
	}
}

func TestTranscribeFile_MissingFile(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})

	_, err := client.TranscribeFile(context.Background(), "/nonexistent/video.mp4")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
