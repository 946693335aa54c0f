package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/vidtoot/internal/domain"
)

func TestJobHandler_Process(t *testing.T) {
	svc := newFakeJobService()
	svc.nextID = "a1b2c3"
	handler := NewJobHandler(svc, testLogger())

	body := []byte(`{"url":"https://www.tiktok.com/@user/video/123","enhance":true,"dry_run":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/process", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Process(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", w.Code, http.StatusAccepted)
	}

	var resp ProcessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.JobID != "a1b2c3" {
		t.Errorf("job_id = %q, want %q", resp.JobID, "a1b2c3")
	}
	if resp.Status != "created" {
		t.Errorf("status = %q, want %q", resp.Status, "created")
	}

	if len(svc.submitted) != 1 {
		t.Fatalf("submitted %d jobs, want 1", len(svc.submitted))
	}
	sub := svc.submitted[0]
	if sub.url != "https://www.tiktok.com/@user/video/123" {
		t.Errorf("url = %q", sub.url)
	}
	if !sub.enhance || !sub.dryRun {
		t.Errorf("enhance = %v, dryRun = %v, want both true", sub.enhance, sub.dryRun)
	}
}

func TestJobHandler_Process_MissingURL(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no url field", `{"enhance":true}`},
		{"empty url", `{"url":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeJobService()
			handler := NewJobHandler(svc, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/process", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.Process(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}

			var resp map[string]string
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["error"] != "URL is required" {
				t.Errorf("error = %q, want %q", resp["error"], "URL is required")
			}

			if len(svc.submitted) != 0 {
				t.Errorf("submitted %d jobs, want 0", len(svc.submitted))
			}
		})
	}
}

func TestJobHandler_Process_InvalidJSON(t *testing.T) {
	handler := NewJobHandler(newFakeJobService(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/process", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()

	handler.Process(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestJobHandler_List_Empty(t *testing.T) {
	handler := NewJobHandler(newFakeJobService(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	// An empty list must encode as [] rather than null.
	if got := bytes.TrimSpace(w.Body.Bytes()); string(got) != "[]" {
		t.Errorf("body = %q, want %q", got, "[]")
	}
}

func TestJobHandler_List(t *testing.T) {
	created := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	statusURL := "https://mastodon.example/@user/123"
	done := newJobAt("job-done", "https://youtu.be/abc", created)
	done.MarkCompleted(&domain.Result{
		Title:       "A video",
		Summary:     "Short summary.",
		MastodonURL: &statusURL,
	}, "Posted to Mastodon successfully")

	failed := newJobAt("job-failed", "https://youtu.be/def", created.Add(time.Minute))
	failed.MarkFailed("download: boom")

	svc := newFakeJobService()
	svc.list = []*domain.Job{failed, done}
	handler := NewJobHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []JobResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len = %d, want 2", len(resp))
	}

	// Order comes straight from the manager.
	if resp[0].ID != "job-failed" || resp[1].ID != "job-done" {
		t.Errorf("order = [%s, %s]", resp[0].ID, resp[1].ID)
	}

	if resp[0].Status != "failed" {
		t.Errorf("status = %q, want %q", resp[0].Status, "failed")
	}
	if resp[0].Error == nil || *resp[0].Error != "download: boom" {
		t.Errorf("error = %v, want %q", resp[0].Error, "download: boom")
	}
	if resp[0].Result != nil {
		t.Error("failed job should have null result")
	}

	if resp[1].Result == nil {
		t.Fatal("completed job should have a result")
	}
	if resp[1].Result.Title != "A video" {
		t.Errorf("title = %q", resp[1].Result.Title)
	}
	if resp[1].Result.MastodonURL == nil || *resp[1].Result.MastodonURL != statusURL {
		t.Errorf("mastodon_url = %v", resp[1].Result.MastodonURL)
	}
	if resp[1].Error != nil {
		t.Error("completed job should have null error")
	}
	if resp[1].CreatedAt != "2026-08-20T10:00:00Z" {
		t.Errorf("created_at = %q", resp[1].CreatedAt)
	}
}

func TestJobHandler_Get(t *testing.T) {
	created := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	svc := newFakeJobService()
	svc.jobs["abc123"] = newJobAt("abc123", "https://youtu.be/abc", created)
	handler := NewJobHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Get("/api/jobs/{jobID}", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/abc123", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	// Pin the wire shape: a fresh job carries every key, with result and
	// error explicitly null.
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	for _, key := range []string{"id", "url", "enhance", "dry_run", "status", "progress", "created_at", "result", "error"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response missing key %q", key)
		}
	}
	if string(raw["result"]) != "null" {
		t.Errorf("result = %s, want null", raw["result"])
	}
	if string(raw["error"]) != "null" {
		t.Errorf("error = %s, want null", raw["error"])
	}
	if string(raw["status"]) != `"pending"` {
		t.Errorf("status = %s", raw["status"])
	}
	if string(raw["progress"]) != `"Job created"` {
		t.Errorf("progress = %s", raw["progress"])
	}
}

func TestJobHandler_Get_NotFound(t *testing.T) {
	handler := NewJobHandler(newFakeJobService(), testLogger())

	r := chi.NewRouter()
	r.Get("/api/jobs/{jobID}", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["error"] != "Job not found" {
		t.Errorf("error = %q, want %q", resp["error"], "Job not found")
	}
}
