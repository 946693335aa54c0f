package publisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/pkg/mastodon"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMastodon struct {
	uploadMedia  *mastodon.Media
	uploadErr    error
	uploadedPath string
	uploadedMIME string
	uploadedDesc string

	mediaStates []*mastodon.Media
	getErr      error
	getCalls    int

	status     *mastodon.Status
	statusErr  error
	posted     bool
	postedText string
	postedIDs  []string
}

func (f *fakeMastodon) UploadMedia(ctx context.Context, path, mimeType, description string) (*mastodon.Media, error) {
	f.uploadedPath = path
	f.uploadedMIME = mimeType
	f.uploadedDesc = description
	return f.uploadMedia, f.uploadErr
}

func (f *fakeMastodon) GetMedia(ctx context.Context, id string) (*mastodon.Media, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	i := f.getCalls
	if i >= len(f.mediaStates) {
		i = len(f.mediaStates) - 1
	}
	f.getCalls++
	return f.mediaStates[i], nil
}

func (f *fakeMastodon) PostStatus(ctx context.Context, text string, mediaIDs []string) (*mastodon.Status, error) {
	f.posted = true
	f.postedText = text
	f.postedIDs = mediaIDs
	return f.status, f.statusErr
}

func testPublisher(client mastodon.Client, timeout time.Duration) *Publisher {
	p := New(client, timeout, testLogger())
	p.poll = time.Millisecond
	return p
}

func TestPublish_Success(t *testing.T) {
	client := &fakeMastodon{
		uploadMedia: &mastodon.Media{ID: "42", Processing: true},
		mediaStates: []*mastodon.Media{
			{ID: "42", Processing: true},
			{ID: "42", URL: "https://files.example.com/42.mp4"},
		},
		status: &mastodon.Status{ID: "109", URL: "https://mastodon.example.com/@bot/109"},
	}
	p := testPublisher(client, time.Second)

	url, err := p.Publish(context.Background(), Post{
		Summary:     "A cat jumps.",
		VideoPath:   "/work/video.mp4",
		SourceURL:   "https://tiktok.com/@a/video/1",
		MIMEType:    "video/mp4",
		Description: "A tabby cat leaps onto a counter.",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if url != "https://mastodon.example.com/@bot/109" {
		t.Errorf("url = %q", url)
	}
	if client.uploadedPath != "/work/video.mp4" || client.uploadedMIME != "video/mp4" {
		t.Errorf("upload = (%q, %q)", client.uploadedPath, client.uploadedMIME)
	}
	if client.uploadedDesc != "A tabby cat leaps onto a counter." {
		t.Errorf("uploaded description = %q", client.uploadedDesc)
	}
	if client.getCalls != 2 {
		t.Errorf("polled %d times, want 2", client.getCalls)
	}
	if client.postedText != "A cat jumps.\n\nSource: https://tiktok.com/@a/video/1" {
		t.Errorf("status text = %q", client.postedText)
	}
	if len(client.postedIDs) != 1 || client.postedIDs[0] != "42" {
		t.Errorf("media ids = %v", client.postedIDs)
	}
}

func TestPublish_MediaTimeout(t *testing.T) {
	client := &fakeMastodon{
		uploadMedia: &mastodon.Media{ID: "42", Processing: true},
		mediaStates: []*mastodon.Media{{ID: "42", Processing: true}},
	}
	p := testPublisher(client, 10*time.Millisecond)

	_, err := p.Publish(context.Background(), Post{VideoPath: "v", SourceURL: "s"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, domain.ErrMediaTimeout) {
		t.Errorf("error = %v, want ErrMediaTimeout", err)
	}
	if !strings.Contains(err.Error(), "media_id=42") {
		t.Errorf("error does not name the media id: %v", err)
	}
	if client.posted {
		t.Error("status was posted despite media timeout")
	}
}

func TestPublish_UploadError(t *testing.T) {
	client := &fakeMastodon{uploadErr: errors.New("API error (status 422): bad file")}
	p := testPublisher(client, time.Second)

	_, err := p.Publish(context.Background(), Post{VideoPath: "v"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "upload media") {
		t.Errorf("error = %v", err)
	}
	if client.posted {
		t.Error("status was posted despite upload failure")
	}
}

func TestPublish_PollError(t *testing.T) {
	client := &fakeMastodon{
		uploadMedia: &mastodon.Media{ID: "42", Processing: true},
		getErr:      errors.New("API error (status 500): boom"),
	}
	p := testPublisher(client, time.Second)

	_, err := p.Publish(context.Background(), Post{VideoPath: "v"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "poll media status") {
		t.Errorf("error = %v", err)
	}
}

func TestPublish_NotConfigured(t *testing.T) {
	p := New(nil, time.Second, testLogger())

	_, err := p.Publish(context.Background(), Post{VideoPath: "v"})
	if !errors.Is(err, domain.ErrMastodonNotConfigured) {
		t.Errorf("error = %v, want ErrMastodonNotConfigured", err)
	}
}

func TestPublish_PostStatusError(t *testing.T) {
	client := &fakeMastodon{
		uploadMedia: &mastodon.Media{ID: "42"},
		mediaStates: []*mastodon.Media{{ID: "42", URL: "https://files.example.com/42.mp4"}},
		statusErr:   errors.New("API error (status 401): bad token"),
	}
	p := testPublisher(client, time.Second)

	_, err := p.Publish(context.Background(), Post{VideoPath: "v"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "post status") {
		t.Errorf("error = %v", err)
	}
}
