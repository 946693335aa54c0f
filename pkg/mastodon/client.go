package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client interfaces with a Mastodon instance.
type Client interface {
	// UploadMedia uploads a media file with an accessibility description and
	// returns the created attachment.
	UploadMedia(ctx context.Context, path, mimeType, description string) (*Media, error)
	// GetMedia fetches the current state of a media attachment.
	GetMedia(ctx context.Context, id string) (*Media, error)
	// PostStatus publishes a status with the given media attached.
	PostStatus(ctx context.Context, text string, mediaIDs []string) (*Status, error)
}

// Media is a Mastodon media attachment. Processing is true while the
// instance is still encoding the upload.
type Media struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
	Processing bool   `json:"-"`
}

// Status is a published Mastodon status.
type Status struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Config holds the settings for a Mastodon client.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration // Optional, defaults to 5 minutes for large uploads
}

// HTTPClient implements Client against the Mastodon REST API.
type HTTPClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a new Mastodon API client.
func NewClient(cfg Config) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// UploadMedia uploads a media file via the v2 media API. The instance may
// answer 202 Accepted, meaning the attachment exists but is still encoding.
func (c *HTTPClient) UploadMedia(ctx context.Context, path, mimeType, description string) (*Media, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(path)))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy media data: %w", err)
	}
	if description != "" {
		if err := writer.WriteField("description", description); err != nil {
			return nil, fmt.Errorf("write description field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v2/media", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var media Media
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	media.Processing = resp.StatusCode == http.StatusAccepted || media.URL == ""
	return &media, nil
}

// GetMedia fetches a media attachment. A 206 answer means the instance is
// still encoding it.
func (c *HTTPClient) GetMedia(ctx context.Context, id string) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/media/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var media Media
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	media.Processing = resp.StatusCode == http.StatusPartialContent || media.URL == ""
	return &media, nil
}

// PostStatus publishes a status with media attached.
func (c *HTTPClient) PostStatus(ctx context.Context, text string, mediaIDs []string) (*Status, error) {
	form := url.Values{}
	form.Set("status", text)
	for _, id := range mediaIDs {
		form.Add("media_ids[]", id)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/statuses",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &status, nil
}
