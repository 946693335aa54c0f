// Package client talks to the vidtoot server's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a vidtoot API client.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. Credentials are optional;
// when both are empty no Authorization header is sent.
func New(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Job mirrors the job record served by the API.
type Job struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	Enhance   bool    `json:"enhance"`
	DryRun    bool    `json:"dry_run"`
	Status    string  `json:"status"`
	Progress  string  `json:"progress"`
	CreatedAt string  `json:"created_at"`
	Result    *Result `json:"result"`
	Error     *string `json:"error"`
}

// Result is the outcome of a completed job.
type Result struct {
	Title            string   `json:"title"`
	Uploader         string   `json:"uploader"`
	Platform         string   `json:"platform"`
	Summary          string   `json:"summary"`
	VideoDescription string   `json:"video_description"`
	Transcript       string   `json:"transcript"`
	Hashtags         []string `json:"hashtags"`
	SourceURL        string   `json:"source_url"`
	MastodonURL      *string  `json:"mastodon_url"`
	DryRun           bool     `json:"dry_run"`
}

// Stats is the slice of /health/stats the TUI displays.
type Stats struct {
	Version     string         `json:"version"`
	UptimeHuman string         `json:"uptime_human"`
	Jobs        map[string]int `json:"jobs"`
	DiskUsedPct float64        `json:"disk_used_pct"`
}

// Jobs fetches all jobs, newest first.
func (c *Client) Jobs(ctx context.Context) ([]Job, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/jobs", nil)
	if err != nil {
		return nil, err
	}

	var jobs []Job
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}
	return jobs, nil
}

// Submit queues a video for processing and returns the new job ID.
func (c *Client) Submit(ctx context.Context, url string, enhance, dryRun bool) (string, error) {
	payload := map[string]any{
		"url":     url,
		"enhance": enhance,
		"dry_run": dryRun,
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/api/process", payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse submit response: %w", err)
	}
	return resp.JobID, nil
}

// Stats fetches server statistics.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/health/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("parse stats: %w", err)
	}
	return &stats, nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "vidtoot-tui")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error responses carry {"error": "..."}.
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("vidtoot api (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("vidtoot api (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return raw, nil
}
