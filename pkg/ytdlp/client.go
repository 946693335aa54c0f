package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Client shells out to the local yt-dlp binary.
type Client struct {
	binaryPath string
}

// NewClient creates a new client. It will attempt to find yt-dlp in PATH.
func NewClient() (*Client, error) {
	binaryPath, err := exec.LookPath("yt-dlp")
	if err != nil {
		return nil, fmt.Errorf("yt-dlp not found in PATH: %w", err)
	}
	return &Client{binaryPath: binaryPath}, nil
}

// Info is the subset of yt-dlp's single-JSON dump the pipeline consumes.
type Info struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Uploader    string   `json:"uploader"`
	Channel     string   `json:"channel"`
	Author      string   `json:"author"`
	Duration    float64  `json:"duration"`
	Formats     []Format `json:"formats"`
}

// Format describes one downloadable rendition of a video.
type Format struct {
	ID             string  `json:"format_id"`
	URL            string  `json:"url"`
	Ext            string  `json:"ext"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

// Size returns the best-known size in bytes, preferring the exact value
// over yt-dlp's bitrate-derived estimate.
func (f Format) Size() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return int64(f.FilesizeApprox)
}

// HasVideo reports whether the format carries a video stream.
func (f Format) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

// HasAudio reports whether the format carries an audio stream.
func (f Format) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// Inspect fetches video metadata and the format list without downloading.
func (c *Client) Inspect(ctx context.Context, url string) (*Info, error) {
	cmd := exec.CommandContext(ctx, c.binaryPath, "-J", "--no-warnings", url)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp inspect: %w: %s", err, lastLine(stderr.String()))
	}

	var info Info
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return &info, nil
}

// Download fetches the video using the given format selector and writes it
// into dir as video.<ext>. It returns the path of the produced file.
func (c *Client) Download(ctx context.Context, url, formatSpec, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binaryPath,
		"-f", formatSpec,
		"-o", filepath.Join(dir, "video.%(ext)s"),
		"--merge-output-format", "mp4",
		"--no-warnings",
		url,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp download: %w: %s", err, lastLine(stderr.String()))
	}

	path, err := findVideoFile(dir)
	if err != nil {
		return "", err
	}
	return path, nil
}

// DownloadSubtitles fetches platform and auto-generated English subtitles
// into dir without downloading the video. It returns the paths of any
// subtitle files produced, which may be empty.
func (c *Client) DownloadSubtitles(ctx context.Context, url, dir string) ([]string, error) {
	cmd := exec.CommandContext(ctx, c.binaryPath,
		"--write-subs",
		"--write-auto-subs",
		"--skip-download",
		"--sub-langs", "en,en-US,en-GB",
		"-o", filepath.Join(dir, "subs"),
		"--no-warnings",
		url,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp subtitles: %w: %s", err, lastLine(stderr.String()))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "subs*"))
	if err != nil {
		return nil, fmt.Errorf("scan subtitle files: %w", err)
	}

	var files []string
	for _, m := range matches {
		if isSubtitleFile(m) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// findVideoFile locates the video.* file yt-dlp produced in dir, skipping
// partial-download droppings.
func findVideoFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "video.*"))
	if err != nil {
		return "", fmt.Errorf("scan download dir: %w", err)
	}

	var candidates []string
	for _, m := range matches {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".part", ".ytdl", ".temp":
			continue
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no video file produced in %s", dir)
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

func isSubtitleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt", ".srt", ".ass", ".ttml":
		return true
	}
	return false
}

// lastLine returns the final non-empty line of command output, which is
// where yt-dlp puts its actual error message.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// IsAvailable checks if yt-dlp is available on the system.
func IsAvailable() bool {
	_, err := exec.LookPath("yt-dlp")
	return err == nil
}

// Version returns the yt-dlp version string.
func Version() (string, error) {
	cmd := exec.Command("yt-dlp", "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
