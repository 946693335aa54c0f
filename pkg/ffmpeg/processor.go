package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Processor runs ffmpeg and ffprobe against local video files.
type Processor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewProcessor creates a new processor.
// It will attempt to find ffmpeg and ffprobe in PATH.
func NewProcessor() (*Processor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Processor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}, nil
}

// VideoInfo contains metadata about a video file.
type VideoInfo struct {
	Duration   float64 // Duration in seconds
	Width      int
	Height     int
	HasAudio   bool
	AudioCodec string
	VideoCodec string
	FormatName string
	FileSize   int64
}

// Probe extracts metadata from a video file.
func (p *Processor) Probe(ctx context.Context, videoPath string) (*VideoInfo, error) {
	stat, err := os.Stat(videoPath)
	if err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return nil, err
	}
	info.FileSize = stat.Size()
	return info, nil
}

// parseProbeOutput decodes ffprobe -print_format json output.
func parseProbeOutput(output []byte) (*VideoInfo, error) {
	type ffprobeFormat struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	}
	type ffprobeStream struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	}
	type ffprobeOutput struct {
		Format  ffprobeFormat   `json:"format"`
		Streams []ffprobeStream `json:"streams"`
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &VideoInfo{
		FormatName: parsed.Format.FormatName,
	}

	if parsed.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			info.Duration = dur
		}
	}

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		case "video":
			if info.VideoCodec == "" {
				info.VideoCodec = s.CodecName
			}
			if info.Width == 0 && s.Width > 0 {
				info.Width = s.Width
			}
			if info.Height == 0 && s.Height > 0 {
				info.Height = s.Height
			}
		}
	}

	return info, nil
}

// ExtractFrame grabs a single frame at the given timestamp and writes it
// as a JPEG to outputPath.
func (p *Processor) ExtractFrame(ctx context.Context, videoPath string, timestamp float64, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Seek before opening the input so extraction stays fast on long videos.
	cmd := exec.CommandContext(ctx, p.ffmpegPath,
		"-ss", fmt.Sprintf("%.2f", timestamp),
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "5",
		"-y",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("extract frame at %.2fs: %w: %s", timestamp, err, lastLine(stderr.String()))
	}

	// A timestamp past the end of the stream can exit 0 without writing a file.
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("extract frame at %.2fs: no output written", timestamp)
	}
	return nil
}

// Compress re-encodes a video to H.265 with the audio stream copied through.
func (p *Processor) Compress(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, p.ffmpegPath,
		"-i", inputPath,
		"-c:v", "libx265",
		"-crf", "35",
		"-c:a", "copy",
		"-y",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("compress video: %w: %s", err, lastLine(stderr.String()))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("compress video: no output written")
	}
	return nil
}

// lastLine returns the final non-empty line of command output, which is
// where ffmpeg puts its actual error message.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// IsAvailable checks if ffmpeg and ffprobe are available on the system.
func IsAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	if err != nil {
		return false
	}
	_, err = exec.LookPath("ffprobe")
	return err == nil
}

// Version returns the ffmpeg version string.
func Version() (string, error) {
	cmd := exec.Command("ffmpeg", "-version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		return strings.TrimSpace(lines[0]), nil
	}
	return "unknown", nil
}
