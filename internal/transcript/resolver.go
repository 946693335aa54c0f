package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/pkg/ffmpeg"
	"github.com/iconidentify/vidtoot/pkg/whisper"
)

// subtitleFetcher is the slice of ytdlp.Client the resolver uses.
type subtitleFetcher interface {
	DownloadSubtitles(ctx context.Context, url, dir string) ([]string, error)
}

// audioProber checks a video file for an audio stream.
type audioProber interface {
	Probe(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}

// Resolver obtains a transcript for a video, preferring platform subtitles
// over speech transcription.
type Resolver struct {
	subtitles subtitleFetcher
	prober    audioProber
	speech    whisper.Client // nil when no transcription API is configured
	logger    *slog.Logger
}

// NewResolver creates a transcript resolver. speech may be nil, in which
// case videos without platform subtitles resolve to the unavailable
// sentinel.
func NewResolver(subtitles subtitleFetcher, prober audioProber, speech whisper.Client, logger *slog.Logger) *Resolver {
	return &Resolver{
		subtitles: subtitles,
		prober:    prober,
		speech:    speech,
		logger:    logger,
	}
}

// Resolve walks the transcript chain: platform subtitles first, then speech
// transcription, then the unavailable sentinel. progress, if non-nil,
// receives a status line when a chain stage is entered.
func (r *Resolver) Resolve(ctx context.Context, url, videoPath, workDir string, progress func(string)) (string, error) {
	if progress == nil {
		progress = func(string) {}
	}

	text := r.fromPlatform(ctx, url, workDir)
	if strings.TrimSpace(text) != "" {
		progress("Using platform-provided transcript")
	} else {
		progress("Transcribing with Whisper...")
		var err error
		text, err = r.fromSpeech(ctx, videoPath)
		if err != nil {
			return "", err
		}
	}

	if strings.TrimSpace(text) == "" {
		text = domain.TranscriptUnavailable
	}
	return text, nil
}

// fromPlatform downloads and parses platform subtitles. Every failure here
// degrades to "no platform transcript": the chain moves on.
func (r *Resolver) fromPlatform(ctx context.Context, url, workDir string) string {
	r.logger.Info("checking for platform-provided transcripts")

	subtitleDir := filepath.Join(workDir, "subtitles")
	if err := os.MkdirAll(subtitleDir, 0755); err != nil {
		r.logger.Warn("could not create subtitle dir", "error", err)
		return ""
	}

	files, err := r.subtitles.DownloadSubtitles(ctx, url, subtitleDir)
	if err != nil {
		r.logger.Warn("failed to extract platform transcript", "error", err)
		return ""
	}

	for _, file := range files {
		text, err := parseSubtitleFile(file)
		if err != nil {
			r.logger.Warn("error parsing subtitle file", "path", file, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			r.logger.Info("extracted transcript from platform", "path", file)
			return text
		}
	}

	r.logger.Info("no platform transcripts found")
	return ""
}

// fromSpeech transcribes the video's audio track. A clean "no audio stream"
// answer short-circuits to an empty transcript; a failed probe proceeds to
// the API anyway since the stream data may just be unusual.
func (r *Resolver) fromSpeech(ctx context.Context, videoPath string) (string, error) {
	info, err := r.prober.Probe(ctx, videoPath)
	if err != nil {
		r.logger.Warn("could not detect audio stream, attempting transcription anyway", "error", err)
	} else if !info.HasAudio {
		r.logger.Warn("video has no audio stream, cannot transcribe")
		return "", nil
	}

	if r.speech == nil {
		r.logger.Warn("transcription API not configured, skipping speech transcription")
		return "", nil
	}

	text, err := r.speech.TranscribeFile(ctx, videoPath)
	if err != nil {
		// The API reports silent containers as a load failure. Treat that
		// as "no transcript" rather than a job failure.
		msg := err.Error()
		if strings.Contains(msg, "Failed to load audio") &&
			strings.Contains(msg, "does not contain any stream") {
			r.logger.Warn("video contains no decodable audio stream")
			return "", nil
		}
		return "", fmt.Errorf("transcribe video: %w", err)
	}
	return text, nil
}
