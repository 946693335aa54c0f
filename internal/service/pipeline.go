package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/internal/publisher"
	"github.com/iconidentify/vidtoot/internal/summary"
)

// transcodeThreshold is the file size above which the video is re-encoded
// before upload.
const transcodeThreshold = 25 * 1024 * 1024

type videoDownloader interface {
	Download(ctx context.Context, url, dir string) (*domain.Video, error)
}

type transcriptResolver interface {
	Resolve(ctx context.Context, url, videoPath, workDir string, progress func(string)) (string, error)
}

type imageAnalyzer interface {
	Analyze(ctx context.Context, videoPath, workDir string) (string, error)
}

type historyRecorder interface {
	Upsert(uploader string, entry domain.HistoryEntry) ([]domain.HistoryEntry, error)
}

type contextGenerator interface {
	Generate(ctx context.Context, uploader string) string
}

type textSummarizer interface {
	Summarize(ctx context.Context, in summary.Input) (string, string, error)
}

type videoCompressor interface {
	Compress(ctx context.Context, inputPath, outputPath string) error
}

type statusPublisher interface {
	Publish(ctx context.Context, post publisher.Post) (string, error)
}

// Options control a single pipeline run.
type Options struct {
	// Enhance turns on frame extraction and image analysis.
	Enhance bool
	// DryRun skips the Mastodon post.
	DryRun bool
}

// Outcome is the result of one completed pipeline run.
type Outcome struct {
	Title       string
	Uploader    string
	Platform    domain.Platform
	Summary     string
	Description string
	Transcript  string
	Hashtags    []string
	SourceURL   string
	// StatusURL is empty on dry runs.
	StatusURL string
	DryRun    bool
}

// Pipeline runs the full processing sequence for one video URL: download,
// transcript, optional image analysis, history, context, summary, optional
// transcode, publish.
type Pipeline struct {
	downloader  videoDownloader
	transcripts transcriptResolver
	enhancer    imageAnalyzer
	history     historyRecorder
	contexts    contextGenerator
	summarizer  textSummarizer
	compressor  videoCompressor
	publisher   statusPublisher

	transcodeEnabled bool
	transcodeTimeout time.Duration
	logger           *slog.Logger
}

// NewPipeline wires the processing stages together.
func NewPipeline(
	dl videoDownloader,
	transcripts transcriptResolver,
	enhancer imageAnalyzer,
	history historyRecorder,
	contexts contextGenerator,
	summarizer textSummarizer,
	compressor videoCompressor,
	pub statusPublisher,
	transcodeEnabled bool,
	transcodeTimeout time.Duration,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		downloader:       dl,
		transcripts:      transcripts,
		enhancer:         enhancer,
		history:          history,
		contexts:         contexts,
		summarizer:       summarizer,
		compressor:       compressor,
		publisher:        pub,
		transcodeEnabled: transcodeEnabled,
		transcodeTimeout: transcodeTimeout,
		logger:           logger,
	}
}

// Run processes one video URL inside a throwaway workspace, reporting each
// stage through progress. The workspace is removed when the run ends,
// success or failure.
func (p *Pipeline) Run(ctx context.Context, url string, opts Options, progress func(string)) (*Outcome, error) {
	if progress == nil {
		progress = func(string) {}
	}
	logger := p.logger.With("url", url)

	progress("Starting video download...")
	workDir, err := os.MkdirTemp("", "vidtoot-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	progress("Downloading video...")
	video, err := p.downloader.Download(ctx, url, workDir)
	if err != nil {
		return nil, domain.NewPipelineError("download", err)
	}
	logger.Info("video downloaded",
		"title", video.Title,
		"uploader", video.Uploader,
		"platform", video.Platform,
	)

	progress("Extracting transcript...")
	transcript, err := p.transcripts.Resolve(ctx, url, video.Path, workDir, progress)
	if err != nil {
		return nil, domain.NewPipelineError("transcribe", err)
	}

	// Image analysis is best-effort: a failure is logged and the run
	// continues without it.
	var imageAnalysis string
	if opts.Enhance {
		progress("Analyzing images...")
		analysis, err := p.enhancer.Analyze(ctx, video.Path, workDir)
		if err != nil {
			logger.Warn("image analysis failed", "error", err)
		} else {
			imageAnalysis = analysis
		}
	}

	progress("Adding to database...")
	entry := domain.HistoryEntry{
		Title:            video.Title,
		Description:      video.Description,
		Hashtags:         video.Hashtags,
		Platform:         video.Platform,
		Transcript:       transcript,
		ImageRecognition: imageAnalysis,
	}
	if _, err := p.history.Upsert(video.Uploader, entry); err != nil {
		logger.Warn("could not record history entry", "error", err)
	}

	progress("Generating context summary...")
	contextSummary := p.contexts.Generate(ctx, video.Uploader)

	progress("Generating AI summary...")
	postSummary, description, err := p.summarizer.Summarize(ctx, summary.Input{
		Uploader:      video.Uploader,
		Description:   video.Description,
		Transcript:    transcript,
		ImageAnalysis: imageAnalysis,
		Context:       contextSummary,
	})
	if err != nil {
		return nil, domain.NewPipelineError("summarize", err)
	}

	finalPath, finalMIME := video.Path, video.MIMEType
	if p.transcodeEnabled {
		progress("Checking if transcoding needed...")
		finalPath, finalMIME, err = p.maybeTranscode(ctx, video.Path, video.MIMEType, workDir)
		if err != nil {
			return nil, domain.NewPipelineError("transcode", err)
		}
	}

	outcome := &Outcome{
		Title:       video.Title,
		Uploader:    video.Uploader,
		Platform:    video.Platform,
		Summary:     postSummary,
		Description: description,
		Transcript:  transcript,
		Hashtags:    video.Hashtags,
		SourceURL:   url,
		DryRun:      opts.DryRun,
	}

	if opts.DryRun {
		logger.Info("dry run, skipping mastodon post")
		return outcome, nil
	}

	progress("Posting to Mastodon...")
	statusURL, err := p.publisher.Publish(ctx, publisher.Post{
		Summary:     postSummary,
		VideoPath:   finalPath,
		SourceURL:   url,
		MIMEType:    finalMIME,
		Description: description,
	})
	if err != nil {
		return nil, domain.NewPipelineError("publish", err)
	}

	outcome.StatusURL = statusURL
	logger.Info("posted to mastodon", "status_url", statusURL)
	return outcome, nil
}

// maybeTranscode re-encodes the video to H.265 when it exceeds the upload
// size threshold, returning the path and MIME type to publish.
func (p *Pipeline) maybeTranscode(ctx context.Context, path, mimeType, workDir string) (string, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", "", fmt.Errorf("stat video: %w", err)
	}
	if info.Size() <= transcodeThreshold {
		return path, mimeType, nil
	}

	out := filepath.Join(workDir, "video_h265.mp4")
	p.logger.Info("re-encoding video",
		"path", path,
		"size_mb", fmt.Sprintf("%.2f", float64(info.Size())/(1024*1024)),
	)

	tctx, cancel := context.WithTimeout(ctx, p.transcodeTimeout)
	defer cancel()
	if err := p.compressor.Compress(tctx, path, out); err != nil {
		return "", "", fmt.Errorf("re-encode video: %w", err)
	}

	p.logger.Info("re-encoded video", "path", out)
	return out, "video/mp4", nil
}
