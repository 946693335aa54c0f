package enhancer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"path/filepath"

	"github.com/iconidentify/vidtoot/pkg/ffmpeg"
	"github.com/iconidentify/vidtoot/pkg/openrouter"
)

// videoToolkit is the slice of ffmpeg.Processor the enhancer uses.
type videoToolkit interface {
	Probe(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
	ExtractFrame(ctx context.Context, videoPath string, timestamp float64, outputPath string) error
}

// Enhancer samples still frames from a video and asks a vision model to
// describe what they show.
type Enhancer struct {
	video  videoToolkit
	llm    openrouter.Client
	model  string
	prompt string
	logger *slog.Logger
}

// New creates an enhancer using the given vision model and analysis prompt.
func New(video videoToolkit, llm openrouter.Client, model, prompt string, logger *slog.Logger) *Enhancer {
	return &Enhancer{
		video:  video,
		llm:    llm,
		model:  model,
		prompt: prompt,
		logger: logger,
	}
}

// FrameTimestamps returns the five sample points for a video of the given
// duration: just after the start, the quarter points, and just before the
// end (clamped so it never lands before the start sample).
func FrameTimestamps(duration float64) []float64 {
	return []float64{
		0.5,
		duration * 0.25,
		duration * 0.5,
		duration * 0.75,
		math.Max(duration-0.5, 0.5),
	}
}

// Analyze extracts five stills into workDir/frames and sends them to the
// vision model in a single multimodal message. The returned text is the
// model's description, verbatim.
func (e *Enhancer) Analyze(ctx context.Context, videoPath, workDir string) (string, error) {
	info, err := e.video.Probe(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("probe video: %w", err)
	}

	framesDir := filepath.Join(workDir, "frames")
	parts := []openrouter.ContentPart{openrouter.TextPart(e.prompt)}

	for i, ts := range FrameTimestamps(info.Duration) {
		framePath := filepath.Join(framesDir, fmt.Sprintf("frame_%02d.jpg", i))
		if err := e.video.ExtractFrame(ctx, videoPath, ts, framePath); err != nil {
			return "", err
		}
		e.logger.Info("extracted frame", "timestamp", fmt.Sprintf("%.1fs", ts), "path", framePath)

		dataURL, err := openrouter.EncodeImageFile(framePath)
		if err != nil {
			return "", fmt.Errorf("encode frame: %w", err)
		}
		parts = append(parts, openrouter.ImagePart(dataURL))
	}

	e.logger.Info("analyzing frames", "model", e.model, "frames", len(parts)-1)

	analysis, err := e.llm.Chat(ctx, e.model, []openrouter.Message{openrouter.UserParts(parts...)})
	if err != nil {
		var apiErr *openrouter.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			e.logger.Error("image analysis model not found, check the ENHANCE_MODEL setting",
				"model", e.model)
		}
		return "", err
	}
	return analysis, nil
}
