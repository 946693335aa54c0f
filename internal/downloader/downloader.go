package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/pkg/ytdlp"
)

// YtDlpDownloader implements Downloader on top of the yt-dlp binary.
type YtDlpDownloader struct {
	fetcher videoFetcher
	prober  containerProber
	logger  *slog.Logger
}

// NewYtDlpDownloader creates a new downloader.
func NewYtDlpDownloader(fetcher videoFetcher, prober containerProber, logger *slog.Logger) *YtDlpDownloader {
	return &YtDlpDownloader{
		fetcher: fetcher,
		prober:  prober,
		logger:  logger,
	}
}

// Download inspects the available formats, picks one via Select, fetches it
// into dir and returns the video with metadata filled in. A failed download
// of the chosen format falls back to yt-dlp's own "best" selector once.
func (d *YtDlpDownloader) Download(ctx context.Context, url, dir string) (*domain.Video, error) {
	info, err := d.fetcher.Inspect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("inspect video: %w", err)
	}

	candidates := BuildCandidates(info.Formats)
	chosen, ok := Select(candidates)

	var path string
	if ok {
		d.logger.Info("selected format",
			"format", chosen.Selector,
			"size_mb", chosen.Size/(1024*1024),
		)
		path, err = d.fetcher.Download(ctx, url, chosen.Selector, dir)
		if err != nil {
			d.logger.Warn("selected format failed, falling back to best",
				"format", chosen.Selector,
				"error", err,
			)
			path, err = d.fetcher.Download(ctx, url, "best", dir)
		}
	} else {
		d.logRawFormats(info)
		path, err = d.fetcher.Download(ctx, url, "best", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}

	path = d.normalizeExtension(ctx, path)

	uploader := info.Uploader
	if uploader == "" {
		uploader = info.Channel
	}
	if uploader == "" {
		uploader = info.Author
	}

	return &domain.Video{
		Path:        path,
		Title:       info.Title,
		Description: info.Description,
		Uploader:    uploader,
		Hashtags:    domain.ExtractHashtags(info.Title, info.Description),
		Platform:    domain.DetectPlatform(url),
		MIMEType:    mimeTypeForFile(path),
	}, nil
}

// logRawFormats dumps the format list when no candidate could be built, so
// the operator can see why selection came up empty.
func (d *YtDlpDownloader) logRawFormats(info *ytdlp.Info) {
	d.logger.Warn("no directly downloadable formats found, falling back to best")
	for _, f := range info.Formats {
		hasURL := "no"
		if f.URL != "" {
			hasURL = "yes"
		}
		d.logger.Info("available format",
			"format_id", f.ID,
			"vcodec", f.VCodec,
			"acodec", f.ACodec,
			"filesize", f.Filesize,
			"url", hasURL,
		)
	}
}

// normalizeExtension fixes the .NA extension yt-dlp produces for some
// platforms by probing the container and renaming accordingly. Failures
// here are not fatal: the original path is kept.
func (d *YtDlpDownloader) normalizeExtension(ctx context.Context, path string) string {
	if !strings.HasSuffix(path, ".NA") {
		return path
	}

	newExt := ".mp4"
	if info, err := d.prober.Probe(ctx, path); err != nil {
		d.logger.Warn("could not detect container format", "path", path, "error", err)
	} else {
		newExt = extensionForFormat(info.FormatName)
	}

	newPath := strings.TrimSuffix(path, ".NA") + newExt
	if err := os.Rename(path, newPath); err != nil {
		d.logger.Warn("could not rename download", "path", path, "error", err)
		return path
	}

	d.logger.Info("renamed download", "from", path, "to", newPath)
	return newPath
}

// extensionForFormat maps an ffprobe format_name to a file extension.
// Order matters: matroska containers report "matroska,webm".
func extensionForFormat(formatName string) string {
	switch {
	case strings.Contains(formatName, "mp4"), strings.Contains(formatName, "mov"):
		return ".mp4"
	case strings.Contains(formatName, "webm"):
		return ".webm"
	case strings.Contains(formatName, "mkv"):
		return ".mkv"
	default:
		return ".mp4"
	}
}

// mimeTypeForFile derives the upload MIME type from the final container
// extension.
func mimeTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".mov":
		return "video/quicktime"
	default:
		return "video/mp4"
	}
}
