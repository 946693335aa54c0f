package downloader

import (
	"context"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/pkg/ffmpeg"
	"github.com/iconidentify/vidtoot/pkg/ytdlp"
)

// Downloader acquires a video and its metadata into a working directory.
type Downloader interface {
	// Download fetches the video behind url into dir and returns it with
	// its metadata filled in.
	Download(ctx context.Context, url, dir string) (*domain.Video, error)
}

// videoFetcher is the slice of ytdlp.Client the downloader uses.
type videoFetcher interface {
	Inspect(ctx context.Context, url string) (*ytdlp.Info, error)
	Download(ctx context.Context, url, formatSpec, dir string) (string, error)
}

// containerProber detects the container format of a downloaded file.
type containerProber interface {
	Probe(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}
