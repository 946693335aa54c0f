package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/pkg/mastodon"
)

// pollInterval is the fixed cadence for media status checks.
const pollInterval = 2 * time.Second

// Post is everything needed to publish one processed video.
type Post struct {
	Summary     string
	VideoPath   string
	SourceURL   string
	MIMEType    string
	Description string
}

// Publisher uploads processed videos to a Mastodon instance and posts the
// status that references them.
type Publisher struct {
	client  mastodon.Client
	timeout time.Duration
	poll    time.Duration
	logger  *slog.Logger
}

// New returns a Publisher that waits at most mediaTimeout for the instance
// to finish encoding an upload.
func New(client mastodon.Client, mediaTimeout time.Duration, logger *slog.Logger) *Publisher {
	return &Publisher{
		client:  client,
		timeout: mediaTimeout,
		poll:    pollInterval,
		logger:  logger,
	}
}

// Publish uploads the video, waits for the instance to finish processing
// it, then posts the summary with a source link and the media attached.
// Returns the public URL of the new status. A missing client (Mastodon not
// configured) fails here, at first use.
func (p *Publisher) Publish(ctx context.Context, post Post) (string, error) {
	if p.client == nil {
		return "", domain.ErrMastodonNotConfigured
	}

	p.logger.Info("uploading video", "path", post.VideoPath, "mime_type", post.MIMEType)
	media, err := p.client.UploadMedia(ctx, post.VideoPath, post.MIMEType, post.Description)
	if err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	p.logger.Info("video uploaded", "media_id", media.ID)

	ready, err := p.waitForMedia(ctx, media.ID)
	if err != nil {
		return "", err
	}
	p.logger.Info("media processed", "media_id", media.ID, "url", ready.URL)

	text := post.Summary + "\n\nSource: " + post.SourceURL
	status, err := p.client.PostStatus(ctx, text, []string{media.ID})
	if err != nil {
		return "", fmt.Errorf("post status: %w", err)
	}
	p.logger.Info("status posted", "url", status.URL)
	return status.URL, nil
}

// waitForMedia polls the media attachment until it has a URL and is no
// longer marked processing, or the deadline passes. There is no retry after
// a timeout.
func (p *Publisher) waitForMedia(ctx context.Context, mediaID string) (*mastodon.Media, error) {
	deadline := time.Now().Add(p.timeout)
	for time.Now().Before(deadline) {
		media, err := p.client.GetMedia(ctx, mediaID)
		if err != nil {
			return nil, fmt.Errorf("poll media status: %w", err)
		}
		if media.URL != "" && !media.Processing {
			return media, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.poll):
		}
	}

	p.logger.Warn("media processing timed out, consider increasing MASTODON_MEDIA_TIMEOUT",
		"media_id", mediaID)
	return nil, fmt.Errorf("media processing timed out for media_id=%s: %w",
		mediaID, domain.ErrMediaTimeout)
}
