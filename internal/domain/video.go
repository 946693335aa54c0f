package domain

import (
	"regexp"
	"strings"
)

// Platform identifies the social network a video came from.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformUnknown   Platform = "unknown"
)

// String returns the string representation of the Platform.
func (p Platform) String() string {
	return string(p)
}

// DetectPlatform classifies a video URL by its host.
func DetectPlatform(rawURL string) Platform {
	u := strings.ToLower(rawURL)
	switch {
	case strings.Contains(u, "tiktok.com"):
		return PlatformTikTok
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"):
		return PlatformYouTube
	case strings.Contains(u, "instagram.com"):
		return PlatformInstagram
	default:
		return PlatformUnknown
	}
}

// Video is an acquired asset plus the metadata every downstream stage needs.
// The file at Path lives in a per-run workspace and is deleted with it.
type Video struct {
	Path        string
	Title       string
	Description string
	Uploader    string
	Hashtags    []string
	Platform    Platform
	MIMEType    string
}

var hashtagPattern = regexp.MustCompile(`#\w+`)

// ExtractHashtags collects #tags from the title and description,
// deduplicated in first-occurrence order.
func ExtractHashtags(title, description string) []string {
	matches := hashtagPattern.FindAllString(title+" "+description, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		tags = append(tags, m)
	}
	return tags
}
