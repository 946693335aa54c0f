package downloader

import (
	"fmt"

	"github.com/iconidentify/vidtoot/pkg/ytdlp"
)

// MaxPreferredSize is the size ceiling for format selection. Candidates at
// or under it are preferred; larger ones are only used when nothing fits.
const MaxPreferredSize = 30 * 1024 * 1024

// Candidate is a downloadable rendition: either a single muxed format or a
// video-only format paired with an audio-only one.
type Candidate struct {
	Selector string // yt-dlp -f argument
	Size     int64  // total bytes, summed for paired formats
}

// BuildCandidates assembles download candidates from the raw format list.
// Formats without a URL or a known size are discarded. Muxed formats stand
// alone; every remaining video-only format is paired with every audio-only
// format.
func BuildCandidates(formats []ytdlp.Format) []Candidate {
	var muxed, videos, audios []ytdlp.Format
	for _, f := range formats {
		if f.URL == "" || f.Size() <= 0 {
			continue
		}
		switch {
		case f.HasVideo() && f.HasAudio():
			muxed = append(muxed, f)
		case f.HasVideo():
			videos = append(videos, f)
		case f.HasAudio():
			audios = append(audios, f)
		}
	}

	var candidates []Candidate
	for _, f := range muxed {
		candidates = append(candidates, Candidate{Selector: f.ID, Size: f.Size()})
	}
	for _, v := range videos {
		for _, a := range audios {
			candidates = append(candidates, Candidate{
				Selector: fmt.Sprintf("%s+%s", v.ID, a.ID),
				Size:     v.Size() + a.Size(),
			})
		}
	}
	return candidates
}

// Select picks the largest candidate that fits MaxPreferredSize. When none
// fits, it returns the globally smallest so the download still succeeds.
// The second return value is false only when there are no candidates at all.
func Select(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	var best, smallest *Candidate
	for i := range candidates {
		c := &candidates[i]
		if smallest == nil || c.Size < smallest.Size {
			smallest = c
		}
		if c.Size <= MaxPreferredSize && (best == nil || c.Size > best.Size) {
			best = c
		}
	}

	if best != nil {
		return *best, true
	}
	return *smallest, true
}
