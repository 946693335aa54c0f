package domain

// TranscriptUnavailable is the sentinel stored and prompted in place of an
// empty transcript, so model prompts never see an empty string.
const TranscriptUnavailable = "[No audio/transcript available]"

// HistoryEntry is one processed video in an account's rolling history log.
// Field names are the on-disk contract for <data>/<account>/database.json.
type HistoryEntry struct {
	Date             string   `json:"date"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Hashtags         []string `json:"hashtags"`
	Platform         Platform `json:"platform"`
	Transcript       string   `json:"transcript"`
	ImageRecognition string   `json:"image_recognition,omitempty"`
}

// Matches reports whether this entry records the same video, keyed by
// (title, platform).
func (e HistoryEntry) Matches(title string, platform Platform) bool {
	return e.Title == title && e.Platform == platform
}

// ContextSummary is the rolling per-account digest, fully replaced on every
// regeneration. Field names are the on-disk contract for context.json.
type ContextSummary struct {
	GeneratedAt    string `json:"generated_at"`
	Summary        string `json:"summary"`
	BasedOnEntries int    `json:"based_on_entries"`
}
