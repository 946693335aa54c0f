package summary

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MaxDescriptionLength caps the accessibility description on every
// extraction path.
const MaxDescriptionLength = 1400

var (
	// jsonPattern finds the first brace-delimited block carrying both
	// expected keys, tolerating prose around it.
	jsonPattern = regexp.MustCompile(`(?s)\{.*?"summary".*?"video_description".*?\}`)

	summaryMarker     = regexp.MustCompile(`(?i)Summary:\s*`)
	descriptionMarker = regexp.MustCompile(`(?i)Video Description for Visually Impaired:\s*`)
)

// Extract parses a model response into (summary, description). Responses are
// tried against an ordered chain of shapes: a JSON object with "summary" and
// "video_description" keys, then case-insensitive text markers, then a plain
// line split. The description is capped at 1400 characters on every path.
func Extract(raw string) (string, string) {
	if s, d, ok := extractJSON(raw); ok {
		return s, capDescription(d)
	}
	if s, d, ok := extractMarkers(raw); ok {
		return s, capDescription(d)
	}
	s, d := extractSplit(raw)
	return s, capDescription(d)
}

func extractJSON(raw string) (string, string, bool) {
	block := jsonPattern.FindString(raw)
	if block == "" {
		return "", "", false
	}

	var parsed struct {
		Summary          string `json:"summary"`
		VideoDescription string `json:"video_description"`
	}
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return "", "", false
	}
	return strings.TrimSpace(parsed.Summary), strings.TrimSpace(parsed.VideoDescription), true
}

func extractMarkers(raw string) (string, string, bool) {
	sumLoc := summaryMarker.FindStringIndex(raw)
	descLoc := descriptionMarker.FindStringIndex(raw)
	if sumLoc == nil && descLoc == nil {
		return "", "", false
	}

	var summary string
	switch {
	case sumLoc != nil && descLoc != nil && sumLoc[1] <= descLoc[0]:
		summary = strings.TrimSpace(raw[sumLoc[1]:descLoc[0]])
	case sumLoc != nil:
		summary = strings.TrimSpace(raw[sumLoc[1]:])
	default:
		summary = strings.TrimSpace(raw[:descLoc[0]])
	}

	var description string
	if descLoc != nil {
		description = strings.TrimSpace(raw[descLoc[1]:])
	} else {
		_, description = extractSplit(raw)
		if description == "" {
			description = summary
		}
	}
	return summary, description, true
}

// extractSplit halves the response by line count: the upper half becomes the
// summary, the lower half the description.
func extractSplit(raw string) (string, string) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	mid := len(lines) / 2

	summary := strings.TrimSpace(strings.Join(lines[:mid], "\n"))
	description := strings.TrimSpace(strings.Join(lines[mid:], "\n"))
	if description == "" {
		description = summary
	}
	return summary, description
}

func capDescription(s string) string {
	r := []rune(s)
	if len(r) <= MaxDescriptionLength {
		return s
	}
	return string(r[:MaxDescriptionLength-3]) + "..."
}
