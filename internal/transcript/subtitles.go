package transcript

import (
	"os"
	"regexp"
	"strings"
)

var markupPattern = regexp.MustCompile(`<[^>]+>`)

// ParseSubtitle extracts spoken text from VTT- or SRT-style subtitle
// content: headers, cue indices, timing lines and inline markup are
// dropped, and what remains is joined with single spaces.
func ParseSubtitle(content string) string {
	var textLines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" ||
			strings.HasPrefix(line, "WEBVTT") ||
			strings.HasPrefix(line, "NOTE") ||
			strings.HasPrefix(line, "STYLE") ||
			strings.HasPrefix(line, "::cue") ||
			strings.Contains(line, "-->") ||
			isAllDigits(line) {
			continue
		}

		clean := strings.TrimSpace(markupPattern.ReplaceAllString(line, ""))
		if clean != "" {
			textLines = append(textLines, clean)
		}
	}
	return strings.Join(textLines, " ")
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseSubtitleFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ParseSubtitle(string(content)), nil
}
