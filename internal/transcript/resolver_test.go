package transcript

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/pkg/ffmpeg"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseSubtitle_VTT(t *testing.T) {
	content := `WEBVTT

NOTE this is a comment

STYLE
::cue(b) { color: white }

00:00:01.000 --> 00:00:04.000
Hello <b>world</b>, this is

00:00:04.000 --> 00:00:08.000
a <c.colorE5E5E5>test</c> caption
`

	got := ParseSubtitle(content)
	want := "Hello world, this is a test caption"
	if got != want {
		t.Errorf("ParseSubtitle = %q, want %q", got, want)
	}
}

func TestParseSubtitle_SRT(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
First line

2
00:00:04,000 --> 00:00:08,000
Second line
`

	got := ParseSubtitle(content)
	want := "First line Second line"
	if got != want {
		t.Errorf("ParseSubtitle = %q, want %q", got, want)
	}
}

func TestParseSubtitle_OnlyMarkup(t *testing.T) {
	if got := ParseSubtitle("<v Speaker></v>\n<i></i>\n"); got != "" {
		t.Errorf("ParseSubtitle = %q, want empty", got)
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"42", true},
		{"0", true},
		{"", false},
		{"12a", false},
		{"a12", false},
	}
	for _, tt := range tests {
		if got := isAllDigits(tt.s); got != tt.want {
			t.Errorf("isAllDigits(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

type fakeSubtitles struct {
	files []string
	err   error
	dir   string
}

func (f *fakeSubtitles) DownloadSubtitles(ctx context.Context, url, dir string) ([]string, error) {
	f.dir = dir
	return f.files, f.err
}

type fakeProber struct {
	info *ffmpeg.VideoInfo
	err  error
}

func (p *fakeProber) Probe(ctx context.Context, path string) (*ffmpeg.VideoInfo, error) {
	return p.info, p.err
}

type fakeSpeech struct {
	text   string
	err    error
	called bool
}

func (s *fakeSpeech) TranscribeFile(ctx context.Context, path string) (string, error) {
	s.called = true
	return s.text, s.err
}

func writeSubtitle(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve_PlatformTranscript(t *testing.T) {
	dir := t.TempDir()
	sub := writeSubtitle(t, dir, "subs.en.vtt",
		"WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nplatform words\n")

	subs := &fakeSubtitles{files: []string{sub}}
	speech := &fakeSpeech{text: "speech words"}
	r := NewResolver(subs, &fakeProber{info: &ffmpeg.VideoInfo{HasAudio: true}}, speech, testLogger())

	var progress []string
	got, err := r.Resolve(context.Background(), "https://example.com/v", "/tmp/video.mp4", dir,
		func(s string) { progress = append(progress, s) })
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got != "platform words" {
		t.Errorf("transcript = %q", got)
	}
	if speech.called {
		t.Error("speech transcription ran despite platform transcript")
	}
	if len(progress) != 1 || progress[0] != "Using platform-provided transcript" {
		t.Errorf("progress = %v", progress)
	}
}

func TestResolve_EmptySubtitlesFallThrough(t *testing.T) {
	dir := t.TempDir()
	// Parses to empty text, so the scan moves past it.
	empty := writeSubtitle(t, dir, "subs.en.vtt", "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\n")
	full := writeSubtitle(t, dir, "subs.en-US.vtt",
		"WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nsecond file words\n")

	subs := &fakeSubtitles{files: []string{empty, full}}
	r := NewResolver(subs, &fakeProber{}, nil, testLogger())

	got, err := r.Resolve(context.Background(), "u", "v", dir, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "second file words" {
		t.Errorf("transcript = %q", got)
	}
}

func TestResolve_SpeechFallback(t *testing.T) {
	subs := &fakeSubtitles{} // no subtitle files
	speech := &fakeSpeech{text: "spoken text"}
	r := NewResolver(subs, &fakeProber{info: &ffmpeg.VideoInfo{HasAudio: true}}, speech, testLogger())

	var progress []string
	got, err := r.Resolve(context.Background(), "u", "v", t.TempDir(),
		func(s string) { progress = append(progress, s) })
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got != "spoken text" {
		t.Errorf("transcript = %q", got)
	}
	if len(progress) != 1 || progress[0] != "Transcribing with Whisper..." {
		t.Errorf("progress = %v", progress)
	}
}

func TestResolve_SubtitleDownloadErrorDegrades(t *testing.T) {
	subs := &fakeSubtitles{err: errors.New("network down")}
	speech := &fakeSpeech{text: "spoken text"}
	r := NewResolver(subs, &fakeProber{info: &ffmpeg.VideoInfo{HasAudio: true}}, speech, testLogger())

	got, err := r.Resolve(context.Background(), "u", "v", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "spoken text" {
		t.Errorf("transcript = %q", got)
	}
}

func TestResolve_NoAudioSentinel(t *testing.T) {
	subs := &fakeSubtitles{}
	speech := &fakeSpeech{text: "should not run"}
	r := NewResolver(subs, &fakeProber{info: &ffmpeg.VideoInfo{HasAudio: false}}, speech, testLogger())

	got, err := r.Resolve(context.Background(), "u", "v", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != domain.TranscriptUnavailable {
		t.Errorf("transcript = %q, want sentinel", got)
	}
	if speech.called {
		t.Error("speech transcription ran for audioless video")
	}
}

func TestResolve_ProbeErrorStillTranscribes(t *testing.T) {
	subs := &fakeSubtitles{}
	speech := &fakeSpeech{text: "spoken anyway"}
	r := NewResolver(subs, &fakeProber{err: errors.New("probe failed")}, speech, testLogger())

	got, err := r.Resolve(context.Background(), "u", "v", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "spoken anyway" {
		t.Errorf("transcript = %q", got)
	}
}

func TestResolve_SilentContainerQuirk(t *testing.T) {
	subs := &fakeSubtitles{}
	speech := &fakeSpeech{err: errors.New(
		"API error (status 400): Failed to load audio: file does not contain any stream")}
	r := NewResolver(subs, &fakeProber{info: &ffmpeg.VideoInfo{HasAudio: true}}, speech, testLogger())

	got, err := r.Resolve(context.Background(), "u", "v", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != domain.TranscriptUnavailable {
		t.Errorf("transcript = %q, want sentinel", got)
	}
}

func TestResolve_SpeechErrorPropagates(t *testing.T) {
	subs := &fakeSubtitles{}
	speech := &fakeSpeech{err: errors.New("API error (status 500): upstream broke")}
	r := NewResolver(subs, &fakeProber{info: &ffmpeg.VideoInfo{HasAudio: true}}, speech, testLogger())

	_, err := r.Resolve(context.Background(), "u", "v", t.TempDir(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestResolve_UnconfiguredSpeechSentinel(t *testing.T) {
	subs := &fakeSubtitles{}
	r := NewResolver(subs, &fakeProber{info: &ffmpeg.VideoInfo{HasAudio: true}}, nil, testLogger())

	got, err := r.Resolve(context.Background(), "u", "v", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != domain.TranscriptUnavailable {
		t.Errorf("transcript = %q, want sentinel", got)
	}
}

func TestResolve_WhitespaceTranscriptGetsSentinel(t *testing.T) {
	subs := &fakeSubtitles{}
	speech := &fakeSpeech{text: "   \n  "}
	r := NewResolver(subs, &fakeProber{info: &ffmpeg.VideoInfo{HasAudio: true}}, speech, testLogger())

	got, err := r.Resolve(context.Background(), "u", "v", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != domain.TranscriptUnavailable {
		t.Errorf("transcript = %q, want sentinel", got)
	}
}
