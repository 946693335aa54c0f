package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/pkg/openrouter"
)

// historyWindow is how many recent entries are rendered into the prompt when
// regenerating an account's context summary.
const historyWindow = 10

// Preview lengths bound the prompt size per entry.
const (
	transcriptPreviewLen = 500
	imagePreviewLen      = 300
)

// ContextBuilder folds an account's recent history and its previous context
// summary into an updated rolling summary via the model gateway.
type ContextBuilder struct {
	store  *Store
	llm    openrouter.Client
	model  string
	prompt string
	logger *slog.Logger
}

// NewContextBuilder returns a ContextBuilder using the given model and
// system prompt.
func NewContextBuilder(store *Store, llm openrouter.Client, model, prompt string, logger *slog.Logger) *ContextBuilder {
	return &ContextBuilder{
		store:  store,
		llm:    llm,
		model:  model,
		prompt: prompt,
		logger: logger,
	}
}

// Generate rebuilds the account's context summary from its recent history
// and persists it. An empty history skips the model call entirely. Failures
// are logged and yield "": context is a soft input and never aborts a job.
func (b *ContextBuilder) Generate(ctx context.Context, uploader string) string {
	entries := b.store.Load(uploader)
	if len(entries) == 0 {
		b.logger.Info("no history entries, skipping context generation", "uploader", uploader)
		return ""
	}

	previous := b.store.LoadContext(uploader)
	content := RenderHistory(entries, previous)

	b.logger.Info("generating context summary",
		"uploader", uploader,
		"model", b.model,
		"entries", len(entries),
		"has_previous", previous != "")

	summary, err := b.llm.Chat(ctx, b.model, []openrouter.Message{
		openrouter.SystemMessage(b.prompt),
		openrouter.UserMessage(content),
	})
	if err != nil {
		b.logger.Warn("context generation failed", "uploader", uploader, "error", err)
		return ""
	}

	if err := b.store.SaveContext(uploader, summary, len(entries)); err != nil {
		b.logger.Warn("could not save context", "uploader", uploader, "error", err)
	}
	return summary
}

// RenderHistory renders the most recent entries into the prompt body sent to
// the context model. Only the last 10 entries are included, relabeled 1..N;
// the previous summary, when present, is appended verbatim so the model can
// build on it.
func RenderHistory(entries []domain.HistoryEntry, previous string) string {
	if len(entries) > historyWindow {
		entries = entries[len(entries)-historyWindow:]
	}

	var b strings.Builder
	b.WriteString("Recent video history:\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "Video %d:\n", i+1)
		fmt.Fprintf(&b, "Date: %s\n", e.Date)
		fmt.Fprintf(&b, "Platform: %s\n", e.Platform)
		fmt.Fprintf(&b, "Title: %s\n", e.Title)
		fmt.Fprintf(&b, "Description: %s\n", e.Description)
		fmt.Fprintf(&b, "Hashtags: %s\n", strings.Join(e.Hashtags, ", "))
		fmt.Fprintf(&b, "Transcript: %s\n", preview(e.Transcript, transcriptPreviewLen))
		if e.ImageRecognition != "" {
			fmt.Fprintf(&b, "Image Recognition: %s\n", preview(e.ImageRecognition, imagePreviewLen))
		}
		b.WriteString("\n---\n\n")
	}

	if previous != "" {
		fmt.Fprintf(&b, "Previous context summary:\n%s\n\n---\n\n", previous)
	}
	return b.String()
}

// preview returns at most n runes of s, with an ellipsis when truncated.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
