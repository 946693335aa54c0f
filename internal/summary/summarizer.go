package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iconidentify/vidtoot/pkg/openrouter"
)

// Input carries everything the summarization prompt is composed from.
// ImageAnalysis and Context are optional; empty values are omitted from the
// prompt entirely.
type Input struct {
	Uploader      string
	Description   string
	Transcript    string
	ImageAnalysis string
	Context       string
}

// Summarizer turns a processed video's text inputs into a post summary and
// an accessibility description via the model gateway.
type Summarizer struct {
	llm          openrouter.Client
	model        string
	systemPrompt string
	userPrompt   string
	logger       *slog.Logger
}

// New returns a Summarizer. userPrompt, when non-empty, is prepended to the
// transcript as a per-deployment instruction.
func New(llm openrouter.Client, model, systemPrompt, userPrompt string, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		llm:          llm,
		model:        model,
		systemPrompt: systemPrompt,
		userPrompt:   userPrompt,
		logger:       logger,
	}
}

// Summarize sends the composed prompt to the model and extracts the
// (summary, description) pair from its response.
func (s *Summarizer) Summarize(ctx context.Context, in Input) (string, string, error) {
	content := s.composeUserContent(in)

	s.logger.Info("generating summary", "model", s.model, "uploader", in.Uploader)

	raw, err := s.llm.Chat(ctx, s.model, []openrouter.Message{
		openrouter.SystemMessage(s.systemPrompt),
		openrouter.UserMessage(content),
	})
	if err != nil {
		var apiErr *openrouter.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			s.logger.Error("summary model not found, check the OPENROUTER_MODEL setting", "model", s.model)
		}
		return "", "", fmt.Errorf("summarize: %w", err)
	}

	summary, description := Extract(raw)
	return summary, description, nil
}

func (s *Summarizer) composeUserContent(in Input) string {
	transcript := in.Transcript
	if s.userPrompt != "" {
		transcript = s.userPrompt + "\n\n" + in.Transcript
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Account name: %s\nDescription: %s\nTranscript:\n%s",
		in.Uploader, in.Description, transcript)
	if in.ImageAnalysis != "" {
		fmt.Fprintf(&b, "\n\nImage Recognition:\n%s", in.ImageAnalysis)
	}
	if in.Context != "" {
		fmt.Fprintf(&b, "\n\nContext:\n%s", in.Context)
	}
	return b.String()
}
