package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/iconidentify/vidtoot/internal/domain"
)

// maxEntries caps each account log; the oldest entries are evicted on save.
const maxEntries = 25

// Store persists per-account processing history under <root>/<account>/.
// Each account owns two files: database.json (the rolling entry log) and
// context.json (the model-maintained context summary). Files are shared
// state without cross-process locking; concurrent jobs for the same account
// can interleave writes.
type Store struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore returns a Store rooted at the given data directory.
func NewStore(root string, logger *slog.Logger) *Store {
	return &Store{root: root, logger: logger, now: time.Now}
}

func (s *Store) accountDir(uploader string) string {
	return filepath.Join(s.root, uploader)
}

func (s *Store) databasePath(uploader string) string {
	return filepath.Join(s.accountDir(uploader), "database.json")
}

func (s *Store) contextPath(uploader string) string {
	return filepath.Join(s.accountDir(uploader), "context.json")
}

// Load returns the account's history log. A missing, unreadable or corrupt
// file yields an empty log, never an error.
func (s *Store) Load(uploader string) []domain.HistoryEntry {
	data, err := os.ReadFile(s.databasePath(uploader))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not load history", "uploader", uploader, "error", err)
		}
		return nil
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("could not parse history", "uploader", uploader, "error", err)
		return nil
	}
	return entries
}

// Save writes the account's log, keeping only the most recent entries.
func (s *Store) Save(uploader string, entries []domain.HistoryEntry) error {
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	if err := os.MkdirAll(s.accountDir(uploader), 0755); err != nil {
		return fmt.Errorf("create account directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(s.databasePath(uploader), data, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	s.logger.Info("history saved", "uploader", uploader, "entries", len(entries))
	return nil
}

// Upsert records a processed video, stamping it with the current time.
// An existing entry for the same (title, platform) pair is replaced in
// place; otherwise the entry is appended. Returns the saved log.
func (s *Store) Upsert(uploader string, entry domain.HistoryEntry) ([]domain.HistoryEntry, error) {
	entry.Date = s.now().Format(time.RFC3339)

	entries := s.Load(uploader)

	idx := -1
	for i := range entries {
		if entries[i].Matches(entry.Title, entry.Platform) {
			idx = i
			break
		}
	}

	if idx >= 0 {
		s.logger.Info("updating history entry", "uploader", uploader, "title", entry.Title)
		entries[idx] = entry
	} else {
		s.logger.Info("adding history entry", "uploader", uploader, "title", entry.Title)
		entries = append(entries, entry)
	}

	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	if err := s.Save(uploader, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadContext returns the account's rolling context summary, or "" when
// none has been generated yet or the file is unreadable.
func (s *Store) LoadContext(uploader string) string {
	data, err := os.ReadFile(s.contextPath(uploader))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not load context", "uploader", uploader, "error", err)
		}
		return ""
	}

	var cs domain.ContextSummary
	if err := json.Unmarshal(data, &cs); err != nil {
		s.logger.Warn("could not parse context", "uploader", uploader, "error", err)
		return ""
	}
	return cs.Summary
}

// SaveContext replaces the account's rolling context summary, recording the
// number of history entries it was derived from.
func (s *Store) SaveContext(uploader, summary string, basedOn int) error {
	if err := os.MkdirAll(s.accountDir(uploader), 0755); err != nil {
		return fmt.Errorf("create account directory: %w", err)
	}

	cs := domain.ContextSummary{
		GeneratedAt:    s.now().Format(time.RFC3339),
		Summary:        summary,
		BasedOnEntries: basedOn,
	}
	data, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	if err := os.WriteFile(s.contextPath(uploader), data, 0644); err != nil {
		return fmt.Errorf("write context: %w", err)
	}

	s.logger.Info("context summary saved", "uploader", uploader)
	return nil
}
