package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/internal/service"
)

// Runner executes the processing pipeline for one URL.
type Runner interface {
	Run(ctx context.Context, url string, opts service.Options, progress func(string)) (*service.Outcome, error)
}

// Manager owns the in-memory job registry and spawns one worker goroutine
// per submission. There is no queue and no concurrency cap: every accepted
// job starts immediately, and records are kept for the process lifetime.
type Manager struct {
	runner Runner
	logger *slog.Logger

	mu   sync.RWMutex
	jobs map[domain.JobID]*domain.Job

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	now   func() time.Time
	newID func() domain.JobID
}

// NewManager returns a Manager that executes jobs with the given runner.
func NewManager(runner Runner, logger *slog.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		runner:  runner,
		logger:  logger,
		jobs:    make(map[domain.JobID]*domain.Job),
		baseCtx: ctx,
		cancel:  cancel,
		now:     time.Now,
		newID:   func() domain.JobID { return domain.JobID(uuid.New().String()) },
	}
}

// Submit registers a new job and starts processing it in the background,
// returning its id immediately.
func (m *Manager) Submit(url string, enhance, dryRun bool) domain.JobID {
	job := domain.NewJob(m.newID(), url, enhance, dryRun, m.now())

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.logger.Info("job created",
		"job_id", job.ID,
		"url", url,
		"enhance", enhance,
		"dry_run", dryRun,
	)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.process(job)
	}()

	return job.ID
}

// Get returns a copy of the job record.
func (m *Manager) Get(id domain.JobID) (*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job.Clone(), nil
}

// List returns copies of all job records, newest first.
func (m *Manager) List() []*domain.Job {
	m.mu.RLock()
	jobs := make([]*domain.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// CountByStatus returns how many jobs are in each status.
func (m *Manager) CountByStatus() map[domain.JobStatus]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[domain.JobStatus]int, 4)
	for _, job := range m.jobs {
		counts[job.Status]++
	}
	return counts
}

// Close cancels the context under in-flight jobs and waits for them to
// finish, up to the ctx deadline.
func (m *Manager) Close(ctx context.Context) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("job manager shutdown: %w", ctx.Err())
	}
}

// process runs the pipeline for one job, mirroring every stage message into
// the job record. URL, Enhance and DryRun are immutable after creation, so
// they can be read without the lock; status mutation goes through m.mu.
func (m *Manager) process(job *domain.Job) {
	opts := service.Options{Enhance: job.Enhance, DryRun: job.DryRun}

	progress := func(msg string) {
		m.mu.Lock()
		job.MarkProcessing(msg)
		m.mu.Unlock()
	}

	outcome, err := m.runner.Run(m.baseCtx, job.URL, opts, progress)
	if err != nil {
		m.logger.Error("job failed", "job_id", job.ID, "error", err)
		m.mu.Lock()
		job.MarkFailed(err.Error())
		m.mu.Unlock()
		return
	}

	terminal := "Posted to Mastodon successfully"
	if outcome.DryRun {
		terminal = "Dry run completed successfully"
	}

	m.mu.Lock()
	job.MarkCompleted(resultFromOutcome(outcome), terminal)
	m.mu.Unlock()

	m.logger.Info("job completed", "job_id", job.ID, "dry_run", outcome.DryRun)
}

// resultFromOutcome converts a pipeline outcome into the job result payload.
// MastodonURL stays null on dry runs.
func resultFromOutcome(o *service.Outcome) *domain.Result {
	r := &domain.Result{
		Title:            o.Title,
		Uploader:         o.Uploader,
		Platform:         o.Platform,
		Summary:          o.Summary,
		VideoDescription: o.Description,
		Transcript:       o.Transcript,
		Hashtags:         o.Hashtags,
		SourceURL:        o.SourceURL,
		DryRun:           o.DryRun,
	}
	if !o.DryRun {
		u := o.StatusURL
		r.MastodonURL = &u
	}
	return r
}
