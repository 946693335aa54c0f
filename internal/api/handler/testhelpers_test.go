package handler

import (
	"io"
	"log/slog"
	"time"

	"github.com/iconidentify/vidtoot/internal/domain"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// submission records the arguments of one Submit call.
type submission struct {
	url     string
	enhance bool
	dryRun  bool
}

// fakeJobService is a test implementation of the job manager surface.
type fakeJobService struct {
	submitted []submission
	nextID    domain.JobID
	jobs      map[domain.JobID]*domain.Job
	list      []*domain.Job
}

func newFakeJobService() *fakeJobService {
	return &fakeJobService{
		nextID: "job-1",
		jobs:   make(map[domain.JobID]*domain.Job),
	}
}

func (f *fakeJobService) Submit(url string, enhance, dryRun bool) domain.JobID {
	f.submitted = append(f.submitted, submission{url: url, enhance: enhance, dryRun: dryRun})
	return f.nextID
}

func (f *fakeJobService) Get(id domain.JobID) (*domain.Job, error) {
	if job, ok := f.jobs[id]; ok {
		return job, nil
	}
	return nil, domain.ErrJobNotFound
}

func (f *fakeJobService) List() []*domain.Job {
	return f.list
}

// fakeJobCounter is a test implementation of the stats surface.
type fakeJobCounter struct {
	counts map[domain.JobStatus]int
}

func (f *fakeJobCounter) CountByStatus() map[domain.JobStatus]int {
	return f.counts
}

// newJobAt builds a pending job with a fixed creation time.
func newJobAt(id, url string, created time.Time) *domain.Job {
	return domain.NewJob(domain.JobID(id), url, false, false, created)
}
