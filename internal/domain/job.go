package domain

import (
	"time"
)

// JobID is a unique identifier for a processing job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job tracks one asynchronous pipeline run from submission to completion.
// Records live in memory for the process lifetime and are never evicted.
type Job struct {
	ID        JobID
	URL       string
	Enhance   bool
	DryRun    bool
	Status    JobStatus
	Progress  string
	CreatedAt time.Time
	Result    *Result
	Error     string
}

// NewJob creates a pending job for the given video URL.
func NewJob(id JobID, url string, enhance, dryRun bool, createdAt time.Time) *Job {
	return &Job{
		ID:        id,
		URL:       url,
		Enhance:   enhance,
		DryRun:    dryRun,
		Status:    JobStatusPending,
		Progress:  "Job created",
		CreatedAt: createdAt,
	}
}

// MarkProcessing moves the job into the processing state with a stage message.
func (j *Job) MarkProcessing(progress string) {
	j.Status = JobStatusProcessing
	j.Progress = progress
}

// MarkCompleted records a successful run.
func (j *Job) MarkCompleted(result *Result, progress string) {
	j.Status = JobStatusCompleted
	j.Progress = progress
	j.Result = result
}

// MarkFailed records a failed run with the error message.
func (j *Job) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.Error = errMsg
	j.Progress = "Failed: " + errMsg
}

// Clone returns a copy safe to hand to readers while the job keeps mutating.
func (j *Job) Clone() *Job {
	c := *j
	if j.Result != nil {
		r := *j.Result
		if j.Result.MastodonURL != nil {
			u := *j.Result.MastodonURL
			r.MastodonURL = &u
		}
		r.Hashtags = append([]string(nil), j.Result.Hashtags...)
		c.Result = &r
	}
	return &c
}

// Result is the payload attached to a completed job.
type Result struct {
	Title            string   `json:"title"`
	Uploader         string   `json:"uploader"`
	Platform         Platform `json:"platform"`
	Summary          string   `json:"summary"`
	VideoDescription string   `json:"video_description"`
	Transcript       string   `json:"transcript"`
	Hashtags         []string `json:"hashtags"`
	SourceURL        string   `json:"source_url"`
	// MastodonURL is null when publishing was skipped.
	MastodonURL *string `json:"mastodon_url"`
	// DryRun is present only on runs that skipped publishing.
	DryRun bool `json:"dry_run,omitempty"`
}
