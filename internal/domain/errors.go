package domain

import "errors"

// Domain errors.
var (
	// ErrJobNotFound is returned when a job id is not in the registry.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoVideoFile is returned when no downloaded video file can be
	// located in the run workspace.
	ErrNoVideoFile = errors.New("no video file found in workspace")

	// ErrMastodonNotConfigured is returned on the first publish attempt
	// when the instance URL or access token is missing.
	ErrMastodonNotConfigured = errors.New("mastodon base URL or access token not configured")

	// ErrMediaTimeout is returned when uploaded media never leaves the
	// processing state before the configured deadline.
	ErrMediaTimeout = errors.New("media processing timed out")
)

// PipelineError wraps an error with the pipeline stage it came from.
type PipelineError struct {
	Op  string
	Err error
}

func (e *PipelineError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(op string, err error) *PipelineError {
	return &PipelineError{Op: op, Err: err}
}
