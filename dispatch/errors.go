package dispatch

import (
	"errors"

	"github.com/poiesic/minutes/pipeline"
	"github.com/poiesic/minutes/summarize"
)

var (
	// ErrJobStoreRequired indicates that a job store was not provided.
	ErrJobStoreRequired = errors.New("job store is required")

	// ErrSubmitterRequired indicates that a run submitter was not provided.
	ErrSubmitterRequired = errors.New("run submitter is required")

	// ErrSummarizerRequired indicates that a summarizer was not provided.
	ErrSummarizerRequired = errors.New("summarizer is required")

	// ErrFileTooLarge indicates an upload over the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyUpload indicates an upload with no content.
	ErrEmptyUpload = errors.New("uploaded file is empty")

	// ErrMeetingNotFound indicates a recording for an unknown meeting.
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrMeetingsUnavailable indicates no meeting store is configured.
	ErrMeetingsUnavailable = errors.New("meeting store is not configured")

	// ErrInvalidForm indicates a form field that cannot be converted to its type.
	ErrInvalidForm = errors.New("invalid form field")

	// ErrQueueFull indicates the pipeline cannot accept more work.
	ErrQueueFull = pipeline.ErrQueueFull

	// ErrTextRequired indicates a summarize request without text.
	ErrTextRequired = summarize.ErrTextRequired
)
