package api

import (
	"errors"
	"net/http"

	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/dispatch"
	"github.com/poiesic/minutes/pipeline"
	"github.com/poiesic/minutes/storage"
)

var (
	// ErrDispatcherRequired indicates that a dispatcher was not provided.
	ErrDispatcherRequired = errors.New("dispatcher is required")

	// ErrJobStoreRequired indicates that a job store was not provided.
	ErrJobStoreRequired = errors.New("job store is required")

	// ErrTranscriptsUnavailable indicates no transcript repository is configured.
	ErrTranscriptsUnavailable = errors.New("transcript store is not configured")

	// ErrFileRequired indicates a multipart request without a "file" part.
	ErrFileRequired = errors.New("file field is required")

	// ErrBadRequest marks malformed query parameters and bodies.
	ErrBadRequest = errors.New("bad request")
)

// statusFor maps an error onto an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, dispatch.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrInvalidOptions),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidMeetingStatus),
		errors.Is(err, dispatch.ErrInvalidForm),
		errors.Is(err, dispatch.ErrTextRequired),
		errors.Is(err, dispatch.ErrEmptyUpload),
		errors.Is(err, storage.ErrInvalidRecord),
		errors.Is(err, ErrFileRequired),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrJobNotFound),
		errors.Is(err, dispatch.ErrMeetingNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrQueueFull),
		errors.Is(err, pipeline.ErrClosed),
		errors.Is(err, dispatch.ErrMeetingsUnavailable),
		errors.Is(err, ErrTranscriptsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
