package jobs

import (
	"errors"

	"github.com/poiesic/minutes/core"
)

var (
	// ErrNotFound indicates no job exists with the given id.
	ErrNotFound = core.ErrJobNotFound

	// ErrTerminal indicates a write to a job that already completed or failed.
	ErrTerminal = errors.New("job is in a terminal state")

	// ErrInvalidTransition indicates a status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrResultRequired indicates Complete was called without a result.
	ErrResultRequired = errors.New("completed job requires a result")
)
