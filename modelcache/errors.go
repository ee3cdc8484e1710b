package modelcache

import "errors"

var (
	// ErrLoaderRequired is returned by New when no loader is given.
	ErrLoaderRequired = errors.New("model loader is required")

	// ErrLoadFailed wraps construction failures.
	ErrLoadFailed = errors.New("failed to load model")

	// ErrLoaderPanic reports a loader that panicked.
	ErrLoaderPanic = errors.New("model loader panicked")
)
