package summarize

import "errors"

var (
	// ErrEngineRequired is returned by New when no engine is given.
	ErrEngineRequired = errors.New("summary engine is required")

	// ErrTextRequired is returned by SummarizeRequest for empty input.
	ErrTextRequired = errors.New("text is required")
)
