package whisper

import "errors"

var (
	// ErrBinaryNotFound indicates the whisper.cpp executable is not on PATH.
	ErrBinaryNotFound = errors.New("whisper binary not found")

	// ErrModelNotFound indicates no ggml file exists for the requested size.
	ErrModelNotFound = errors.New("whisper model file not found")

	// ErrUnsupportedKey indicates a model key the loader cannot serve.
	ErrUnsupportedKey = errors.New("unsupported model configuration")

	// ErrUnreadableAudio indicates the input could not be decoded.
	ErrUnreadableAudio = errors.New("unreadable audio")

	// ErrMalformedOutput indicates whisper.cpp produced JSON we could not parse.
	ErrMalformedOutput = errors.New("malformed whisper output")
)
