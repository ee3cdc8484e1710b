package ai

import (
	"context"

	"github.com/poiesic/minutes/core"
)

// Recognizer is a constructed speech-recognition engine for one model
// configuration. Instances are read-only once built and must be safe for
// concurrent use by any number of pipeline runs.
type Recognizer interface {
	// Transcribe decodes the audio file at audioPath. It blocks for the
	// duration of inference and returns an error for unreadable or corrupt
	// audio. Cancellation of ctx aborts decoding.
	Transcribe(ctx context.Context, audioPath string, opts DecodeOptions) (*Recognition, error)

	// Key reports the configuration the recognizer was built for.
	Key() core.ModelKey
}

// ModelLoader constructs recognizers. Load is expensive: it may read a
// multi-gigabyte model from disk or initialize an accelerator.
type ModelLoader interface {
	Load(ctx context.Context, key core.ModelKey) (Recognizer, error)
}

// SummaryEngine produces an extractive or abstractive summary of text.
// Implementations must be thread-safe for concurrent use.
type SummaryEngine interface {
	// Summarize returns at most sentences sentences summarizing text, using
	// the stop-word and stemming conventions of profile. An empty result
	// with a nil error means the engine found nothing worth keeping.
	Summarize(ctx context.Context, text string, profile Profile, sentences int) (string, error)
}

// DecodeOptions are the per-call decoding parameters. The model
// configuration itself is fixed by the recognizer.
type DecodeOptions struct {
	Language                string // empty means auto-detect
	BeamSize                int
	BatchSize               int
	UseBatchedMode          bool
	WordTimestamps          bool
	VADFilter               bool
	VAD                     core.VADParameters
	ConditionOnPreviousText bool
}

// DecodeOptionsFrom extracts the decoding parameters from job options.
func DecodeOptionsFrom(opts core.TranscriptionOptions) DecodeOptions {
	return DecodeOptions{
		Language:                opts.Language,
		BeamSize:                opts.BeamSize,
		BatchSize:               opts.BatchSize,
		UseBatchedMode:          opts.UseBatchedMode,
		WordTimestamps:          opts.WordTimestamps,
		VADFilter:               opts.VADFilter,
		VAD:                     opts.VAD,
		ConditionOnPreviousText: opts.ConditionOnPreviousText,
	}
}

// Recognition is the raw output of one Transcribe call.
type Recognition struct {
	Segments            []core.TranscriptSegment
	Language            string
	LanguageProbability float64
}

// Provider aggregates the speech and summarization services for
// convenient initialization and lifecycle management.
type Provider interface {
	// Loader returns the recognizer factory handed to the model cache.
	Loader() ModelLoader

	// Summarizer returns the summarization engine.
	Summarizer() SummaryEngine

	// Close releases resources held by the provider and its services.
	Close() error
}

// NewProvider bundles a loader and a summary engine. The returned provider's
// Close is a no-op; engines with resources should be wrapped separately.
func NewProvider(loader ModelLoader, engine SummaryEngine) Provider {
	return &provider{loader: loader, engine: engine}
}

type provider struct {
	loader ModelLoader
	engine SummaryEngine
}

func (p *provider) Loader() ModelLoader       { return p.loader }
func (p *provider) Summarizer() SummaryEngine { return p.engine }
func (p *provider) Close() error              { return nil }
