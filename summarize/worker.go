package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/minutes/ai"
)

const (
	// MinTextLength is the trimmed character count below which the engine is
	// not invoked.
	MinTextLength = 100

	// MinWordCount is the word count below which SummarizeRequest declines.
	MinWordCount = 30

	// DefaultSentences is the summary length in sentences.
	DefaultSentences = 3

	// DefaultPoolSize is the worker count of an owned pool.
	DefaultPoolSize = 2

	// DefaultTimeout bounds one engine call.
	DefaultTimeout = 2 * time.Minute
)

// Sentinel results. These are returned as the summary text itself.
const (
	SentinelTooShort      = "Text is too short to summarize."
	SentinelTooFewWords   = "Text is too short to summarize effectively."
	SentinelEmpty         = "Could not produce a summary from this text."
	SentinelFailurePrefix = "Summarization error: "
)

// IsSentinel reports whether summary is one of the placeholder results
// rather than engine output.
func IsSentinel(summary string) bool {
	switch summary {
	case SentinelTooShort, SentinelTooFewWords, SentinelEmpty:
		return true
	}
	return strings.HasPrefix(summary, SentinelFailurePrefix)
}

// Worker wraps a blocking SummaryEngine behind a bounded pool.
type Worker struct {
	engine    ai.SummaryEngine
	pool      *ants.Pool
	ownsPool  bool
	poolSize  int
	sentences int
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Worker.
type Option func(*Worker) error

// WithPoolSize sets the size of the worker's own pool.
// Default is DefaultPoolSize. Ignored when WithPool is used.
func WithPoolSize(size int) Option {
	return func(w *Worker) error {
		if size < 1 {
			size = 1
		}
		w.poolSize = size
		return nil
	}
}

// WithPool runs summaries on a shared pool instead of an owned one. The
// caller keeps ownership and must release it.
func WithPool(pool *ants.Pool) Option {
	return func(w *Worker) error {
		w.pool = pool
		return nil
	}
}

// WithSentences sets the summary length.
// Default is DefaultSentences.
func WithSentences(n int) Option {
	return func(w *Worker) error {
		if n < 1 {
			return fmt.Errorf("sentences must be at least 1: %d", n)
		}
		w.sentences = n
		return nil
	}
}

// WithTimeout bounds each engine call. Zero disables the bound.
// Default is DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(w *Worker) error {
		w.timeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// New creates a Worker around engine.
func New(engine ai.SummaryEngine, opts ...Option) (*Worker, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}

	w := &Worker{
		engine:    engine,
		poolSize:  DefaultPoolSize,
		sentences: DefaultSentences,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.logger = w.logger.With("component", "summarize")

	if w.pool == nil {
		pool, err := ants.NewPool(w.poolSize, ants.WithPanicHandler(func(p any) {
			w.logger.Error("summarization task panicked", "panic", p)
		}))
		if err != nil {
			return nil, err
		}
		w.pool = pool
		w.ownsPool = true
	}
	return w, nil
}

type outcome struct {
	summary string
	err     error
}

// Summarize condenses text using the profile for lang. It never returns an
// error; every failure is folded into a sentinel string.
func (w *Worker) Summarize(ctx context.Context, text, lang string) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < MinTextLength {
		return SentinelTooShort
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	profile := ai.ProfileForLanguage(lang)
	done := make(chan outcome, 1)
	err := w.pool.Submit(func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		summary, err := w.engine.Summarize(ctx, trimmed, profile, w.sentences)
		done <- outcome{summary: summary, err: err}
	})
	if err != nil {
		w.logger.Error("failed to schedule summarization", "err", err)
		return SentinelFailurePrefix + err.Error()
	}

	select {
	case res := <-done:
		if res.err != nil {
			w.logger.Warn("summarization failed", "profile", profile, "err", res.err)
			return SentinelFailurePrefix + res.err.Error()
		}
		if strings.TrimSpace(res.summary) == "" {
			return SentinelEmpty
		}
		return strings.TrimSpace(res.summary)
	case <-ctx.Done():
		w.logger.Warn("summarization abandoned", "profile", profile, "err", ctx.Err())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && w.timeout > 0 {
			return fmt.Sprintf("%stimed out after %s", SentinelFailurePrefix, w.timeout)
		}
		return SentinelFailurePrefix + ctx.Err().Error()
	}
}

// SummarizeRequest serves direct summarization requests. Empty text is a
// caller error; text under MinWordCount words gets SentinelTooFewWords.
func (w *Worker) SummarizeRequest(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrTextRequired
	}
	if len(strings.Fields(text)) < MinWordCount {
		return SentinelTooFewWords, nil
	}
	return w.Summarize(ctx, text, lang), nil
}

// Running returns the number of busy workers.
func (w *Worker) Running() int {
	return w.pool.Running()
}

// Release frees the worker's own pool. A shared pool is left alone.
func (w *Worker) Release() {
	if w.ownsPool && w.pool != nil {
		w.pool.Release()
	}
}
