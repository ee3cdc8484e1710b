// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/minutes/ai"
	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/storage"
	"github.com/poiesic/minutes/summarize"
)

const (
	// DefaultMaxRuns bounds the runs admitted at once. Admitted runs wait
	// on the compute pool for a worker.
	DefaultMaxRuns = 64

	// DefaultPersistAttempts is the number of tries for each durable write.
	DefaultPersistAttempts = 3

	// DefaultPersistDelay is the first backoff between durable write tries.
	DefaultPersistDelay = 200 * time.Millisecond
)

// JobRecorder receives the state transitions of the jobs a coordinator runs.
type JobRecorder interface {
	MarkProcessing(id string) error
	Complete(id string, result *core.TranscriptionResult, summary string) error
	Fail(id string, msg string) error
}

// ModelSource hands out shared recognizers.
type ModelSource interface {
	Acquire(ctx context.Context, key core.ModelKey) (ai.Recognizer, error)
}

// Summarizer condenses transcript text. It never fails; problems come back
// as sentinel text.
type Summarizer interface {
	Summarize(ctx context.Context, text, lang string) string
}

// Run describes one job to drive to a terminal state.
type Run struct {
	JobID     string
	AudioPath string
	Options   core.TranscriptionOptions

	// MeetingID, when set, makes the run write a transcript artifact and
	// update the meeting record.
	MeetingID string

	// KeepAudio leaves AudioPath in place after the run. Uploads are
	// temporary and removed; files named on the command line are not.
	KeepAudio bool
}

// Coordinator drives transcription jobs through transcribe, summarize and
// persist, and removes the uploaded audio afterwards.
type Coordinator struct {
	jobs        JobRecorder
	models      ModelSource
	summarizer  Summarizer
	transcripts storage.TranscriptRepository
	meetings    storage.MeetingRepository

	computePool     *ants.Pool
	ownsComputePool bool
	computePoolSize int
	runPool         *ants.Pool
	maxRuns         int

	transcribeTimeout time.Duration
	summarizeTimeout  time.Duration
	persistAttempts   int
	persistDelay      time.Duration

	wg     sync.WaitGroup
	closed atomic.Bool
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithComputePool runs blocking inference on a shared pool. The caller
// keeps ownership and must release it after the coordinator.
func WithComputePool(pool *ants.Pool) Option {
	return func(c *Coordinator) error {
		c.computePool = pool
		return nil
	}
}

// WithComputePoolSize sets the size of the coordinator's own compute pool.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithComputePoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		c.computePoolSize = size
		return nil
	}
}

// WithMaxRuns sets how many runs may be admitted at once.
// Default is DefaultMaxRuns.
func WithMaxRuns(n int) Option {
	return func(c *Coordinator) error {
		if n < 1 {
			return fmt.Errorf("max runs must be at least 1: %d", n)
		}
		c.maxRuns = n
		return nil
	}
}

// WithTranscribeTimeout bounds model acquisition plus inference.
// Zero disables the bound.
func WithTranscribeTimeout(d time.Duration) Option {
	return func(c *Coordinator) error {
		c.transcribeTimeout = d
		return nil
	}
}

// WithSummarizeTimeout bounds the summarization call. Zero disables the bound.
func WithSummarizeTimeout(d time.Duration) Option {
	return func(c *Coordinator) error {
		c.summarizeTimeout = d
		return nil
	}
}

// WithTranscriptRepository enables transcript artifact writes.
func WithTranscriptRepository(repo storage.TranscriptRepository) Option {
	return func(c *Coordinator) error {
		c.transcripts = repo
		return nil
	}
}

// WithMeetingRepository enables meeting runs.
func WithMeetingRepository(repo storage.MeetingRepository) Option {
	return func(c *Coordinator) error {
		c.meetings = repo
		return nil
	}
}

// WithPersistRetry sets the retry budget for durable writes.
// Default is DefaultPersistAttempts starting at DefaultPersistDelay.
func WithPersistRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Coordinator) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		c.persistAttempts = attempts
		c.persistDelay = baseDelay
		return nil
	}
}

// WithClock overrides the time source used for artifact timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a coordinator.
func New(jobs JobRecorder, models ModelSource, summarizer Summarizer, opts ...Option) (*Coordinator, error) {
	if jobs == nil {
		return nil, ErrJobStoreRequired
	}
	if models == nil {
		return nil, ErrModelSourceRequired
	}
	if summarizer == nil {
		return nil, ErrSummarizerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	c := &Coordinator{
		jobs:            jobs,
		models:          models,
		summarizer:      summarizer,
		computePoolSize: poolSize,
		maxRuns:         DefaultMaxRuns,
		persistAttempts: DefaultPersistAttempts,
		persistDelay:    DefaultPersistDelay,
		now:             func() time.Time { return time.Now().UTC() },
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "pipeline")

	panicHandler := ants.WithPanicHandler(func(p any) {
		c.logger.Error("pipeline task panicked", "panic", p)
	})

	if c.computePool == nil {
		pool, err := ants.NewPool(c.computePoolSize, panicHandler)
		if err != nil {
			return nil, err
		}
		c.computePool = pool
		c.ownsComputePool = true
	}

	runPool, err := ants.NewPool(c.maxRuns, ants.WithNonblocking(true), panicHandler)
	if err != nil {
		c.Release()
		return nil, err
	}
	c.runPool = runPool

	return c, nil
}

// Submit schedules run and returns without waiting for it. The caller
// still owns run.AudioPath if Submit returns an error.
func (c *Coordinator) Submit(run Run) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.checkRun(run); err != nil {
		return err
	}

	c.wg.Add(1)
	err := c.runPool.Submit(func() {
		defer c.wg.Done()
		_ = c.Execute(context.Background(), run)
	})
	if err != nil {
		c.wg.Done()
		switch {
		case errors.Is(err, ants.ErrPoolOverload):
			return fmt.Errorf("%w: %d runs in flight", ErrQueueFull, c.maxRuns)
		case errors.Is(err, ants.ErrPoolClosed):
			return ErrClosed
		}
		return err
	}
	c.logger.Debug("run submitted", "job", run.JobID, "meeting", run.MeetingID)
	return nil
}

// Execute drives run to a terminal state on the calling goroutine, using
// the compute pool for blocking stages. The returned error is the one
// recorded on the job, or nil when the job completed.
func (c *Coordinator) Execute(ctx context.Context, run Run) (err error) {
	logger := c.logger.With("job", run.JobID)
	if run.MeetingID != "" {
		logger = logger.With("meeting", run.MeetingID)
	}
	if !run.KeepAudio {
		defer c.cleanup(run.AudioPath, logger)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("run panicked", "panic", p)
			err = fmt.Errorf("internal error: %v", p)
			c.fail(ctx, run, err, logger)
		}
	}()

	if err := c.checkRun(run); err != nil {
		c.fail(ctx, run, err, logger)
		return err
	}

	if err := c.jobs.MarkProcessing(run.JobID); err != nil {
		logger.Warn("job cannot start", "err", err)
		return err
	}
	logger.Info("job processing", "model", run.Options.Key().String(), "file", run.AudioPath)

	start := time.Now()
	recognition, err := c.transcribe(ctx, run)
	if err != nil {
		logger.Error("transcription failed", "err", err)
		c.fail(ctx, run, err, logger)
		return err
	}

	result := &core.TranscriptionResult{
		Segments:            recognition.Segments,
		Language:            recognition.Language,
		LanguageProbability: recognition.LanguageProbability,
		ProcessingTime:      time.Since(start).Seconds(),
		AudioDuration:       core.AudioDuration(recognition.Segments),
	}
	if result.Segments == nil {
		result.Segments = []core.TranscriptSegment{}
	}

	lang := run.Options.Language
	if lang == "" {
		lang = result.Language
	}
	summary := c.summarize(ctx, run, result.Text(), lang)

	if err := c.persist(ctx, run, result, summary, logger); err != nil {
		logger.Error("persist failed", "err", err)
		c.fail(ctx, run, err, logger)
		return err
	}

	if err := c.jobs.Complete(run.JobID, result, summary); err != nil {
		logger.Warn("job result dropped", "err", err)
		return err
	}
	logger.Info("job completed",
		"segments", len(result.Segments),
		"language", result.Language,
		"audio_duration", result.AudioDuration,
		"processing_time", result.ProcessingTime)
	return nil
}

// ActiveRuns returns the number of runs currently admitted.
func (c *Coordinator) ActiveRuns() int {
	if c.runPool == nil {
		return 0
	}
	return c.runPool.Running()
}

// Wait blocks until every submitted run has finished or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release stops accepting runs and frees the coordinator's pools. Call
// Wait first to let in-flight runs finish.
func (c *Coordinator) Release() {
	c.closed.Store(true)
	if c.runPool != nil {
		c.runPool.Release()
	}
	if c.ownsComputePool && c.computePool != nil {
		c.computePool.Release()
	}
}

func (c *Coordinator) checkRun(run Run) error {
	if run.MeetingID != "" && (c.meetings == nil || c.transcripts == nil) {
		return &StageError{Stage: StagePersist, Err: ErrMeetingStoresRequired}
	}
	if err := core.ValidateOptions(&run.Options); err != nil {
		return &StageError{Stage: StageTranscribe, Err: err}
	}
	return nil
}

type transcription struct {
	recognition *ai.Recognition
	err         error
}

// transcribe acquires the model and decodes the audio on the compute pool.
func (c *Coordinator) transcribe(ctx context.Context, run Run) (*ai.Recognition, error) {
	if c.transcribeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.transcribeTimeout)
		defer cancel()
	}

	done := make(chan transcription, 1)
	err := c.computePool.Submit(func() {
		defer func() {
			if p := recover(); p != nil {
				done <- transcription{err: fmt.Errorf("recognizer panicked: %v", p)}
			}
		}()
		recognizer, err := c.models.Acquire(ctx, run.Options.Key())
		if err != nil {
			done <- transcription{err: err}
			return
		}
		recognition, err := recognizer.Transcribe(ctx, run.AudioPath, ai.DecodeOptionsFrom(run.Options))
		done <- transcription{recognition: recognition, err: err}
	})
	if err != nil {
		return nil, &StageError{Stage: StageTranscribe, Err: err}
	}

	var res transcription
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) && c.transcribeTimeout > 0 {
			return nil, &StageError{Stage: StageTranscribe, Err: fmt.Errorf("%w after %s", ErrTimeout, c.transcribeTimeout)}
		}
		return nil, &StageError{Stage: StageTranscribe, Err: res.err}
	}
	if res.recognition == nil {
		return nil, &StageError{Stage: StageTranscribe, Err: errors.New("recognizer returned no result")}
	}
	for i := range res.recognition.Segments {
		if err := core.ValidateSegment(&res.recognition.Segments[i]); err != nil {
			return nil, &StageError{Stage: StageTranscribe, Err: err}
		}
	}
	return res.recognition, nil
}

// summarize condenses the transcript. Meeting runs also apply the word
// floor of direct summarization requests before the engine is consulted.
func (c *Coordinator) summarize(ctx context.Context, run Run, text, lang string) string {
	if run.MeetingID != "" && len(strings.Fields(text)) < summarize.MinWordCount {
		return summarize.SentinelTooFewWords
	}
	if c.summarizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.summarizeTimeout)
		defer cancel()
	}
	return c.summarizer.Summarize(ctx, text, lang)
}

// persist writes the transcript artifact and the meeting update. For plain
// jobs the artifact is best effort; for meeting runs a failed write fails
// the job.
func (c *Coordinator) persist(ctx context.Context, run Run, result *core.TranscriptionResult, summary string, logger *slog.Logger) error {
	if c.transcripts == nil {
		return nil
	}

	transcript := &core.Transcript{
		ID:        core.NewID(),
		JobID:     run.JobID,
		MeetingID: run.MeetingID,
		AudioPath: run.AudioPath,
		Language:  result.Language,
		Segments:  result.Segments,
		Text:      result.Text(),
		Summary:   summary,
		CreatedAt: c.now(),
	}
	err := retryPersist(ctx, logger, c.persistAttempts, c.persistDelay, func() error {
		return c.transcripts.SaveTranscript(ctx, transcript)
	})
	if err != nil {
		if run.MeetingID == "" {
			logger.Warn("transcript artifact not written", "err", err)
			return nil
		}
		return &StageError{Stage: StagePersist, Err: fmt.Errorf("save transcript: %w", err)}
	}
	logger.Debug("transcript saved", "transcript", transcript.ID)

	if run.MeetingID == "" {
		return nil
	}

	status := core.MeetingStatusCompleted
	update := core.MeetingUpdate{
		TranscriptionID: &transcript.ID,
		Summary:         &summary,
		Status:          &status,
	}
	err = retryPersist(ctx, logger, c.persistAttempts, c.persistDelay, func() error {
		return c.meetings.UpdateMeetingRecording(ctx, run.MeetingID, update)
	})
	if err != nil {
		return &StageError{Stage: StagePersist, Err: fmt.Errorf("update meeting: %w", err)}
	}
	return nil
}

// fail records err on the job and, for meeting runs, marks the meeting failed.
func (c *Coordinator) fail(ctx context.Context, run Run, err error, logger *slog.Logger) {
	if ferr := c.jobs.Fail(run.JobID, err.Error()); ferr != nil {
		logger.Warn("job failure not recorded", "err", ferr)
	}
	if run.MeetingID == "" || c.meetings == nil {
		return
	}
	status := core.MeetingStatusFailed
	if merr := c.meetings.UpdateMeetingRecording(ctx, run.MeetingID, core.MeetingUpdate{Status: &status}); merr != nil {
		logger.Warn("meeting failure not recorded", "err", merr)
	}
}

func (c *Coordinator) cleanup(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	err := os.Remove(path)
	switch {
	case err == nil:
		logger.Debug("temporary audio removed", "file", path)
	case errors.Is(err, fs.ErrNotExist):
	default:
		logger.Error("failed to remove temporary audio", "file", path, "err", err)
	}
}
