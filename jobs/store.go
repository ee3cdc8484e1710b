package jobs

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/minutes/core"
)

// DefaultListLimit is applied when List is called with a non-positive limit.
const DefaultListLimit = 10

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Status    core.JobStatus
	MeetingID string
}

func (f Filter) matches(j *core.Job) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.MeetingID != "" && j.MeetingID != f.MeetingID {
		return false
	}
	return true
}

type record struct {
	mu  sync.Mutex
	seq uint64
	job core.Job
}

// Store is a concurrency-safe job table.
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]*record
	seq    uint64
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now. Tests use this for deterministic ordering.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore creates an empty job table.
func NewStore(opts ...Option) *Store {
	s := &Store{
		jobs:   make(map[string]*record),
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "jobs")
	return s
}

// Create adds a queued job and returns its snapshot.
func (s *Store) Create(meta core.JobMeta) core.Job {
	now := s.now()
	rec := &record{
		job: core.Job{
			ID:        core.NewID(),
			Status:    core.JobStatusQueued,
			CreatedAt: now,
			UpdatedAt: now,
			FileName:  meta.FileName,
			MeetingID: meta.MeetingID,
			Options:   meta.Options,
		},
	}

	s.mu.Lock()
	s.seq++
	rec.seq = s.seq
	s.jobs[rec.job.ID] = rec
	s.mu.Unlock()

	s.logger.Debug("job created", "job", rec.job.ID, "file", meta.FileName)
	return rec.job.Clone()
}

// Get returns a snapshot of the job. It never waits for pipeline work.
func (s *Store) Get(id string) (core.Job, error) {
	rec, err := s.record(id)
	if err != nil {
		return core.Job{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.job.Clone(), nil
}

// List returns up to limit jobs matching filter, newest first. Jobs created
// at the same instant keep reverse insertion order.
func (s *Store) List(filter Filter, limit int) []core.Job {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	recs := make([]*record, 0, len(s.jobs))
	for _, rec := range s.jobs {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	type snapshot struct {
		seq uint64
		job core.Job
	}
	matched := make([]snapshot, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		if filter.matches(&rec.job) {
			matched = append(matched, snapshot{seq: rec.seq, job: rec.job.Clone()})
		}
		rec.mu.Unlock()
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.job.CreatedAt.Equal(b.job.CreatedAt) {
			return a.job.CreatedAt.After(b.job.CreatedAt)
		}
		return a.seq > b.seq
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]core.Job, len(matched))
	for i, m := range matched {
		out[i] = m.job
	}
	return out
}

// MarkProcessing moves a queued job to processing.
func (s *Store) MarkProcessing(id string) error {
	return s.transition(id, core.JobStatusProcessing, func(j *core.Job) error {
		if j.Status != core.JobStatusQueued {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, core.JobStatusProcessing)
		}
		return nil
	})
}

// Complete records the result and summary of a processing job.
func (s *Store) Complete(id string, result *core.TranscriptionResult, summary string) error {
	if result == nil {
		return ErrResultRequired
	}
	return s.transition(id, core.JobStatusCompleted, func(j *core.Job) error {
		if j.Status != core.JobStatusProcessing {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, core.JobStatusCompleted)
		}
		j.Result = result.Clone()
		j.Summary = summary
		j.Error = ""
		return nil
	})
}

// Fail records msg as the job's error. Queued jobs may fail directly when
// they are rejected before processing starts.
func (s *Store) Fail(id string, msg string) error {
	if msg == "" {
		msg = "unknown error"
	}
	return s.transition(id, core.JobStatusFailed, func(j *core.Job) error {
		j.Result = nil
		j.Summary = ""
		j.Error = msg
		return nil
	})
}

// Delete removes a job regardless of its state. A pipeline still running a
// deleted job will find it gone on its next write.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.jobs, id)
	s.logger.Debug("job deleted", "job", id)
	return nil
}

// Count returns the number of jobs in the table.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// CountByStatus returns job counts keyed by status. Every status is present.
func (s *Store) CountByStatus() map[core.JobStatus]int {
	counts := map[core.JobStatus]int{
		core.JobStatusQueued:     0,
		core.JobStatusProcessing: 0,
		core.JobStatusCompleted:  0,
		core.JobStatusFailed:     0,
	}
	s.mu.RLock()
	recs := make([]*record, 0, len(s.jobs))
	for _, rec := range s.jobs {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	for _, rec := range recs {
		rec.mu.Lock()
		counts[rec.job.Status]++
		rec.mu.Unlock()
	}
	return counts
}

func (s *Store) record(id string) (*record, error) {
	s.mu.RLock()
	rec, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

// transition applies mutate under the job's lock and stamps the new status.
// Terminal jobs are rejected before mutate runs.
func (s *Store) transition(id string, to core.JobStatus, mutate func(*core.Job) error) error {
	rec, err := s.record(id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	from := rec.job.Status
	if from.IsTerminal() {
		return fmt.Errorf("%w: job %s is %s", ErrTerminal, id, from)
	}
	if err := mutate(&rec.job); err != nil {
		return err
	}
	rec.job.Status = to
	rec.job.UpdatedAt = s.now()

	s.logger.Debug("job status changed", "job", id, "from", from, "to", to)
	return nil
}
