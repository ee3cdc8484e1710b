package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/jobs"
	"github.com/poiesic/minutes/pipeline"
	"github.com/poiesic/minutes/storage"
)

const (
	// DefaultMaxRecordingBytes caps meeting recording uploads.
	DefaultMaxRecordingBytes int64 = 50 << 20

	maxStoredNameLen = 100
)

// Submitter schedules pipeline runs without waiting for them.
type Submitter interface {
	Submit(run pipeline.Run) error
}

// Summarizer serves direct summarization requests.
type Summarizer interface {
	SummarizeRequest(ctx context.Context, text, lang string) (string, error)
}

// Upload is one received file.
type Upload struct {
	FileName string
	Body     io.Reader
	// Size is the declared length; zero or less means unknown. A declared
	// size over the limit is rejected before any bytes are read.
	Size int64
}

// MeetingAck acknowledges a recording accepted for processing.
type MeetingAck struct {
	Message   string `json:"message"`
	MeetingID string `json:"meeting_id"`
	JobID     string `json:"job_id"`
	FilePath  string `json:"file_path"`
}

// Dispatcher accepts work at the service boundary.
type Dispatcher struct {
	jobs              *jobs.Store
	runs              Submitter
	summarizer        Summarizer
	meetings          storage.MeetingRepository
	uploadDir         string
	maxUploadBytes    int64
	maxRecordingBytes int64
	logger            *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithUploadDir sets where uploads are written.
// Default is <os.TempDir()>/minutes-uploads.
func WithUploadDir(dir string) Option {
	return func(d *Dispatcher) error {
		if strings.TrimSpace(dir) == "" {
			return errors.New("upload dir must not be empty")
		}
		d.uploadDir = dir
		return nil
	}
}

// WithMaxUploadBytes caps transcription uploads. Zero means no cap.
func WithMaxUploadBytes(n int64) Option {
	return func(d *Dispatcher) error {
		if n < 0 {
			return fmt.Errorf("max upload bytes must not be negative: %d", n)
		}
		d.maxUploadBytes = n
		return nil
	}
}

// WithMaxRecordingBytes caps meeting recording uploads.
// Default is DefaultMaxRecordingBytes.
func WithMaxRecordingBytes(n int64) Option {
	return func(d *Dispatcher) error {
		if n <= 0 {
			return fmt.Errorf("max recording bytes must be positive: %d", n)
		}
		d.maxRecordingBytes = n
		return nil
	}
}

// WithMeetingRepository enables meeting recording uploads.
func WithMeetingRepository(repo storage.MeetingRepository) Option {
	return func(d *Dispatcher) error {
		d.meetings = repo
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// New creates a Dispatcher.
func New(store *jobs.Store, runs Submitter, summarizer Summarizer, opts ...Option) (*Dispatcher, error) {
	if store == nil {
		return nil, ErrJobStoreRequired
	}
	if runs == nil {
		return nil, ErrSubmitterRequired
	}
	if summarizer == nil {
		return nil, ErrSummarizerRequired
	}

	d := &Dispatcher{
		jobs:              store,
		runs:              runs,
		summarizer:        summarizer,
		uploadDir:         filepath.Join(os.TempDir(), "minutes-uploads"),
		maxRecordingBytes: DefaultMaxRecordingBytes,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = d.logger.With("component", "dispatch")
	return d, nil
}

// UploadDir returns the directory uploads are written to.
func (d *Dispatcher) UploadDir() string {
	return d.uploadDir
}

// MaxRecordingBytes returns the cap on meeting recording uploads.
func (d *Dispatcher) MaxRecordingBytes() int64 {
	return d.maxRecordingBytes
}

// SubmitTranscription stores the upload and queues a job for it. The
// returned snapshot is the queued job; poll the job store for progress.
func (d *Dispatcher) SubmitTranscription(ctx context.Context, upload Upload, opts core.TranscriptionOptions) (core.Job, error) {
	core.NormalizeOptions(&opts)
	if err := core.ValidateOptions(&opts); err != nil {
		return core.Job{}, err
	}
	if err := checkDeclaredSize(upload, d.maxUploadBytes); err != nil {
		return core.Job{}, err
	}

	job := d.jobs.Create(core.JobMeta{FileName: upload.FileName, Options: opts})
	path, err := d.saveUpload(ctx, job.ID, upload, d.maxUploadBytes)
	if err != nil {
		_ = d.jobs.Delete(job.ID)
		return core.Job{}, err
	}

	run := pipeline.Run{JobID: job.ID, AudioPath: path, Options: opts}
	if err := d.runs.Submit(run); err != nil {
		d.abandon(job.ID, path, err)
		return core.Job{}, err
	}

	d.logger.Info("transcription queued", "job", job.ID, "file", upload.FileName, "model", opts.Key().String())
	return job, nil
}

// SubmitMeetingRecording stores a meeting recording and queues it with the
// fixed meeting options. Results land on the meeting record.
func (d *Dispatcher) SubmitMeetingRecording(ctx context.Context, meetingID string, upload Upload) (MeetingAck, error) {
	if d.meetings == nil {
		return MeetingAck{}, ErrMeetingsUnavailable
	}
	meeting, err := d.meetings.GetMeeting(ctx, meetingID)
	if errors.Is(err, storage.ErrNotFound) {
		return MeetingAck{}, fmt.Errorf("%w: %s", ErrMeetingNotFound, meetingID)
	}
	if err != nil {
		return MeetingAck{}, err
	}
	if err := checkDeclaredSize(upload, d.maxRecordingBytes); err != nil {
		return MeetingAck{}, err
	}

	opts := core.MeetingTranscriptionOptions()
	job := d.jobs.Create(core.JobMeta{FileName: upload.FileName, MeetingID: meetingID, Options: opts})
	path, err := d.saveUpload(ctx, job.ID, upload, d.maxRecordingBytes)
	if err != nil {
		_ = d.jobs.Delete(job.ID)
		return MeetingAck{}, err
	}

	inProgress := core.MeetingStatusInProgress
	err = d.meetings.UpdateMeetingRecording(ctx, meetingID, core.MeetingUpdate{
		AudioPath: &path,
		Status:    &inProgress,
	})
	if err != nil {
		d.abandon(job.ID, path, err)
		return MeetingAck{}, fmt.Errorf("update meeting: %w", err)
	}

	run := pipeline.Run{JobID: job.ID, AudioPath: path, Options: opts, MeetingID: meetingID}
	if err := d.runs.Submit(run); err != nil {
		d.abandon(job.ID, path, err)
		previous := meeting.Status
		noAudio := meeting.AudioPath
		if rerr := d.meetings.UpdateMeetingRecording(ctx, meetingID, core.MeetingUpdate{
			AudioPath: &noAudio,
			Status:    &previous,
		}); rerr != nil {
			d.logger.Warn("meeting not restored", "meeting", meetingID, "err", rerr)
		}
		return MeetingAck{}, err
	}

	d.logger.Info("meeting recording queued", "meeting", meetingID, "job", job.ID, "file", upload.FileName)
	return MeetingAck{
		Message:   "recording uploaded and processing",
		MeetingID: meetingID,
		JobID:     job.ID,
		FilePath:  path,
	}, nil
}

// Summarize serves a direct summarization request.
func (d *Dispatcher) Summarize(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(lang) == "" {
		lang = "en"
	}
	return d.summarizer.SummarizeRequest(ctx, text, lang)
}

// abandon fails a job whose run never started and removes its upload.
func (d *Dispatcher) abandon(jobID, path string, cause error) {
	if err := d.jobs.Fail(jobID, cause.Error()); err != nil {
		d.logger.Warn("job failure not recorded", "job", jobID, "err", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Error("failed to remove upload", "file", path, "err", err)
	}
	d.logger.Warn("job rejected", "job", jobID, "err", cause)
}

func checkDeclaredSize(upload Upload, limit int64) error {
	if limit > 0 && upload.Size > limit {
		return tooLarge(limit)
	}
	return nil
}

func tooLarge(limit int64) error {
	return fmt.Errorf("%w: limit is %s", ErrFileTooLarge, humanize.IBytes(uint64(limit)))
}

// saveUpload copies the body to <uploadDir>/<jobID>_<token>_<name>. The
// random token keeps concurrent uploads of one name apart.
func (d *Dispatcher) saveUpload(ctx context.Context, jobID string, upload Upload, limit int64) (string, error) {
	if upload.Body == nil {
		return "", ErrEmptyUpload
	}
	if err := os.MkdirAll(d.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("%s_%s_%s", jobID, token, SanitizeFileName(upload.FileName))
	path := filepath.Join(d.uploadDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	src := upload.Body
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	n, copyErr := io.Copy(f, &ctxReader{ctx: ctx, r: src})
	closeErr := f.Close()

	var fail error
	switch {
	case copyErr != nil:
		fail = fmt.Errorf("save upload: %w", copyErr)
	case closeErr != nil:
		fail = fmt.Errorf("save upload: %w", closeErr)
	case limit > 0 && n > limit:
		fail = tooLarge(limit)
	case n == 0:
		fail = ErrEmptyUpload
	}
	if fail != nil {
		_ = os.Remove(path)
		return "", fail
	}

	d.logger.Debug("upload saved", "file", path, "size", humanize.IBytes(uint64(n)))
	return path, nil
}

// SanitizeFileName reduces a client-supplied name to a safe base name.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if len(out) > maxStoredNameLen {
		out = out[len(out)-maxStoredNameLen:]
	}
	if out == "" {
		return "upload"
	}
	return out
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
