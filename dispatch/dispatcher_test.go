package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/jobs"
	"github.com/poiesic/minutes/pipeline"
	"github.com/poiesic/minutes/storage/sqlite"
)

type recordingSubmitter struct {
	mu   sync.Mutex
	runs []pipeline.Run
	err  error
}

func (s *recordingSubmitter) Submit(run pipeline.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.runs = append(s.runs, run)
	return nil
}

func (s *recordingSubmitter) last() pipeline.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[len(s.runs)-1]
}

type echoSummarizer struct {
	lang string
}

func (e *echoSummarizer) SummarizeRequest(ctx context.Context, text, lang string) (string, error) {
	e.lang = lang
	if strings.TrimSpace(text) == "" {
		return "", ErrTextRequired
	}
	return "summary of " + text, nil
}

type fixture struct {
	jobs      *jobs.Store
	submitter *recordingSubmitter
	meetings  *sqlite.Store
	dispatch  *Dispatcher
	dir       string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		jobs:      jobs.NewStore(),
		submitter: &recordingSubmitter{},
		dir:       filepath.Join(t.TempDir(), "uploads"),
	}

	meetings, err := sqlite.Open(filepath.Join(t.TempDir(), "meetings.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = meetings.Close() })
	f.meetings = meetings

	base := []Option{WithUploadDir(f.dir), WithMeetingRepository(meetings)}
	d, err := New(f.jobs, f.submitter, &echoSummarizer{}, append(base, opts...)...)
	require.NoError(t, err)
	f.dispatch = d
	return f
}

func (f *fixture) uploads(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func upload(name, body string) Upload {
	return Upload{FileName: name, Body: strings.NewReader(body), Size: int64(len(body))}
}

func TestNew(t *testing.T) {
	_, err := New(nil, &recordingSubmitter{}, &echoSummarizer{})
	assert.ErrorIs(t, err, ErrJobStoreRequired)
	_, err = New(jobs.NewStore(), nil, &echoSummarizer{})
	assert.ErrorIs(t, err, ErrSubmitterRequired)
	_, err = New(jobs.NewStore(), &recordingSubmitter{}, nil)
	assert.ErrorIs(t, err, ErrSummarizerRequired)
	_, err = New(jobs.NewStore(), &recordingSubmitter{}, &echoSummarizer{}, WithUploadDir(" "))
	assert.Error(t, err)
}

func TestSubmitTranscription(t *testing.T) {
	ctx := context.Background()

	t.Run("queues job and writes upload", func(t *testing.T) {
		f := newFixture(t)
		job, err := f.dispatch.SubmitTranscription(ctx, upload("standup.wav", "RIFF-data"), core.DefaultTranscriptionOptions())
		require.NoError(t, err)

		assert.Equal(t, core.JobStatusQueued, job.Status)
		assert.Equal(t, "standup.wav", job.FileName)
		assert.False(t, job.CreatedAt.IsZero())

		run := f.submitter.last()
		assert.Equal(t, job.ID, run.JobID)
		assert.Empty(t, run.MeetingID)
		assert.Equal(t, core.DefaultTranscriptionOptions(), run.Options)
		assert.Equal(t, f.dir, filepath.Dir(run.AudioPath))
		assert.True(t, strings.HasPrefix(filepath.Base(run.AudioPath), job.ID+"_"))
		assert.True(t, strings.HasSuffix(run.AudioPath, "_standup.wav"))

		data, err := os.ReadFile(run.AudioPath)
		require.NoError(t, err)
		assert.Equal(t, "RIFF-data", string(data))
	})

	t.Run("same name uploads never collide", func(t *testing.T) {
		f := newFixture(t)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.dispatch.SubmitTranscription(ctx, upload("audio.mp3", "x"), core.DefaultTranscriptionOptions())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Len(t, f.uploads(t), 8)
	})

	t.Run("invalid options create nothing", func(t *testing.T) {
		f := newFixture(t)
		opts := core.DefaultTranscriptionOptions()
		opts.Device = "tpu"
		_, err := f.dispatch.SubmitTranscription(ctx, upload("a.wav", "x"), opts)
		assert.ErrorIs(t, err, core.ErrInvalidOptions)
		assert.Zero(t, f.jobs.Count())
		assert.Empty(t, f.uploads(t))
	})

	t.Run("declared size over limit", func(t *testing.T) {
		f := newFixture(t, WithMaxUploadBytes(4))
		_, err := f.dispatch.SubmitTranscription(ctx, upload("a.wav", "too long"), core.DefaultTranscriptionOptions())
		assert.ErrorIs(t, err, ErrFileTooLarge)
		assert.Zero(t, f.jobs.Count())
	})

	t.Run("streamed size over limit", func(t *testing.T) {
		f := newFixture(t, WithMaxUploadBytes(4))
		body := Upload{FileName: "a.wav", Body: bytes.NewReader(make([]byte, 64))}
		_, err := f.dispatch.SubmitTranscription(ctx, body, core.DefaultTranscriptionOptions())
		assert.ErrorIs(t, err, ErrFileTooLarge)
		assert.Contains(t, err.Error(), "4 B")
		assert.Zero(t, f.jobs.Count())
		assert.Empty(t, f.uploads(t))
	})

	t.Run("empty upload", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.dispatch.SubmitTranscription(ctx, Upload{FileName: "a.wav", Body: strings.NewReader("")}, core.DefaultTranscriptionOptions())
		assert.ErrorIs(t, err, ErrEmptyUpload)
		assert.Zero(t, f.jobs.Count())
		assert.Empty(t, f.uploads(t))
	})

	t.Run("rejected submit fails job and removes file", func(t *testing.T) {
		f := newFixture(t)
		f.submitter.err = pipeline.ErrQueueFull
		_, err := f.dispatch.SubmitTranscription(ctx, upload("a.wav", "x"), core.DefaultTranscriptionOptions())
		assert.ErrorIs(t, err, ErrQueueFull)

		list := f.jobs.List(jobs.Filter{}, 0)
		require.Len(t, list, 1)
		assert.Equal(t, core.JobStatusFailed, list[0].Status)
		assert.Contains(t, list[0].Error, "queue is full")
		assert.Empty(t, f.uploads(t))
	})
}

func TestSubmitMeetingRecording(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown meeting", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.dispatch.SubmitMeetingRecording(ctx, "nope", upload("m.wav", "x"))
		assert.ErrorIs(t, err, ErrMeetingNotFound)
		assert.Zero(t, f.jobs.Count())
	})

	t.Run("queues with meeting options", func(t *testing.T) {
		f := newFixture(t)
		meeting := &core.Meeting{Title: "Planning", Status: core.MeetingStatusScheduled}
		require.NoError(t, f.meetings.CreateMeeting(ctx, meeting))

		ack, err := f.dispatch.SubmitMeetingRecording(ctx, meeting.ID, upload("planning.m4a", "audio"))
		require.NoError(t, err)
		assert.Equal(t, meeting.ID, ack.MeetingID)
		assert.NotEmpty(t, ack.JobID)
		assert.FileExists(t, ack.FilePath)

		run := f.submitter.last()
		assert.Equal(t, meeting.ID, run.MeetingID)
		assert.Equal(t, "base", run.Options.ModelSize)
		assert.Equal(t, "vi", run.Options.Language)
		assert.True(t, run.Options.VADFilter)
		assert.False(t, run.Options.WordTimestamps)

		stored, err := f.meetings.GetMeeting(ctx, meeting.ID)
		require.NoError(t, err)
		assert.Equal(t, core.MeetingStatusInProgress, stored.Status)
		assert.Equal(t, ack.FilePath, stored.AudioPath)

		job, err := f.jobs.Get(ack.JobID)
		require.NoError(t, err)
		assert.Equal(t, meeting.ID, job.MeetingID)
	})

	t.Run("recording over limit", func(t *testing.T) {
		f := newFixture(t, WithMaxRecordingBytes(16))
		meeting := &core.Meeting{Title: "Long one"}
		require.NoError(t, f.meetings.CreateMeeting(ctx, meeting))

		body := Upload{FileName: "long.wav", Body: bytes.NewReader(make([]byte, 32)), Size: -1}
		_, err := f.dispatch.SubmitMeetingRecording(ctx, meeting.ID, body)
		assert.ErrorIs(t, err, ErrFileTooLarge)

		stored, err := f.meetings.GetMeeting(ctx, meeting.ID)
		require.NoError(t, err)
		assert.Equal(t, core.MeetingStatusDraft, stored.Status)
		assert.Empty(t, stored.AudioPath)
		assert.Empty(t, f.uploads(t))
	})

	t.Run("rejected submit restores meeting", func(t *testing.T) {
		f := newFixture(t)
		f.submitter.err = errors.New("pipeline is closed")
		meeting := &core.Meeting{Title: "Sync", Status: core.MeetingStatusScheduled}
		require.NoError(t, f.meetings.CreateMeeting(ctx, meeting))

		_, err := f.dispatch.SubmitMeetingRecording(ctx, meeting.ID, upload("s.wav", "x"))
		require.Error(t, err)

		stored, err := f.meetings.GetMeeting(ctx, meeting.ID)
		require.NoError(t, err)
		assert.Equal(t, core.MeetingStatusScheduled, stored.Status)
		assert.Empty(t, stored.AudioPath)
		assert.Empty(t, f.uploads(t))
	})

	t.Run("no meeting store", func(t *testing.T) {
		d, err := New(jobs.NewStore(), &recordingSubmitter{}, &echoSummarizer{}, WithUploadDir(t.TempDir()))
		require.NoError(t, err)
		_, err = d.SubmitMeetingRecording(ctx, "m", upload("s.wav", "x"))
		assert.ErrorIs(t, err, ErrMeetingsUnavailable)
	})
}

func TestDefaultMaxRecordingBytes(t *testing.T) {
	assert.Equal(t, int64(50*1024*1024), DefaultMaxRecordingBytes)
}

func TestSummarize(t *testing.T) {
	summarizer := &echoSummarizer{}
	d, err := New(jobs.NewStore(), &recordingSubmitter{}, summarizer)
	require.NoError(t, err)

	out, err := d.Summarize(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "summary of hello", out)
	assert.Equal(t, "en", summarizer.lang)

	_, err = d.Summarize(context.Background(), "  ", "fr")
	assert.ErrorIs(t, err, ErrTextRequired)
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"meeting.wav":             "meeting.wav",
		"../../etc/passwd":        "passwd",
		`C:\Users\me\rec 1.mp3`:   "rec_1.mp3",
		"":                        "upload",
		"...":                     "upload",
		"bản ghi.m4a":             "b_n_ghi.m4a",
		"name with;semicolon.ogg": "name_with_semicolon.ogg",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFileName(in), "input %q", in)
	}

	long := strings.Repeat("a", 300) + ".wav"
	got := SanitizeFileName(long)
	assert.Len(t, got, maxStoredNameLen)
	assert.True(t, strings.HasSuffix(got, ".wav"))
}
