package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/minutes/ai/mock"
	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/dispatch"
	"github.com/poiesic/minutes/jobs"
	"github.com/poiesic/minutes/pipeline"
	"github.com/poiesic/minutes/storage"
	"github.com/poiesic/minutes/storage/badger"
	"github.com/poiesic/minutes/storage/sqlite"
	"github.com/poiesic/minutes/summarize"
)

const fortyWordTranscript = "The quarterly budget review started with the finance update. " +
	"Revenue grew while costs stayed flat. " +
	"The team agreed to delay the office move until spring. " +
	"Hiring for two engineering roles will begin next week. " +
	"Everyone should send feedback before Friday."

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type stubRuns struct {
	mu   sync.Mutex
	runs []pipeline.Run
	err  error
}

func (s *stubRuns) Submit(run pipeline.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.runs = append(s.runs, run)
	return nil
}

func (s *stubRuns) ActiveRuns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

func (s *stubRuns) last() pipeline.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[len(s.runs)-1]
}

type stubModels []string

func (m stubModels) Keys() []string { return m }

type fixture struct {
	jobs        *jobs.Store
	runs        *stubRuns
	meetings    *sqlite.Store
	transcripts storage.TranscriptRepository
	server      *Server
}

type fixtureConfig struct {
	dispatchOpts []dispatch.Option
	serverOpts   []Option
	noMeetings   bool
}

func newFixture(t *testing.T, cfg fixtureConfig) *fixture {
	t.Helper()
	f := &fixture{jobs: jobs.NewStore(), runs: &stubRuns{}}

	worker, err := summarize.New(mock.NewMockSummaryEngine())
	require.NoError(t, err)
	t.Cleanup(worker.Release)

	repo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	f.transcripts = repo

	dispatchOpts := []dispatch.Option{dispatch.WithUploadDir(t.TempDir())}
	serverOpts := []Option{
		WithTranscriptRepository(repo),
		WithModelLister(stubModels{"base_cpu_int8"}),
		WithRunCounter(f.runs),
		WithClock(func() time.Time { return fixedNow }),
	}
	if !cfg.noMeetings {
		meetings, err := sqlite.Open(filepath.Join(t.TempDir(), "meetings.db"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = meetings.Close() })
		f.meetings = meetings
		dispatchOpts = append(dispatchOpts, dispatch.WithMeetingRepository(meetings))
		serverOpts = append(serverOpts, WithMeetingStore(meetings))
	}

	d, err := dispatch.New(f.jobs, f.runs, worker, append(dispatchOpts, cfg.dispatchOpts...)...)
	require.NoError(t, err)

	server, err := NewServer(d, f.jobs, append(serverOpts, cfg.serverOpts...)...)
	require.NoError(t, err)
	f.server = server
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, target string, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, jobs.NewStore())
	assert.ErrorIs(t, err, ErrDispatcherRequired)

	f := newFixture(t, fixtureConfig{})
	assert.Equal(t, DefaultAddr, f.server.Addr())
}

func TestTranscribe(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{})
		req := uploadRequest(t, "/api/transcribe", map[string]string{
			"model_size": "small",
			"beam_size":  "3",
			"vad_filter": "false",
		}, "standup.wav", []byte("RIFF...."))

		rec := f.do(t, req)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		handle := decode[TaskHandle](t, rec)
		assert.NotEmpty(t, handle.ID)
		assert.Equal(t, core.JobStatusQueued, handle.Status)
		assert.Equal(t, "standup.wav", handle.FileName)

		run := f.runs.last()
		assert.Equal(t, handle.ID, run.JobID)
		assert.Equal(t, "small", run.Options.ModelSize)
		assert.Equal(t, 3, run.Options.BeamSize)
		assert.False(t, run.Options.VADFilter)

		_, err := f.jobs.Get(handle.ID)
		assert.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{})
		rec := f.do(t, uploadRequest(t, "/api/transcribe", map[string]string{"beam_size": "2"}, "", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrFileRequired.Error(), errorMessage(t, rec))
	})

	t.Run("not multipart", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{})
		rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/transcribe", strings.NewReader("raw")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid options", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{})
		rec := f.do(t, uploadRequest(t, "/api/transcribe", map[string]string{"model_size": "gigantic"}, "a.wav", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "invalid model size")
		assert.Zero(t, f.jobs.Count())
	})

	t.Run("malformed field", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{})
		rec := f.do(t, uploadRequest(t, "/api/transcribe", map[string]string{"word_timestamps": "maybe"}, "a.wav", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "word_timestamps")
	})

	t.Run("empty file", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{})
		rec := f.do(t, uploadRequest(t, "/api/transcribe", nil, "a.wav", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("queue full", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{})
		f.runs.err = pipeline.ErrQueueFull
		rec := f.do(t, uploadRequest(t, "/api/transcribe", nil, "a.wav", []byte("x")))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, pipeline.ErrQueueFull.Error(), errorMessage(t, rec))
	})

	t.Run("body over limit", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{serverOpts: []Option{WithMaxBodyBytes(1024)}})
		rec := f.do(t, uploadRequest(t, "/api/transcribe", nil, "a.wav", bytes.Repeat([]byte("a"), 4096)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Zero(t, f.jobs.Count())
	})

	t.Run("upload over dispatcher cap", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{dispatchOpts: []dispatch.Option{dispatch.WithMaxUploadBytes(8)}})
		rec := f.do(t, uploadRequest(t, "/api/transcribe", nil, "a.wav", bytes.Repeat([]byte("a"), 64)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "file too large")
	})

	t.Run("wrong method", func(t *testing.T) {
		f := newFixture(t, fixtureConfig{})
		rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/transcribe", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestTasks(t *testing.T) {
	f := newFixture(t, fixtureConfig{})

	var ids []string
	for i := 0; i < 4; i++ {
		job := f.jobs.Create(core.JobMeta{FileName: fmt.Sprintf("f%d.wav", i)})
		ids = append(ids, job.ID)
	}
	require.NoError(t, f.jobs.Fail(ids[1], "corrupt audio"))

	t.Run("list newest first with limit", func(t *testing.T) {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/tasks?limit=2", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]core.Job](t, rec)
		require.Len(t, list, 2)
		assert.Equal(t, ids[3], list[0].ID)
		assert.Equal(t, ids[2], list[1].ID)
	})

	t.Run("list by status", func(t *testing.T) {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/tasks?status=failed", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]core.Job](t, rec)
		require.Len(t, list, 1)
		assert.Equal(t, ids[1], list[0].ID)
		assert.Equal(t, "corrupt audio", list[0].Error)
	})

	t.Run("bad query", func(t *testing.T) {
		for _, target := range []string{"/api/tasks?status=paused", "/api/tasks?limit=abc", "/api/tasks?limit=0"} {
			rec := f.do(t, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
	})

	t.Run("get", func(t *testing.T) {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/tasks/"+ids[0], nil))
		require.Equal(t, http.StatusOK, rec.Code)
		job := decode[core.Job](t, rec)
		assert.Equal(t, "f0.wav", job.FileName)
		assert.Equal(t, core.JobStatusQueued, job.Status)

		rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/tasks/unknown", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/tasks/"+ids[0], nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "deleted", body["status"])
		assert.Equal(t, ids[0], body["task_id"])

		rec = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/tasks/"+ids[0], nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSummarizeEndpoint(t *testing.T) {
	f := newFixture(t, fixtureConfig{})

	t.Run("summary", func(t *testing.T) {
		rec := f.do(t, jsonRequest(t, http.MethodPost, "/api/summarize", SummarizeRequest{
			FullTranscript: fortyWordTranscript,
			LanguageCode:   "en",
		}))
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[SummarizeResponse](t, rec)
		assert.Equal(t, "The quarterly budget review started with the finance update. "+
			"Revenue grew while costs stayed flat. "+
			"The team agreed to delay the office move until spring.", resp.Summary)
	})

	t.Run("too few words", func(t *testing.T) {
		rec := f.do(t, jsonRequest(t, http.MethodPost, "/api/summarize", SummarizeRequest{FullTranscript: "short text"}))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, summarize.SentinelTooFewWords, decode[SummarizeResponse](t, rec).Summary)
	})

	t.Run("missing text", func(t *testing.T) {
		rec := f.do(t, jsonRequest(t, http.MethodPost, "/api/summarize", map[string]string{"language_code": "en"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, summarize.ErrTextRequired.Error(), errorMessage(t, rec))
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMeetings(t *testing.T) {
	f := newFixture(t, fixtureConfig{})

	rec := f.do(t, jsonRequest(t, http.MethodPost, "/api/meetings", CreateMeetingRequest{
		Title:     "Weekly sync",
		Organizer: "ops",
		Status:    "scheduled",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[core.Meeting](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, core.MeetingStatusScheduled, created.Status)

	t.Run("get", func(t *testing.T) {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings/"+created.ID, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Weekly sync", decode[core.Meeting](t, rec).Title)

		rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings/missing", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings?status=scheduled", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]core.Meeting](t, rec), 1)

		rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings?status=completed", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]core.Meeting](t, rec))

		rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings?status=queued", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("title required", func(t *testing.T) {
		rec := f.do(t, jsonRequest(t, http.MethodPost, "/api/meetings", CreateMeetingRequest{Title: "  "}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("process recording", func(t *testing.T) {
		rec := f.do(t, uploadRequest(t, "/api/meetings/"+created.ID+"/process-recording", nil, "sync.m4a", []byte("audio")))
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		ack := decode[dispatch.MeetingAck](t, rec)
		assert.Equal(t, created.ID, ack.MeetingID)
		assert.NotEmpty(t, ack.JobID)
		assert.Equal(t, created.ID, f.runs.last().MeetingID)

		stored, err := f.meetings.GetMeeting(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, core.MeetingStatusInProgress, stored.Status)
	})

	t.Run("process recording for unknown meeting", func(t *testing.T) {
		rec := f.do(t, uploadRequest(t, "/api/meetings/missing/process-recording", nil, "x.m4a", []byte("audio")))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "meeting not found")
	})
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// recordingBody streams a multipart body whose file part holds size zero
// bytes, preceded by an ordinary form field.
func recordingBody(t *testing.T, size int64) (io.Reader, string) {
	t.Helper()
	var head bytes.Buffer
	mw := multipart.NewWriter(&head)
	require.NoError(t, mw.WriteField("note", "ignored"))
	_, err := mw.CreateFormFile("file", "long.m4a")
	require.NoError(t, err)
	tail := "\r\n--" + mw.Boundary() + "--\r\n"
	body := io.MultiReader(&head, io.LimitReader(zeros{}, size), strings.NewReader(tail))
	return body, mw.FormDataContentType()
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestProcessRecordingStreamsUpload(t *testing.T) {
	const recordingCap = 4 << 10
	f := newFixture(t, fixtureConfig{dispatchOpts: []dispatch.Option{dispatch.WithMaxRecordingBytes(recordingCap)}})
	ctx := context.Background()
	meeting := &core.Meeting{Title: "Retro"}
	require.NoError(t, f.meetings.CreateMeeting(ctx, meeting))
	target := "/api/meetings/" + meeting.ID + "/process-recording"

	t.Run("oversized recording is cut off near the cap", func(t *testing.T) {
		const bodySize = 8 << 20
		body, contentType := recordingBody(t, bodySize)
		counter := &countingReader{r: body}
		req := httptest.NewRequest(http.MethodPost, target, counter)
		req.Header.Set("Content-Type", contentType)

		rec := f.do(t, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
		assert.LessOrEqual(t, counter.n, int64(recordingCap)+multipartOverhead+1)
		assert.Less(t, counter.n, int64(bodySize))
		assert.Zero(t, f.jobs.Count())

		stored, err := f.meetings.GetMeeting(ctx, meeting.ID)
		require.NoError(t, err)
		assert.Equal(t, core.MeetingStatusDraft, stored.Status)
		assert.Empty(t, stored.AudioPath)
	})

	t.Run("recording within the cap is accepted", func(t *testing.T) {
		body, contentType := recordingBody(t, recordingCap)
		req := httptest.NewRequest(http.MethodPost, target, body)
		req.Header.Set("Content-Type", contentType)

		rec := f.do(t, req)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		assert.Equal(t, meeting.ID, f.runs.last().MeetingID)
	})

	t.Run("missing file part", func(t *testing.T) {
		rec := f.do(t, uploadRequest(t, target, map[string]string{"note": "x"}, "", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrFileRequired.Error(), errorMessage(t, rec))
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader("raw"))
		req.Header.Set("Content-Type", "audio/mpeg")
		rec := f.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMeetingsUnavailable(t *testing.T) {
	f := newFixture(t, fixtureConfig{noMeetings: true})

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = f.do(t, uploadRequest(t, "/api/meetings/m1/process-recording", nil, "x.m4a", []byte("audio")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTranscripts(t *testing.T) {
	f := newFixture(t, fixtureConfig{})
	ctx := context.Background()

	transcript := &core.Transcript{
		ID:        "trn-1",
		JobID:     "job-1",
		MeetingID: "meeting-1",
		Language:  "en",
		Segments:  []core.TranscriptSegment{{Index: 0, Start: 0, End: 2.5, Text: "hello"}},
		Text:      "hello",
	}
	require.NoError(t, f.transcripts.SaveTranscript(ctx, transcript))

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/transcripts/trn-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[core.Transcript](t, rec)
	assert.Equal(t, "hello", got.Text)
	assert.Len(t, got.Segments, 1)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/transcripts/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings/meeting-1/transcripts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]core.Transcript](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "trn-1", list[0].ID)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings/other/transcripts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t, fixtureConfig{})
	job := f.jobs.Create(core.JobMeta{FileName: "a.wav"})
	f.jobs.Create(core.JobMeta{FileName: "b.wav"})
	require.NoError(t, f.jobs.MarkProcessing(job.ID))
	require.NoError(t, f.runs.Submit(pipeline.Run{JobID: job.ID}))

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, fixedNow.Equal(health.Timestamp))
	assert.Equal(t, 2, health.TranscriptionTasks)
	assert.Equal(t, 1, health.TasksByStatus[core.JobStatusQueued])
	assert.Equal(t, 1, health.TasksByStatus[core.JobStatusProcessing])
	assert.Equal(t, []string{"base_cpu_int8"}, health.CachedModels)
	assert.Equal(t, 1, health.ActiveRuns)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	f := newFixture(t, fixtureConfig{serverOpts: []Option{WithShutdownTimeout(time.Second)}})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/api/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("%w: limit is 8 B", dispatch.ErrFileTooLarge), http.StatusRequestEntityTooLarge},
		{fmt.Errorf("%w: bad", core.ErrInvalidOptions), http.StatusBadRequest},
		{dispatch.ErrEmptyUpload, http.StatusBadRequest},
		{storage.ErrInvalidRecord, http.StatusBadRequest},
		{jobs.ErrNotFound, http.StatusNotFound},
		{storage.ErrNotFound, http.StatusNotFound},
		{pipeline.ErrQueueFull, http.StatusServiceUnavailable},
		{pipeline.ErrClosed, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
