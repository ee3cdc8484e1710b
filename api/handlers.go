package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/dispatch"
	"github.com/poiesic/minutes/jobs"
)

// TaskHandle is the response to an accepted transcription upload.
type TaskHandle struct {
	ID        string         `json:"id"`
	Status    core.JobStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	FileName  string         `json:"file_name"`
}

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	FullTranscript string `json:"full_transcript"`
	LanguageCode   string `json:"language_code"`
}

// SummarizeResponse is the reply to POST /api/summarize.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// CreateMeetingRequest is the body of POST /api/meetings.
type CreateMeetingRequest struct {
	Title     string `json:"title"`
	Organizer string `json:"organizer"`
	Status    string `json:"status,omitempty"`
}

// HealthResponse is the reply to GET /api/health.
type HealthResponse struct {
	Status             string                 `json:"status"`
	Timestamp          time.Time              `json:"timestamp"`
	TranscriptionTasks int                    `json:"transcription_tasks"`
	TasksByStatus      map[core.JobStatus]int `json:"tasks_by_status"`
	CachedModels       []string               `json:"cached_models"`
	ActiveRuns         int                    `json:"active_runs"`
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	upload, form, cleanup, err := s.readUpload(w, r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	defer cleanup()

	opts, err := dispatch.ParseFormOptions(form)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	job, err := s.dispatch.SubmitTranscription(r.Context(), upload, opts)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, TaskHandle{
		ID:        job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
		FileName:  job.FileName,
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter jobs.Filter
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := core.ParseJobStatus(raw)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		filter.Status = status
	}
	filter.MeetingID = strings.TrimSpace(query.Get("meeting_id"))

	limit := jobs.DefaultListLimit
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeFailure(w, r, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		limit = n
	}

	s.writeJSON(w, http.StatusOK, s.jobs.List(filter, limit))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.jobs.Delete(id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "task_id": id})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	summary, err := s.dispatch.Summarize(r.Context(), req.FullTranscript, req.LanguageCode)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SummarizeResponse{Summary: summary})
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	if s.meetings == nil {
		s.writeFailure(w, r, dispatch.ErrMeetingsUnavailable)
		return
	}
	var req CreateMeetingRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	meeting := &core.Meeting{Title: req.Title, Organizer: strings.TrimSpace(req.Organizer)}
	if strings.TrimSpace(req.Status) != "" {
		status, err := core.ParseMeetingStatus(req.Status)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		meeting.Status = status
	}
	if err := s.meetings.CreateMeeting(r.Context(), meeting); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.logger.Info("meeting created", "meeting", meeting.ID, "title", meeting.Title)
	s.writeJSON(w, http.StatusCreated, meeting)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	if s.meetings == nil {
		s.writeFailure(w, r, dispatch.ErrMeetingsUnavailable)
		return
	}
	var status core.MeetingStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, err := core.ParseMeetingStatus(raw)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		status = parsed
	}

	meetings, err := s.meetings.ListMeetings(r.Context(), status)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if meetings == nil {
		meetings = []*core.Meeting{}
	}
	s.writeJSON(w, http.StatusOK, meetings)
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	if s.meetings == nil {
		s.writeFailure(w, r, dispatch.ErrMeetingsUnavailable)
		return
	}
	meeting, err := s.meetings.GetMeeting(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, meeting)
}

func (s *Server) handleMeetingTranscripts(w http.ResponseWriter, r *http.Request) {
	if s.transcripts == nil {
		s.writeFailure(w, r, ErrTranscriptsUnavailable)
		return
	}
	list, err := s.transcripts.ListTranscriptsByMeeting(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if list == nil {
		list = []*core.Transcript{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleProcessRecording(w http.ResponseWriter, r *http.Request) {
	upload, err := s.streamUpload(w, r, s.dispatch.MaxRecordingBytes())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	ack, err := s.dispatch.SubmitMeetingRecording(r.Context(), r.PathValue("id"), upload)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, ack)
}

func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	if s.transcripts == nil {
		s.writeFailure(w, r, ErrTranscriptsUnavailable)
		return
	}
	transcript, err := s.transcripts.GetTranscript(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transcript)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:             "healthy",
		Timestamp:          s.now().UTC(),
		TranscriptionTasks: s.jobs.Count(),
		TasksByStatus:      s.jobs.CountByStatus(),
		CachedModels:       []string{},
	}
	if s.models != nil {
		resp.CachedModels = append(resp.CachedModels, s.models.Keys()...)
	}
	if s.runs != nil {
		resp.ActiveRuns = s.runs.ActiveRuns()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// readUpload parses a multipart body and returns its "file" part with the
// remaining form values. cleanup removes any parts spilled to disk.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (dispatch.Upload, url.Values, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return dispatch.Upload{}, nil, nil, err
		}
		return dispatch.Upload{}, nil, nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	cleanup := func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Warn("failed to remove multipart parts", "err", err)
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		cleanup()
		return dispatch.Upload{}, nil, nil, ErrFileRequired
	}
	upload := dispatch.Upload{FileName: header.Filename, Body: file, Size: header.Size}
	return upload, url.Values(r.MultipartForm.Value), func() {
		_ = file.Close()
		cleanup()
	}, nil
}

// streamUpload returns the "file" part of a multipart body without
// buffering it. The body is capped at limit plus multipartOverhead, so an
// oversized recording is cut off near the limit rather than spooled whole.
// Form fields before the file part are ignored.
func (s *Server) streamUpload(w http.ResponseWriter, r *http.Request, limit int64) (dispatch.Upload, error) {
	bodyLimit := s.maxBodyBytes
	if limit > 0 && limit+multipartOverhead < bodyLimit {
		bodyLimit = limit + multipartOverhead
	}
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	mr, err := r.MultipartReader()
	if err != nil {
		return dispatch.Upload{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return dispatch.Upload{}, ErrFileRequired
		}
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return dispatch.Upload{}, err
			}
			return dispatch.Upload{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return dispatch.Upload{FileName: part.FileName(), Body: part}, nil
		}
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	return nil
}
