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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/dispatch"
	"github.com/poiesic/minutes/jobs"
	"github.com/poiesic/minutes/storage"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "127.0.0.1:8000"

	// DefaultMaxBodyBytes caps request bodies. Uploads are also capped by
	// the dispatcher.
	DefaultMaxBodyBytes int64 = 512 << 20

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// multipartMemory is how much of a multipart body is held in memory
	// before parts spill to temporary files.
	multipartMemory = 8 << 20

	// multipartOverhead is the slack allowed over a streamed upload's cap
	// for boundaries, part headers and small form fields.
	multipartOverhead int64 = 64 << 10
)

// MeetingStore is the meeting persistence the API reads and writes.
type MeetingStore interface {
	storage.MeetingRepository
	ListMeetings(ctx context.Context, status core.MeetingStatus) ([]*core.Meeting, error)
}

// ModelLister reports which recognizers are loaded.
type ModelLister interface {
	Keys() []string
}

// RunCounter reports how many pipeline runs are in flight.
type RunCounter interface {
	ActiveRuns() int
}

// Server serves the HTTP API.
type Server struct {
	dispatch        *dispatch.Dispatcher
	jobs            *jobs.Store
	transcripts     storage.TranscriptRepository
	meetings        MeetingStore
	models          ModelLister
	runs            RunCounter
	addr            string
	maxBodyBytes    int64
	shutdownTimeout time.Duration
	now             func() time.Time
	logger          *slog.Logger
	handler         http.Handler
}

// Option configures a Server.
type Option func(*Server) error

// WithAddr sets the listen address used by Run.
// Default is DefaultAddr.
func WithAddr(addr string) Option {
	return func(s *Server) error {
		if strings.TrimSpace(addr) == "" {
			return errors.New("listen address must not be empty")
		}
		s.addr = addr
		return nil
	}
}

// WithMaxBodyBytes caps request bodies.
// Default is DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) error {
		if n <= 0 {
			return fmt.Errorf("max body bytes must be positive: %d", n)
		}
		s.maxBodyBytes = n
		return nil
	}
}

// WithShutdownTimeout bounds graceful shutdown in Run.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) error {
		if d <= 0 {
			return fmt.Errorf("shutdown timeout must be positive: %s", d)
		}
		s.shutdownTimeout = d
		return nil
	}
}

// WithTranscriptRepository serves stored transcripts.
func WithTranscriptRepository(repo storage.TranscriptRepository) Option {
	return func(s *Server) error {
		s.transcripts = repo
		return nil
	}
}

// WithMeetingStore serves meeting records.
func WithMeetingStore(store MeetingStore) Option {
	return func(s *Server) error {
		s.meetings = store
		return nil
	}
}

// WithModelLister adds cached model keys to the health report.
func WithModelLister(models ModelLister) Option {
	return func(s *Server) error {
		s.models = models
		return nil
	}
}

// WithRunCounter adds active run counts to the health report.
func WithRunCounter(runs RunCounter) Option {
	return func(s *Server) error {
		s.runs = runs
		return nil
	}
}

// WithClock replaces time.Now for health timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		s.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates a Server and registers its routes.
func NewServer(d *dispatch.Dispatcher, store *jobs.Store, opts ...Option) (*Server, error) {
	if d == nil {
		return nil, ErrDispatcherRequired
	}
	if store == nil {
		return nil, ErrJobStoreRequired
	}

	s := &Server{
		dispatch:        d,
		jobs:            store,
		addr:            DefaultAddr,
		maxBodyBytes:    DefaultMaxBodyBytes,
		shutdownTimeout: DefaultShutdownTimeout,
		now:             time.Now,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "api-server")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transcribe", s.handleTranscribe)
	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("POST /api/summarize", s.handleSummarize)
	mux.HandleFunc("POST /api/meetings", s.handleCreateMeeting)
	mux.HandleFunc("GET /api/meetings", s.handleListMeetings)
	mux.HandleFunc("GET /api/meetings/{id}", s.handleGetMeeting)
	mux.HandleFunc("GET /api/meetings/{id}/transcripts", s.handleMeetingTranscripts)
	mux.HandleFunc("POST /api/meetings/{id}/process-recording", s.handleProcessRecording)
	mux.HandleFunc("GET /api/transcripts/{id}", s.handleGetTranscript)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	s.handler = s.logRequests(mux)

	return s, nil
}

// Handler returns the routed handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down gracefully.
// In-flight requests get up to the shutdown timeout to finish.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Minute,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("api server listening", "address", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	<-errCh
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure reports err with the status it maps to. Server errors are
// logged and replaced with a generic message.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		s.writeError(w, status, "internal server error")
		return
	}
	s.writeError(w, status, err.Error())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
