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

package minutes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/minutes/ai"
	"github.com/poiesic/minutes/ai/lsa"
	"github.com/poiesic/minutes/ai/openai"
	"github.com/poiesic/minutes/ai/whisper"
	"github.com/poiesic/minutes/api"
	"github.com/poiesic/minutes/config"
	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/dispatch"
	"github.com/poiesic/minutes/jobs"
	"github.com/poiesic/minutes/modelcache"
	"github.com/poiesic/minutes/pipeline"
	"github.com/poiesic/minutes/storage"
	"github.com/poiesic/minutes/storage/badger"
	"github.com/poiesic/minutes/storage/sqlite"
	"github.com/poiesic/minutes/summarize"
)

// Service wires the job table, model cache, pipeline, storage and HTTP API
// into one process.
type Service struct {
	cfg         *config.Config
	backend     *badger.Backend
	transcripts storage.TranscriptRepository
	meetings    *sqlite.Store
	provider    ai.Provider
	models      *modelcache.Cache
	compute     *ants.Pool
	summarizer  *summarize.Worker
	jobs        *jobs.Store
	coordinator *pipeline.Coordinator
	dispatcher  *dispatch.Dispatcher
	server      *api.Server
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	provider ai.Provider
	logger   *slog.Logger
}

// WithProvider supplies the recognizer loader and summary engine instead of
// building them from the configuration.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService opens storage and builds every component from cfg. A nil cfg
// uses config.Default with derived paths filled in.
func NewService(cfg *config.Config, opts ...ServiceOption) (svc *Service, err error) {
	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if cfg == nil {
		if cfg, err = config.Parse(nil); err != nil {
			return nil, err
		}
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	s := &Service{cfg: cfg, jobs: jobs.NewStore(jobs.WithLogger(options.logger)), logger: options.logger}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	if s.backend, err = badger.OpenBackend(cfg.Storage.TranscriptDir, cfg.Storage.InMemoryTranscripts); err != nil {
		return nil, fmt.Errorf("open transcript store: %w", err)
	}
	if s.transcripts, err = badger.NewTranscriptRepository(s.backend); err != nil {
		return nil, err
	}
	if s.meetings, err = sqlite.Open(cfg.Storage.MeetingDB, options.logger); err != nil {
		return nil, fmt.Errorf("open meeting store: %w", err)
	}

	s.provider = options.provider
	if s.provider == nil {
		if s.provider, err = newProvider(cfg, options.logger); err != nil {
			return nil, err
		}
	}

	if s.models, err = modelcache.New(s.provider.Loader(),
		modelcache.WithMaxEntries(cfg.Whisper.MaxCachedModels),
		modelcache.WithLogger(options.logger),
	); err != nil {
		return nil, err
	}

	if s.compute, err = ants.NewPool(cfg.Pipeline.ComputeWorkers, ants.WithPanicHandler(func(p any) {
		options.logger.Error("compute task panicked", "panic", p)
	})); err != nil {
		return nil, err
	}

	if s.summarizer, err = summarize.New(s.provider.Summarizer(),
		summarize.WithPool(s.compute),
		summarize.WithSentences(cfg.Summarizer.Sentences),
		summarize.WithTimeout(cfg.SummarizerTimeout()),
		summarize.WithLogger(options.logger),
	); err != nil {
		return nil, err
	}

	if s.coordinator, err = pipeline.New(s.jobs, s.models, s.summarizer,
		pipeline.WithComputePool(s.compute),
		pipeline.WithMaxRuns(cfg.Pipeline.MaxRuns),
		pipeline.WithTranscribeTimeout(cfg.TranscribeTimeout()),
		pipeline.WithSummarizeTimeout(cfg.SummarizeTimeout()),
		pipeline.WithPersistRetry(cfg.Pipeline.PersistAttempts, pipeline.DefaultPersistDelay),
		pipeline.WithTranscriptRepository(s.transcripts),
		pipeline.WithMeetingRepository(s.meetings),
		pipeline.WithLogger(options.logger),
	); err != nil {
		return nil, err
	}

	if s.dispatcher, err = dispatch.New(s.jobs, s.coordinator, s.summarizer,
		dispatch.WithUploadDir(cfg.Storage.UploadDir),
		dispatch.WithMaxUploadBytes(cfg.MaxUploadBytes()),
		dispatch.WithMaxRecordingBytes(cfg.MaxRecordingBytes()),
		dispatch.WithMeetingRepository(s.meetings),
		dispatch.WithLogger(options.logger),
	); err != nil {
		return nil, err
	}

	if s.server, err = api.NewServer(s.dispatcher, s.jobs,
		api.WithAddr(cfg.Server.Addr),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes()),
		api.WithShutdownTimeout(cfg.ShutdownTimeout()),
		api.WithTranscriptRepository(s.transcripts),
		api.WithMeetingStore(s.meetings),
		api.WithModelLister(s.models),
		api.WithRunCounter(s.coordinator),
		api.WithLogger(options.logger),
	); err != nil {
		return nil, err
	}

	return s, nil
}

func newProvider(cfg *config.Config, logger *slog.Logger) (ai.Provider, error) {
	aiCfg := cfg.AI()
	loader, err := whisper.NewLoader(aiCfg,
		whisper.WithFFmpeg(cfg.Whisper.FFmpeg),
		whisper.WithVADModel(cfg.Whisper.VADModel),
		whisper.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if aiCfg.SummarizerEngine == ai.EngineLLM {
		return openai.NewProvider(aiCfg, loader)
	}
	return ai.NewProvider(loader, lsa.New()), nil
}

// Serve runs the HTTP API until ctx is done, then lets in-flight runs
// finish within the shutdown timeout.
func (s *Service) Serve(ctx context.Context) error {
	serveErr := s.server.Run(ctx)

	drainCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	if err := s.coordinator.Wait(drainCtx); err != nil {
		s.logger.Warn("runs still in flight at shutdown", "active", s.coordinator.ActiveRuns(), "err", err)
	}
	return serveErr
}

// Transcribe runs one file through the pipeline on the calling goroutine
// and returns the finished job. The file is left in place.
func (s *Service) Transcribe(ctx context.Context, path string, opts core.TranscriptionOptions) (core.Job, error) {
	core.NormalizeOptions(&opts)
	if err := core.ValidateOptions(&opts); err != nil {
		return core.Job{}, err
	}
	if _, err := os.Stat(path); err != nil {
		return core.Job{}, fmt.Errorf("audio file: %w", err)
	}

	job := s.jobs.Create(core.JobMeta{FileName: filepath.Base(path), Options: opts})
	runErr := s.coordinator.Execute(ctx, pipeline.Run{
		JobID:     job.ID,
		AudioPath: path,
		Options:   opts,
		KeepAudio: true,
	})

	finished, err := s.jobs.Get(job.ID)
	if err != nil {
		return core.Job{}, err
	}
	return finished, runErr
}

// Close releases the pools and closes storage. Runs still in flight are
// abandoned.
func (s *Service) Close() error {
	var errs []error
	if s.coordinator != nil {
		s.coordinator.Release()
	}
	if s.summarizer != nil {
		s.summarizer.Release()
	}
	if s.compute != nil {
		s.compute.Release()
	}
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if s.meetings != nil {
		if err := s.meetings.Close(); err != nil {
			s.logger.Error("error closing meeting store", "err", err)
			errs = append(errs, err)
		}
	}
	if s.transcripts != nil {
		if err := s.transcripts.Close(); err != nil {
			s.logger.Error("error closing transcript repository", "err", err)
			errs = append(errs, err)
		}
	}
	if s.backend != nil && !s.backend.IsClosed() {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config { return s.cfg }

// Jobs returns the job table.
func (s *Service) Jobs() *jobs.Store { return s.jobs }

// Dispatcher returns the request boundary.
func (s *Service) Dispatcher() *dispatch.Dispatcher { return s.dispatcher }

// Coordinator returns the pipeline coordinator.
func (s *Service) Coordinator() *pipeline.Coordinator { return s.coordinator }

// Summarizer returns the summarization worker.
func (s *Service) Summarizer() *summarize.Worker { return s.summarizer }

// Models returns the recognizer cache.
func (s *Service) Models() *modelcache.Cache { return s.models }

// Meetings returns the meeting store.
func (s *Service) Meetings() *sqlite.Store { return s.meetings }

// Transcripts returns the transcript repository.
func (s *Service) Transcripts() storage.TranscriptRepository { return s.transcripts }

// Server returns the HTTP API.
func (s *Service) Server() *api.Server { return s.server }
