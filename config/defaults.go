package config

import (
	"runtime"

	"github.com/poiesic/minutes/ai"
	"github.com/poiesic/minutes/api"
	"github.com/poiesic/minutes/dispatch"
	"github.com/poiesic/minutes/pipeline"
	"github.com/poiesic/minutes/summarize"
)

const (
	defaultDataDir   = "~/.local/share/minutes"
	defaultModelDir  = "~/.local/share/minutes/models"
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// Default returns a Config populated with the built-in defaults. Derived
// storage paths are filled in by Load.
func Default() Config {
	engine := ai.DefaultConfig()
	return Config{
		Server: Server{
			Addr:                   api.DefaultAddr,
			MaxBodyMiB:             int(api.DefaultMaxBodyBytes >> 20),
			ShutdownTimeoutSeconds: int(api.DefaultShutdownTimeout.Seconds()),
		},
		Storage: Storage{
			DataDir: defaultDataDir,
		},
		Whisper: Whisper{
			Binary:   engine.WhisperBinary,
			FFmpeg:   "ffmpeg",
			ModelDir: defaultModelDir,
			Threads:  engine.Threads,
		},
		Summarizer: Summarizer{
			Engine:         engine.SummarizerEngine,
			LLMHost:        engine.LLMHost,
			LLMModel:       engine.LLMModel,
			Sentences:      summarize.DefaultSentences,
			TimeoutSeconds: int(summarize.DefaultTimeout.Seconds()),
		},
		Pipeline: Pipeline{
			ComputeWorkers:           defaultComputeWorkers(),
			MaxRuns:                  pipeline.DefaultMaxRuns,
			TranscribeTimeoutSeconds: 3600,
			SummarizeTimeoutSeconds:  300,
			PersistAttempts:          pipeline.DefaultPersistAttempts,
			MaxUploadMiB:             500,
			MaxRecordingMiB:          int(dispatch.DefaultMaxRecordingBytes >> 20),
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

func defaultComputeWorkers() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		return 1
	}
	return n
}
