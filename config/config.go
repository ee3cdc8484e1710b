package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/poiesic/minutes/ai"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultFileName is looked up in the working directory when Load is given
// no path.
const DefaultFileName = "minutes.toml"

// Server contains HTTP listener settings.
type Server struct {
	Addr                   string `toml:"addr"`
	MaxBodyMiB             int    `toml:"max_body_mib"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
}

// Storage contains on-disk locations.
type Storage struct {
	DataDir       string `toml:"data_dir"`
	UploadDir     string `toml:"upload_dir"`     // Default: <data_dir>/uploads
	TranscriptDir string `toml:"transcript_dir"` // Default: <data_dir>/transcripts
	MeetingDB     string `toml:"meeting_db"`     // Default: <data_dir>/meetings.db
	// InMemoryTranscripts keeps transcript artifacts in memory only.
	InMemoryTranscripts bool `toml:"in_memory_transcripts"`
}

// Whisper contains speech recognition settings.
type Whisper struct {
	Binary          string `toml:"binary"`
	FFmpeg          string `toml:"ffmpeg"`
	ModelDir        string `toml:"model_dir"`
	VADModel        string `toml:"vad_model"`
	Threads         int    `toml:"threads"`
	MaxCachedModels int    `toml:"max_cached_models"` // 0 keeps every model loaded
}

// Summarizer contains summarization settings.
type Summarizer struct {
	Engine         string `toml:"engine"` // "lsa" or "llm"
	LLMHost        string `toml:"llm_host"`
	LLMModel       string `toml:"llm_model"`
	Sentences      int    `toml:"sentences"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Pipeline contains job execution limits.
type Pipeline struct {
	ComputeWorkers           int `toml:"compute_workers"`
	MaxRuns                  int `toml:"max_runs"`
	TranscribeTimeoutSeconds int `toml:"transcribe_timeout_seconds"` // 0 disables
	SummarizeTimeoutSeconds  int `toml:"summarize_timeout_seconds"`  // 0 disables
	PersistAttempts          int `toml:"persist_attempts"`
	MaxUploadMiB             int `toml:"max_upload_mib"` // 0 disables
	MaxRecordingMiB          int `toml:"max_recording_mib"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// Config encapsulates all configuration values for the service.
//
// Configuration sections by subsystem:
//   - Server: HTTP listener
//   - Storage: upload directory, transcript store and meeting database
//   - Whisper: recognizer executable and models
//   - Summarizer: summary engine selection
//   - Pipeline: worker counts, timeouts and upload caps
//   - Logging: log level and format
type Config struct {
	Server     Server     `toml:"server"`
	Storage    Storage    `toml:"storage"`
	Whisper    Whisper    `toml:"whisper"`
	Summarizer Summarizer `toml:"summarizer"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Logging    Logging    `toml:"logging"`
}

// Load reads, normalizes and validates a configuration file. An empty path
// falls back to DefaultFileName in the working directory; when that is
// absent too, defaults are used and loaded reports false. An explicit path
// that does not exist is an error.
func Load(path string) (cfg *Config, loaded bool, err error) {
	c := Default()

	resolved := strings.TrimSpace(path)
	explicit := resolved != ""
	if !explicit {
		resolved = DefaultFileName
	}

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&c); err != nil {
			return nil, false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
		loaded = true
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, false, fmt.Errorf("open config: %w", err)
	}

	if err := c.normalize(); err != nil {
		return nil, false, err
	}
	if err := c.Validate(); err != nil {
		return nil, false, err
	}
	return &c, loaded, nil
}

// Parse decodes TOML text on top of the defaults, then normalizes and
// validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// EnsureDirectories creates the directories the service writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Storage.DataDir, c.Storage.UploadDir, filepath.Dir(c.Storage.MeetingDB)}
	if !c.Storage.InMemoryTranscripts {
		dirs = append(dirs, c.Storage.TranscriptDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// AI returns the provider configuration.
func (c *Config) AI() *ai.Config {
	return ai.NewConfig(
		ai.WithWhisperBinary(c.Whisper.Binary),
		ai.WithModelDir(c.Whisper.ModelDir),
		ai.WithThreads(c.Whisper.Threads),
		ai.WithSummarizerEngine(c.Summarizer.Engine),
		ai.WithLLMHost(c.Summarizer.LLMHost),
		ai.WithLLMModel(c.Summarizer.LLMModel),
	)
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, _ := ParseLevel(c.Logging.Level)
	return level
}

// MaxBodyBytes returns the HTTP request body cap.
func (c *Config) MaxBodyBytes() int64 {
	return mib(c.Server.MaxBodyMiB)
}

// MaxUploadBytes returns the transcription upload cap; zero means none.
func (c *Config) MaxUploadBytes() int64 {
	return mib(c.Pipeline.MaxUploadMiB)
}

// MaxRecordingBytes returns the meeting recording cap.
func (c *Config) MaxRecordingBytes() int64 {
	return mib(c.Pipeline.MaxRecordingMiB)
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return seconds(c.Server.ShutdownTimeoutSeconds)
}

// TranscribeTimeout returns the transcription stage bound; zero means none.
func (c *Config) TranscribeTimeout() time.Duration {
	return seconds(c.Pipeline.TranscribeTimeoutSeconds)
}

// SummarizeTimeout returns the summarization bound; zero means none.
func (c *Config) SummarizeTimeout() time.Duration {
	return seconds(c.Pipeline.SummarizeTimeoutSeconds)
}

// SummarizerTimeout returns the per-call engine bound.
func (c *Config) SummarizerTimeout() time.Duration {
	return seconds(c.Summarizer.TimeoutSeconds)
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

func mib(n int) int64 {
	return int64(n) << 20
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
