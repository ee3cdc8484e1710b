package whisper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/minutes/ai"
	"github.com/poiesic/minutes/core"
)

// Loader builds Recognizers for whisper.cpp model files.
type Loader struct {
	binary   string
	ffmpeg   string
	modelDir string
	vadModel string
	threads  int
	runner   CommandRunner
	stat     func(name string) (os.FileInfo, error)
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithCommandRunner replaces process execution. Tests use this to fake
// whisper.cpp and ffmpeg.
func WithCommandRunner(runner CommandRunner) Option {
	return func(l *Loader) error {
		if runner != nil {
			l.runner = runner
		}
		return nil
	}
}

// WithFFmpeg sets the ffmpeg executable used to convert input to 16 kHz
// mono PCM before decoding. An empty path skips conversion.
// Default is "ffmpeg".
func WithFFmpeg(path string) Option {
	return func(l *Loader) error {
		l.ffmpeg = path
		return nil
	}
}

// WithVADModel sets the silero VAD model file. When unset, the loader
// looks for ggml-silero-v5.1.2.bin in the model directory; if none exists
// voice-activity filtering requests are ignored.
func WithVADModel(path string) Option {
	return func(l *Loader) error {
		l.vadModel = path
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a loader from the AI configuration.
func NewLoader(cfg *ai.Config, opts ...Option) (*Loader, error) {
	if cfg == nil {
		cfg = ai.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Loader{
		binary:   cfg.WhisperBinary,
		ffmpeg:   "ffmpeg",
		modelDir: cfg.ModelDir,
		threads:  cfg.Threads,
		runner:   ExecRunner{},
		stat:     os.Stat,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.logger = l.logger.With("component", "whisper")
	return l, nil
}

var _ ai.ModelLoader = (*Loader)(nil)

// Load resolves the model file for key and checks the executables. The
// returned Recognizer holds no process state; each Transcribe call spawns
// its own whisper.cpp process.
func (l *Loader) Load(ctx context.Context, key core.ModelKey) (ai.Recognizer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !slices.Contains(core.ModelSizes, key.ModelSize) {
		return nil, fmt.Errorf("%w: %w %q", ErrUnsupportedKey, core.ErrInvalidModelSize, key.ModelSize)
	}
	if !slices.Contains(core.Devices, key.Device) {
		return nil, fmt.Errorf("%w: %w %q", ErrUnsupportedKey, core.ErrInvalidDevice, key.Device)
	}
	if !slices.Contains(core.ComputeTypes, key.ComputeType) {
		return nil, fmt.Errorf("%w: %w %q", ErrUnsupportedKey, core.ErrInvalidComputeType, key.ComputeType)
	}

	binary, err := l.runner.LookPath(l.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBinaryNotFound, l.binary, err)
	}

	ffmpeg := ""
	if l.ffmpeg != "" {
		if ffmpeg, err = l.runner.LookPath(l.ffmpeg); err != nil {
			l.logger.Warn("ffmpeg not found, audio will be passed to whisper unconverted", "ffmpeg", l.ffmpeg, "err", err)
			ffmpeg = ""
		}
	}

	modelPath, err := l.resolveModelPath(key)
	if err != nil {
		return nil, err
	}

	l.logger.Info("loaded whisper model", "key", key.String(), "model", modelPath)
	return &Recognizer{
		key:       key,
		binary:    binary,
		ffmpeg:    ffmpeg,
		modelPath: modelPath,
		vadModel:  l.resolveVADModel(),
		threads:   l.threads,
		runner:    l.runner,
		logger:    l.logger.With("model", key.String()),
	}, nil
}

// resolveModelPath prefers a q8_0 quantized file for int8 compute types and
// falls back to the full-precision file.
func (l *Loader) resolveModelPath(key core.ModelKey) (string, error) {
	candidates := make([]string, 0, 2)
	if strings.HasPrefix(key.ComputeType, "int8") {
		candidates = append(candidates, filepath.Join(l.modelDir, "ggml-"+key.ModelSize+"-q8_0.bin"))
	}
	candidates = append(candidates, filepath.Join(l.modelDir, "ggml-"+key.ModelSize+".bin"))

	for _, path := range candidates {
		info, err := l.stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrModelNotFound, candidates[len(candidates)-1])
}

func (l *Loader) resolveVADModel() string {
	path := l.vadModel
	if path == "" {
		path = filepath.Join(l.modelDir, "ggml-silero-v5.1.2.bin")
	}
	if info, err := l.stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}
