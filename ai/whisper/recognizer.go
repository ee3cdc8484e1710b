package whisper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/poiesic/minutes/ai"
	"github.com/poiesic/minutes/core"
)

// Recognizer runs whisper.cpp against one resolved model file.
type Recognizer struct {
	key       core.ModelKey
	binary    string
	ffmpeg    string
	modelPath string
	vadModel  string
	threads   int
	runner    CommandRunner
	logger    *slog.Logger
}

var _ ai.Recognizer = (*Recognizer)(nil)

// Key reports the configuration the recognizer was built for.
func (r *Recognizer) Key() core.ModelKey {
	return r.key
}

// Transcribe decodes audioPath. Intermediate files live in a private
// temporary directory removed before return.
func (r *Recognizer) Transcribe(ctx context.Context, audioPath string, opts ai.DecodeOptions) (*ai.Recognition, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableAudio, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnreadableAudio, filepath.Base(audioPath))
	}

	workDir, err := os.MkdirTemp("", "minutes-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			r.logger.Warn("failed to remove whisper work dir", "dir", workDir, "err", err)
		}
	}()

	input := audioPath
	if r.ffmpeg != "" {
		input = filepath.Join(workDir, "input-16k-mono.wav")
		args := buildFFmpegArgs(audioPath, input)
		res, err := r.runner.Run(ctx, r.ffmpeg, args...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %w", ErrUnreadableAudio, commandError("ffmpeg", res, err))
		}
	}

	outBase := filepath.Join(workDir, "transcript")
	args := r.buildArgs(input, outBase, opts)
	r.logger.Debug("running whisper", "args", args)
	res, err := r.runner.Run(ctx, r.binary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrUnreadableAudio, commandError("whisper", res, err))
	}

	data, err := os.ReadFile(outBase + ".json")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no JSON output produced", ErrMalformedOutput)
		}
		return nil, err
	}

	recognition, dropped, err := parseOutput(data, opts.WordTimestamps)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		r.logger.Debug("dropped degenerate segments", "count", dropped)
	}
	if opts.Language != "" {
		recognition.LanguageProbability = 1
	}
	return recognition, nil
}

func (r *Recognizer) buildArgs(input, outBase string, opts ai.DecodeOptions) []string {
	args := []string{
		"-m", r.modelPath,
		"-f", input,
		"-of", outBase,
		"-oj", "-ojf",
		"-np",
		"-t", strconv.Itoa(r.threads),
	}
	if opts.BeamSize > 0 {
		args = append(args, "-bs", strconv.Itoa(opts.BeamSize))
	}
	if opts.Language != "" {
		args = append(args, "-l", opts.Language)
	} else {
		args = append(args, "-l", "auto")
	}
	if !opts.ConditionOnPreviousText {
		args = append(args, "-mc", "0")
	}
	if r.key.Device == "cpu" {
		args = append(args, "-ng")
	}
	if opts.VADFilter {
		if r.vadModel == "" {
			r.logger.Warn("voice activity filtering requested but no VAD model is available")
		} else {
			args = append(args,
				"--vad",
				"-vm", r.vadModel,
				"-vt", strconv.FormatFloat(opts.VAD.Threshold, 'f', -1, 64),
				"-vspd", strconv.Itoa(opts.VAD.MinSpeechDurationMs),
				"-vsd", strconv.Itoa(opts.VAD.MinSilenceDurationMs),
			)
		}
	}
	return args
}

// buildFFmpegArgs builds preprocessing args for mono 16k PCM WAV output.
func buildFFmpegArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	}
}
