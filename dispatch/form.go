package dispatch

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/poiesic/minutes/core"
)

// Form field names accepted by ParseFormOptions.
const (
	FieldModelSize               = "model_size"
	FieldDevice                  = "device"
	FieldComputeType             = "compute_type"
	FieldLanguage                = "language"
	FieldBatchSize               = "batch_size"
	FieldBeamSize                = "beam_size"
	FieldWordTimestamps          = "word_timestamps"
	FieldVADFilter               = "vad_filter"
	FieldVADThreshold            = "vad_threshold"
	FieldVADMinSpeechDurationMs  = "vad_min_speech_duration_ms"
	FieldVADMinSilenceDurationMs = "vad_min_silence_duration_ms"
	FieldConditionOnPreviousText = "condition_on_previous_text"
	FieldUseBatchedMode          = "use_batched_mode"
)

// ParseFormOptions converts form values into validated options. Missing or
// blank fields keep their defaults.
func ParseFormOptions(values url.Values) (core.TranscriptionOptions, error) {
	opts := core.DefaultTranscriptionOptions()
	p := formParser{values: values}

	p.str(FieldModelSize, &opts.ModelSize)
	p.str(FieldDevice, &opts.Device)
	p.str(FieldComputeType, &opts.ComputeType)
	p.str(FieldLanguage, &opts.Language)
	p.int(FieldBatchSize, &opts.BatchSize)
	p.int(FieldBeamSize, &opts.BeamSize)
	p.bool(FieldWordTimestamps, &opts.WordTimestamps)
	p.bool(FieldVADFilter, &opts.VADFilter)
	p.float(FieldVADThreshold, &opts.VAD.Threshold)
	p.int(FieldVADMinSpeechDurationMs, &opts.VAD.MinSpeechDurationMs)
	p.int(FieldVADMinSilenceDurationMs, &opts.VAD.MinSilenceDurationMs)
	p.bool(FieldConditionOnPreviousText, &opts.ConditionOnPreviousText)
	p.bool(FieldUseBatchedMode, &opts.UseBatchedMode)
	if p.err != nil {
		return core.TranscriptionOptions{}, p.err
	}

	core.NormalizeOptions(&opts)
	if err := core.ValidateOptions(&opts); err != nil {
		return core.TranscriptionOptions{}, err
	}
	return opts, nil
}

// formParser records the first conversion error and skips the rest.
type formParser struct {
	values url.Values
	err    error
}

func (p *formParser) get(name string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v := strings.TrimSpace(p.values.Get(name))
	return v, v != ""
}

func (p *formParser) str(name string, dst *string) {
	if v, ok := p.get(name); ok {
		*dst = v
	}
}

func (p *formParser) int(name string, dst *int) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidForm, name, v)
		return
	}
	*dst = n
}

func (p *formParser) float(name string, dst *float64) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = fmt.Errorf("%w: %s=%q is not a number", ErrInvalidForm, name, v)
		return
	}
	*dst = f
}

func (p *formParser) bool(name string, dst *bool) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		*dst = true
	case "false", "0", "no", "off":
		*dst = false
	default:
		p.err = fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidForm, name, v)
	}
}
