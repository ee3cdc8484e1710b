package core

// VADParameters tunes voice-activity filtering.
type VADParameters struct {
	Threshold            float64 `json:"threshold"`
	MinSpeechDurationMs  int     `json:"min_speech_duration_ms"`
	MinSilenceDurationMs int     `json:"min_silence_duration_ms"`
}

// TranscriptionOptions is the typed, validated configuration of one job.
type TranscriptionOptions struct {
	ModelSize               string        `json:"model_size"`
	Device                  string        `json:"device"`
	ComputeType             string        `json:"compute_type"`
	Language                string        `json:"language,omitempty"` // empty means auto-detect
	BatchSize               int           `json:"batch_size"`
	BeamSize                int           `json:"beam_size"`
	WordTimestamps          bool          `json:"word_timestamps"`
	VADFilter               bool          `json:"vad_filter"`
	VAD                     VADParameters `json:"vad_parameters"`
	ConditionOnPreviousText bool          `json:"condition_on_previous_text"`
	UseBatchedMode          bool          `json:"use_batched_mode"`
}

// Key returns the model cache key for these options.
func (o TranscriptionOptions) Key() ModelKey {
	return ModelKey{
		ModelSize:   o.ModelSize,
		Device:      o.Device,
		ComputeType: o.ComputeType,
	}
}

// DefaultVADParameters returns the silero-style defaults.
func DefaultVADParameters() VADParameters {
	return VADParameters{
		Threshold:            0.5,
		MinSpeechDurationMs:  250,
		MinSilenceDurationMs: 2000,
	}
}

// DefaultTranscriptionOptions returns the options used when a request leaves
// a field unset.
func DefaultTranscriptionOptions() TranscriptionOptions {
	return TranscriptionOptions{
		ModelSize:               "large-v3",
		Device:                  "cpu",
		ComputeType:             "int8",
		BatchSize:               16,
		BeamSize:                5,
		WordTimestamps:          false,
		VADFilter:               true,
		VAD:                     DefaultVADParameters(),
		ConditionOnPreviousText: true,
		UseBatchedMode:          true,
	}
}

// MeetingTranscriptionOptions returns the fixed options used for meeting
// recordings.
func MeetingTranscriptionOptions() TranscriptionOptions {
	opts := DefaultTranscriptionOptions()
	opts.ModelSize = "base"
	opts.Language = "vi"
	opts.WordTimestamps = false
	opts.VADFilter = true
	return opts
}

// ModelSizes lists the recognizer sizes accepted at the boundary.
var ModelSizes = []string{
	"tiny", "tiny.en",
	"base", "base.en",
	"small", "small.en",
	"medium", "medium.en",
	"large-v1", "large-v2", "large-v3", "large-v3-turbo", "turbo",
	"distil-large-v3",
}

// Devices lists the accepted execution devices.
var Devices = []string{"cpu", "cuda", "auto"}

// ComputeTypes lists the accepted numeric precision modes.
var ComputeTypes = []string{
	"default", "int8", "int8_float16", "int8_float32", "int16",
	"float16", "float32", "bfloat16",
}
