package dispatch

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/minutes/core"
)

func TestParseFormOptions(t *testing.T) {
	t.Run("empty form keeps defaults", func(t *testing.T) {
		opts, err := ParseFormOptions(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, core.DefaultTranscriptionOptions(), opts)
	})

	t.Run("overrides", func(t *testing.T) {
		values := url.Values{
			FieldModelSize:               {" Small "},
			FieldDevice:                  {"CUDA"},
			FieldComputeType:             {"float16"},
			FieldLanguage:                {"EN"},
			FieldBatchSize:               {"8"},
			FieldBeamSize:                {"2"},
			FieldWordTimestamps:          {"TRUE"},
			FieldVADFilter:               {"off"},
			FieldVADThreshold:            {"0.35"},
			FieldVADMinSpeechDurationMs:  {"100"},
			FieldVADMinSilenceDurationMs: {"500"},
			FieldConditionOnPreviousText: {"0"},
			FieldUseBatchedMode:          {"no"},
		}
		opts, err := ParseFormOptions(values)
		require.NoError(t, err)

		assert.Equal(t, "small", opts.ModelSize)
		assert.Equal(t, "cuda", opts.Device)
		assert.Equal(t, "float16", opts.ComputeType)
		assert.Equal(t, "en", opts.Language)
		assert.Equal(t, 8, opts.BatchSize)
		assert.Equal(t, 2, opts.BeamSize)
		assert.True(t, opts.WordTimestamps)
		assert.False(t, opts.VADFilter)
		assert.InDelta(t, 0.35, opts.VAD.Threshold, 1e-9)
		assert.Equal(t, 100, opts.VAD.MinSpeechDurationMs)
		assert.Equal(t, 500, opts.VAD.MinSilenceDurationMs)
		assert.False(t, opts.ConditionOnPreviousText)
		assert.False(t, opts.UseBatchedMode)
	})

	t.Run("blank fields are ignored", func(t *testing.T) {
		opts, err := ParseFormOptions(url.Values{FieldBeamSize: {"  "}, FieldLanguage: {""}})
		require.NoError(t, err)
		assert.Equal(t, 5, opts.BeamSize)
		assert.Empty(t, opts.Language)
	})

	t.Run("conversion errors", func(t *testing.T) {
		cases := url.Values{
			FieldBeamSize:       {"five"},
			FieldVADThreshold:   {"half"},
			FieldWordTimestamps: {"maybe"},
		}
		for field, value := range cases {
			_, err := ParseFormOptions(url.Values{field: value})
			assert.ErrorIs(t, err, ErrInvalidForm, field)
			assert.Contains(t, err.Error(), field)
		}
	})

	t.Run("domain validation", func(t *testing.T) {
		_, err := ParseFormOptions(url.Values{FieldModelSize: {"gigantic"}})
		assert.ErrorIs(t, err, core.ErrInvalidModelSize)

		_, err = ParseFormOptions(url.Values{FieldBeamSize: {"0"}})
		assert.ErrorIs(t, err, core.ErrInvalidOptions)

		_, err = ParseFormOptions(url.Values{FieldVADThreshold: {"1.5"}})
		assert.ErrorIs(t, err, core.ErrInvalidVADParameters)
	})
}
