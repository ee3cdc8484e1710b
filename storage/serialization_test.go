package storage

import (
	"testing"
	"time"

	"github.com/poiesic/minutes/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalTranscript(t *testing.T) {
	t.Run("round trip keeps segments and meeting", func(t *testing.T) {
		original := &core.Transcript{
			ID:        "trn-1",
			JobID:     "job-1",
			MeetingID: "m-1",
			AudioPath: "/tmp/uploads/a.wav",
			Language:  "vi",
			Segments: []core.TranscriptSegment{
				{
					Index: 0, Seek: 0, Start: 0, End: 1.5, Text: "xin chào",
					Tokens: []int{50364, 2945, -1}, Temperature: 0.2, AvgLogProb: -0.31,
					CompressionRatio: 1.12, NoSpeechProb: 0.01,
					Words: []core.Word{
						{Word: "xin", Start: 0, End: 0.7, Probability: 0.93},
						{Word: "chào", Start: 0.7, End: 1.5, Probability: 0.88},
					},
				},
				{Index: 1, Seek: 300, Start: 1.5, End: 3, Text: "các bạn"},
			},
			Text:      "xin chào các bạn",
			Summary:   "xin chào các bạn",
			CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		}

		data, err := MarshalTranscript(original)
		require.NoError(t, err)

		decoded, err := UnmarshalTranscript(data)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})

	t.Run("zero time and empty slices decode to zero values", func(t *testing.T) {
		original := &core.Transcript{ID: "trn-2", JobID: "job-2", Text: ""}

		data, err := MarshalTranscript(original)
		require.NoError(t, err)

		decoded, err := UnmarshalTranscript(data)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
		assert.True(t, decoded.CreatedAt.IsZero())
		assert.Nil(t, decoded.Segments)
	})

	t.Run("local time decodes as UTC", func(t *testing.T) {
		loc := time.FixedZone("ICT", 7*3600)
		created := time.Date(2025, 3, 1, 17, 0, 0, 123456000, loc)
		data, err := MarshalTranscript(&core.Transcript{ID: "trn-3", CreatedAt: created})
		require.NoError(t, err)

		decoded, err := UnmarshalTranscript(data)
		require.NoError(t, err)
		assert.True(t, created.Equal(decoded.CreatedAt))
		assert.Equal(t, time.UTC, decoded.CreatedAt.Location())
	})

	t.Run("nil transcript", func(t *testing.T) {
		_, err := MarshalTranscript(nil)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := UnmarshalTranscript(nil)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("truncated document", func(t *testing.T) {
		data, err := MarshalTranscript(&core.Transcript{ID: "trn-4", Text: "truncated"})
		require.NoError(t, err)

		_, err = UnmarshalTranscript(data[:len(data)-4])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		data, err := MarshalTranscript(&core.Transcript{ID: "trn-5"})
		require.NoError(t, err)

		_, err = UnmarshalTranscript(append(data, 0x01))
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("legacy JSON document is rejected", func(t *testing.T) {
		_, err := UnmarshalTranscript([]byte(`{"id":"trn-6"}`))
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}
