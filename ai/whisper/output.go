package whisper

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/minutes/ai"
	"github.com/poiesic/minutes/core"
)

// fullOutput mirrors the subset of whisper.cpp -ojf output we consume.
type fullOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []outputSegment `json:"transcription"`
}

type offsets struct {
	From int64 `json:"from"` // milliseconds
	To   int64 `json:"to"`
}

type outputSegment struct {
	Offsets offsets       `json:"offsets"`
	Text    string        `json:"text"`
	Tokens  []outputToken `json:"tokens"`
}

type outputToken struct {
	Text    string  `json:"text"`
	ID      int     `json:"id"`
	P       float64 `json:"p"`
	Offsets offsets `json:"offsets"`
}

// special reports whether a token is a control token such as [_BEG_] or
// [_TT_150].
func (t outputToken) special() bool {
	return strings.HasPrefix(t.Text, "[_") && strings.HasSuffix(t.Text, "]")
}

// parseOutput converts whisper.cpp JSON into a Recognition. Segments with
// no text or whose end does not follow their start are dropped and counted.
func parseOutput(data []byte, wordTimestamps bool) (*ai.Recognition, int, error) {
	var out fullOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	segments := make([]core.TranscriptSegment, 0, len(out.Transcription))
	dropped := 0
	for _, raw := range out.Transcription {
		seg := core.TranscriptSegment{
			Index: len(segments),
			Seek:  int(raw.Offsets.From / 10),
			Start: float64(raw.Offsets.From) / 1000,
			End:   float64(raw.Offsets.To) / 1000,
			Text:  raw.Text,
		}
		if strings.TrimSpace(seg.Text) == "" || core.ValidateSegment(&seg) != nil {
			dropped++
			continue
		}

		var logSum float64
		var counted int
		for _, tok := range raw.Tokens {
			if tok.special() {
				continue
			}
			seg.Tokens = append(seg.Tokens, tok.ID)
			if tok.P > 0 {
				logSum += math.Log(tok.P)
				counted++
			}
			if wordTimestamps && strings.TrimSpace(tok.Text) != "" {
				seg.Words = append(seg.Words, core.Word{
					Word:        tok.Text,
					Start:       float64(tok.Offsets.From) / 1000,
					End:         float64(tok.Offsets.To) / 1000,
					Probability: tok.P,
				})
			}
		}
		if counted > 0 {
			seg.AvgLogProb = logSum / float64(counted)
		}
		seg.CompressionRatio = compressionRatio(seg.Text)
		segments = append(segments, seg)
	}

	return &ai.Recognition{
		Segments: segments,
		Language: out.Result.Language,
	}, dropped, nil
}

// compressionRatio is the zlib compression ratio whisper uses to flag
// repetitive, likely hallucinated, output.
func compressionRatio(text string) float64 {
	if text == "" {
		return 0
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write([]byte(text))
	_ = zw.Close()
	if buf.Len() == 0 {
		return 0
	}
	return float64(len(text)) / float64(buf.Len())
}
