package openai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/poiesic/minutes/ai"
)

// fakeModel replays canned responses in order.
type fakeModel struct {
	responses []string
	err       error
	calls     int
	lastSys   string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(messages) > 0 {
		if part, ok := messages[0].Parts[0].(llms.TextContent); ok {
			f.lastSys = part.Text
		}
	}
	if len(f.responses) == 0 {
		return &llms.ContentResponse{}, nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: resp}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestSummarizerSummarize(t *testing.T) {
	ctx := context.Background()
	transcript := "We moved the launch to March. Dana will update the roadmap. Lunch is at noon."

	t.Run("parses fenced json and trims to limit", func(t *testing.T) {
		model := &fakeModel{responses: []string{"```json\n{\"summary\": [\"Launch moved to March.\", \"  Dana updates   the roadmap.\", \"Lunch at noon.\", \"Extra.\"]}\n```"}}
		s := newSummarizerWithModel(model)

		summary, err := s.Summarize(ctx, transcript, ai.ProfileEnglish, 3)
		require.NoError(t, err)
		assert.Equal(t, "Launch moved to March. Dana updates the roadmap. Lunch at noon.", summary)
		assert.Contains(t, model.lastSys, "at most 3 sentences")
		assert.Contains(t, model.lastSys, "English")
	})

	t.Run("repairs missing key quote", func(t *testing.T) {
		model := &fakeModel{responses: []string{`{summary": ["Launch moved."]}`}}
		s := newSummarizerWithModel(model)

		summary, err := s.Summarize(ctx, transcript, ai.ProfileFrench, 3)
		require.NoError(t, err)
		assert.Equal(t, "Launch moved.", summary)
		assert.Contains(t, model.lastSys, "French")
	})

	t.Run("retries malformed json", func(t *testing.T) {
		model := &fakeModel{responses: []string{"not json", `{"summary": ["Second try."]}`}}
		s := newSummarizerWithModel(model)

		summary, err := s.Summarize(ctx, transcript, ai.ProfileEnglish, 3)
		require.NoError(t, err)
		assert.Equal(t, "Second try.", summary)
		assert.Equal(t, 2, model.calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		model := &fakeModel{responses: []string{"still not json"}}
		s := newSummarizerWithModel(model)

		_, err := s.Summarize(ctx, transcript, ai.ProfileEnglish, 3)
		assert.ErrorIs(t, err, ErrMalformedResponse)
		assert.Equal(t, maxAttempts, model.calls)
	})

	t.Run("transport error is returned", func(t *testing.T) {
		model := &fakeModel{err: errors.New("connection refused")}
		s := newSummarizerWithModel(model)

		_, err := s.Summarize(ctx, transcript, ai.ProfileEnglish, 3)
		require.Error(t, err)
		assert.Equal(t, 1, model.calls)
	})

	t.Run("empty text skips model", func(t *testing.T) {
		model := &fakeModel{}
		s := newSummarizerWithModel(model)

		summary, err := s.Summarize(ctx, "  \n ", ai.ProfileEnglish, 3)
		require.NoError(t, err)
		assert.Empty(t, summary)
		assert.Zero(t, model.calls)
	})
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "valid input untouched", in: `{"summary": ["a, b"]}`, want: `{"summary": ["a, b"]}`},
		{name: "missing opening quote", in: `{summary": []}`, want: `{"summary": []}`},
		{name: "missing quote after comma", in: `{"a": 1, extra_key": 2}`, want: `{"a": 1, "extra_key": 2}`},
		{name: "bare word in array", in: `["x", yes]`, want: `["x", yes]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.in))
		})
	}
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := buildUserPrompt("hello")
	assert.True(t, strings.HasPrefix(prompt, "Transcript:"))
	assert.Contains(t, prompt, "hello")
}
