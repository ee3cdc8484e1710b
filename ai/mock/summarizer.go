package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/minutes/ai"
)

// MockSummaryEngine is a test double for ai.SummaryEngine.
// It allows custom behavior injection via function fields.
type MockSummaryEngine struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, returns the leading sentences of the text.
	SummarizeFunc func(ctx context.Context, text string, profile ai.Profile, sentences int) (string, error)

	callCount   atomic.Int64
	lastProfile atomic.Value
}

// NewMockSummaryEngine creates a mock engine with default behavior.
func NewMockSummaryEngine() *MockSummaryEngine {
	return &MockSummaryEngine{}
}

// Summarize returns the first sentences sentences of text.
func (m *MockSummaryEngine) Summarize(ctx context.Context, text string, profile ai.Profile, sentences int) (string, error) {
	m.callCount.Add(1)
	m.lastProfile.Store(profile)

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text, profile, sentences)
	}

	return leadingSentences(text, sentences), nil
}

// CallCount returns the number of Summarize calls.
func (m *MockSummaryEngine) CallCount() int {
	return int(m.callCount.Load())
}

// LastProfile returns the profile passed to the most recent call.
func (m *MockSummaryEngine) LastProfile() ai.Profile {
	p, _ := m.lastProfile.Load().(ai.Profile)
	return p
}

func leadingSentences(text string, n int) string {
	var out []string
	for _, part := range strings.SplitAfter(text, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == n {
			break
		}
	}
	return strings.Join(out, " ")
}
