package mock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/minutes/ai"
	"github.com/poiesic/minutes/core"
)

// MockModelLoader is a test double for ai.ModelLoader.
// It counts constructions so tests can assert construct-once behavior.
type MockModelLoader struct {
	// LoadFunc is called by Load if set.
	// If nil, a new MockRecognizer is built from the Recognizer template.
	LoadFunc func(ctx context.Context, key core.ModelKey) (ai.Recognizer, error)

	// LoadDelay simulates an expensive construction.
	LoadDelay time.Duration

	// Recognizer is the template copied into each default-built recognizer.
	Recognizer MockRecognizer

	callCount atomic.Int64
	mu        sync.Mutex
	perKey    map[core.ModelKey]int
}

// NewMockModelLoader creates a mock loader with default behavior.
func NewMockModelLoader() *MockModelLoader {
	return &MockModelLoader{perKey: make(map[core.ModelKey]int)}
}

// Load builds a recognizer for key.
func (m *MockModelLoader) Load(ctx context.Context, key core.ModelKey) (ai.Recognizer, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	if m.perKey == nil {
		m.perKey = make(map[core.ModelKey]int)
	}
	m.perKey[key]++
	m.mu.Unlock()

	if m.LoadDelay > 0 {
		select {
		case <-time.After(m.LoadDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, key)
	}

	r := &MockRecognizer{
		TranscribeFunc: m.Recognizer.TranscribeFunc,
		Segments:       m.Recognizer.Segments,
		Language:       m.Recognizer.Language,
		Delay:          m.Recognizer.Delay,
	}
	r.key = key
	return r, nil
}

// CallCount returns the number of Load calls.
func (m *MockModelLoader) CallCount() int {
	return int(m.callCount.Load())
}

// CallCountFor returns the number of Load calls for one key.
func (m *MockModelLoader) CallCountFor(key core.ModelKey) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perKey[key]
}

// Reset clears the call counts.
func (m *MockModelLoader) Reset() {
	m.callCount.Store(0)
	m.mu.Lock()
	m.perKey = make(map[core.ModelKey]int)
	m.mu.Unlock()
}

// MockRecognizer is a test double for ai.Recognizer.
type MockRecognizer struct {
	// TranscribeFunc is called by Transcribe if set.
	TranscribeFunc func(ctx context.Context, audioPath string, opts ai.DecodeOptions) (*ai.Recognition, error)

	// Segments are returned by the default Transcribe.
	Segments []core.TranscriptSegment

	// Language is reported by the default Transcribe. Defaults to "en".
	Language string

	// Delay simulates inference time.
	Delay time.Duration

	key       core.ModelKey
	callCount atomic.Int64
}

// NewMockRecognizer creates a recognizer that returns segments.
func NewMockRecognizer(key core.ModelKey, segments ...core.TranscriptSegment) *MockRecognizer {
	return &MockRecognizer{key: key, Segments: segments}
}

// Transcribe returns the configured segments.
func (r *MockRecognizer) Transcribe(ctx context.Context, audioPath string, opts ai.DecodeOptions) (*ai.Recognition, error) {
	r.callCount.Add(1)

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if r.TranscribeFunc != nil {
		return r.TranscribeFunc(ctx, audioPath, opts)
	}

	lang := opts.Language
	if lang == "" {
		lang = r.Language
	}
	if lang == "" {
		lang = "en"
	}
	segments := make([]core.TranscriptSegment, len(r.Segments))
	copy(segments, r.Segments)
	return &ai.Recognition{
		Segments:            segments,
		Language:            lang,
		LanguageProbability: 0.99,
	}, nil
}

// Key reports the configuration the recognizer was built for.
func (r *MockRecognizer) Key() core.ModelKey {
	return r.key
}

// CallCount returns the number of Transcribe calls.
func (r *MockRecognizer) CallCount() int {
	return int(r.callCount.Load())
}
