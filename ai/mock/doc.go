// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.ModelLoader,
// ai.Recognizer, ai.SummaryEngine and ai.Provider for use in unit tests.
// The mocks run without whisper.cpp or a chat server and behave
// deterministically.
//
// # Usage in Tests
//
//	loader := mock.NewMockModelLoader()
//	loader.LoadDelay = 50 * time.Millisecond
//	cache := modelcache.New(loader)
//
//	// ... acquire concurrently ...
//	require.Equal(t, 1, loader.CallCount())
//
// # Default Behavior
//
//   - MockModelLoader: Builds a MockRecognizer per call and counts constructions
//   - MockRecognizer: Returns the segments in Segments (none by default)
//   - MockSummaryEngine: Returns the first N sentences of the input
//
// All mocks are safe for concurrent use.
package mock
