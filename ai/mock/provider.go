// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mock

import "github.com/poiesic/minutes/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock loader and summary engine instances.
type MockProvider struct {
	loader *MockModelLoader
	engine *MockSummaryEngine
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider for consistency with production constructors.
// Use GetMockLoader()/GetMockSummarizer() to access concrete types for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		loader: NewMockModelLoader(),
		engine: NewMockSummaryEngine(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(loader *MockModelLoader, engine *MockSummaryEngine) ai.Provider {
	return &MockProvider{
		loader: loader,
		engine: engine,
	}
}

// Loader returns the mock model loader.
func (p *MockProvider) Loader() ai.ModelLoader {
	return p.loader
}

// Summarizer returns the mock summary engine.
func (p *MockProvider) Summarizer() ai.SummaryEngine {
	return p.engine
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockLoader returns the underlying mock loader for test assertions.
func (p *MockProvider) GetMockLoader() *MockModelLoader {
	return p.loader
}

// GetMockSummarizer returns the underlying mock engine for test assertions.
func (p *MockProvider) GetMockSummarizer() *MockSummaryEngine {
	return p.engine
}
