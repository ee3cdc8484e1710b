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

package openai

import (
	"log/slog"

	"github.com/poiesic/minutes/ai"
)

// Provider implements ai.Provider with a chat-model summarizer and a
// caller-supplied recognizer loader.
type Provider struct {
	config     *ai.Config
	loader     ai.ModelLoader
	summarizer *Summarizer
	logger     *slog.Logger
}

// NewProvider creates a provider whose summarizer talks to an
// OpenAI-compatible service. The config is validated and normalized before use.
//
// Returns ai.Provider (not *Provider) to avoid coupling callers to the
// OpenAI-specific implementation.
func NewProvider(config *ai.Config, loader ai.ModelLoader) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	summarizer, err := newSummarizer(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		loader:     loader,
		summarizer: summarizer,
		logger:     slog.Default().With("component", "openai-provider"),
	}, nil
}

// Loader returns the recognizer loader.
func (p *Provider) Loader() ai.ModelLoader {
	return p.loader
}

// Summarizer returns the chat-model summary engine.
func (p *Provider) Summarizer() ai.SummaryEngine {
	return p.summarizer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying client doesn't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
