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
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/minutes/ai"
)

// maxAttempts bounds retries on malformed JSON.
const maxAttempts = 3

// ErrMalformedResponse indicates the model never returned parseable JSON.
var ErrMalformedResponse = errors.New("openai: malformed summary response")

// Summarizer implements ai.SummaryEngine using OpenAI-compatible chat APIs.
type Summarizer struct {
	client llms.Model
	logger *slog.Logger
}

// summaryResponse is the JSON object requested from the model.
type summaryResponse struct {
	Summary []string `json:"summary"`
}

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.LLMHost),
		openai.WithToken("none"),
		openai.WithModel(config.LLMModel),
	)
	if err != nil {
		return nil, err
	}

	return newSummarizerWithModel(client), nil
}

func newSummarizerWithModel(client llms.Model) *Summarizer {
	return &Summarizer{
		client: client,
		logger: slog.Default().With("component", "openai-summarizer"),
	}
}

// NewSummarizer creates a summarizer using the provided configuration.
//
// Returns ai.SummaryEngine interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.SummaryEngine, error) {
	return newSummarizer(config)
}

var _ ai.SummaryEngine = (*Summarizer)(nil)

// Summarize asks the model for at most sentences sentences. Transport errors
// are returned immediately; malformed JSON is retried.
func (s *Summarizer) Summarize(ctx context.Context, text string, profile ai.Profile, sentences int) (string, error) {
	text = collapseWhitespace(text)
	if text == "" || sentences < 1 {
		return "", nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(profile, sentences))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildUserPrompt(text))},
		},
	}

	var result summaryResponse
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			s.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return "", err
		}

		if len(response.Choices) < 1 {
			s.logger.Debug("no choices returned from model")
			return "", nil
		}

		responseText := repairJSON(stripCodeFences(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			s.logger.Warn("error parsing summary response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		s.logger.Error("failed to parse summary response after retries", "err", lastErr)
		return "", errors.Join(ErrMalformedResponse, lastErr)
	}

	kept := make([]string, 0, sentences)
	for _, sentence := range result.Summary {
		if sentence = collapseWhitespace(sentence); sentence != "" {
			kept = append(kept, sentence)
		}
		if len(kept) == sentences {
			break
		}
	}

	s.logger.Debug("summarized transcript", "returned", len(result.Summary), "kept", len(kept))
	return strings.Join(kept, " "), nil
}
