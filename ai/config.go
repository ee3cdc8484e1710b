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

package ai

import (
	"errors"
	"slices"
	"strings"
)

// Summarizer engine identifiers.
const (
	EngineLSA = "lsa"
	EngineLLM = "llm"
)

// Config holds configuration for the speech and summarization providers.
type Config struct {
	// WhisperBinary is the whisper.cpp command line executable.
	// Example: "whisper-cli", "/opt/whisper.cpp/build/bin/whisper-cli"
	WhisperBinary string

	// ModelDir holds ggml model files named ggml-<size>.bin.
	ModelDir string

	// Threads is the number of decoder threads handed to each recognizer run.
	// Default: 4
	Threads int

	// SummarizerEngine selects the summarization backend: "lsa" runs the
	// in-process extractive summarizer, "llm" calls an OpenAI-compatible server.
	SummarizerEngine string

	// LLMHost is the base URL for the OpenAI-compatible chat API.
	// Example: "http://localhost:11434/v1"
	LLMHost string

	// LLMModel is the chat model used when SummarizerEngine is "llm".
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	LLMModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithWhisperBinary sets the whisper.cpp executable.
func WithWhisperBinary(path string) ConfigOption {
	return func(c *Config) {
		c.WhisperBinary = path
	}
}

// WithModelDir sets the directory holding ggml model files.
func WithModelDir(dir string) ConfigOption {
	return func(c *Config) {
		c.ModelDir = dir
	}
}

// WithThreads sets the decoder thread count.
func WithThreads(n int) ConfigOption {
	return func(c *Config) {
		c.Threads = n
	}
}

// WithSummarizerEngine selects the summarization backend.
func WithSummarizerEngine(engine string) ConfigOption {
	return func(c *Config) {
		c.SummarizerEngine = engine
	}
}

// WithLLMHost sets the chat service host URL.
func WithLLMHost(host string) ConfigOption {
	return func(c *Config) {
		c.LLMHost = host
	}
}

// WithLLMModel sets the chat model identifier.
func WithLLMModel(model string) ConfigOption {
	return func(c *Config) {
		c.LLMModel = model
	}
}

// DefaultConfig returns a Config suited to a local whisper.cpp build and
// the in-process extractive summarizer.
func DefaultConfig() *Config {
	return &Config{
		WhisperBinary:    "whisper-cli",
		ModelDir:         "models",
		Threads:          4,
		SummarizerEngine: EngineLSA,
		LLMHost:          "http://localhost:11434/v1",
		LLMModel:         "qwen2.5:3b",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithModelDir("/var/lib/minutes/models"),
//	    WithSummarizerEngine("llm"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration into canonical form. The LLM host gets
// the /v1 suffix OpenAI-compatible servers expect.
func (c *Config) Normalize() {
	c.SummarizerEngine = strings.ToLower(strings.TrimSpace(c.SummarizerEngine))
	if c.LLMHost != "" && !strings.HasSuffix(c.LLMHost, "/v1") {
		c.LLMHost = strings.TrimSuffix(c.LLMHost, "/")
		c.LLMHost = c.LLMHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.WhisperBinary == "" {
		return errors.New("ai config: WhisperBinary is required")
	}
	if c.ModelDir == "" {
		return errors.New("ai config: ModelDir is required")
	}
	if c.Threads < 1 {
		return errors.New("ai config: Threads must be at least 1")
	}
	if !slices.Contains([]string{EngineLSA, EngineLLM}, c.SummarizerEngine) {
		return errors.New("ai config: SummarizerEngine must be \"lsa\" or \"llm\"")
	}
	if c.SummarizerEngine == EngineLLM {
		if c.LLMHost == "" {
			return errors.New("ai config: LLMHost is required for the llm engine")
		}
		if c.LLMModel == "" {
			return errors.New("ai config: LLMModel is required for the llm engine")
		}
	}
	return nil
}
