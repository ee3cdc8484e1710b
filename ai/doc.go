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

// Package ai provides abstractions for the speech-recognition and
// summarization services used in Minutes.
//
// The package defines the capability interfaces the pipeline depends on,
// keeping the orchestration code independent of any concrete engine:
//
//   - ModelLoader: Constructs a Recognizer for a model configuration
//   - Recognizer: Decodes an audio file into timed segments
//   - SummaryEngine: Condenses a transcript into a few sentences
//   - Provider: Aggregates the services for convenient initialization
//
// # Implementation Packages
//
//   - ai/whisper: Recognizers backed by the whisper.cpp command line tool
//   - ai/lsa: In-process extractive summarizer (latent semantic analysis)
//   - ai/openai: Abstractive summarizer using OpenAI-compatible chat APIs
//   - ai/mock: Test doubles with call counters for unit tests
//
// Production constructors return interface types. Mock constructors return
// concrete types so tests can inject behavior and inspect call counts:
//
//	loader := mock.NewMockModelLoader()
//	loader.LoadFunc = func(ctx context.Context, key core.ModelKey) (ai.Recognizer, error) {
//	    return nil, errors.New("no such device")
//	}
//	count := loader.CallCount()
//
// # Language Profiles
//
// Summarization selects stop words and a stemmer by Profile.
// ProfileForLanguage maps a detected language code onto a profile and falls
// back to English for anything unmapped.
package ai
