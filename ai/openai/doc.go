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

// Package openai provides a summarization engine backed by OpenAI-compatible
// chat APIs.
//
// The engine uses the langchaingo library and works with OpenAI itself or a
// local server such as Ollama, LocalAI or vLLM. The model is asked for a JSON
// object holding a list of summary sentences, which keeps responses easy to
// validate and trim to the requested length.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithSummarizerEngine(ai.EngineLLM),
//	    ai.WithLLMHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithLLMModel("qwen2.5:3b"),
//	)
//
//	engine, err := openai.NewSummarizer(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	summary, err := engine.Summarize(ctx, transcript, ai.ProfileEnglish, 3)
package openai
