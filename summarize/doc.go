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

// Package summarize runs a summary engine off the caller's goroutine on a
// bounded worker pool and converts every outcome into a string.
//
// Short input never reaches the engine: Summarize returns SentinelTooShort
// for trimmed text under MinTextLength characters. Engine errors, panics
// and timeouts become a SentinelFailurePrefix message, so summarization can
// never fail the job that asked for it.
//
// SummarizeRequest is the entry point for callers that summarize
// free-standing text. It additionally rejects empty input and answers
// SentinelTooFewWords below MinWordCount words.
package summarize
