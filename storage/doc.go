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

// Package storage provides the storage abstraction layer for minutes.
//
// Two record kinds are persisted:
//
//   - Transcripts: durable artifacts written when a meeting recording
//     finishes processing (TranscriptRepository, backed by BadgerDB).
//   - Meetings: the meeting record store recording results are written
//     back onto (MeetingRepository, backed by SQLite).
//
// The in-memory job table is not part of this layer. Jobs do
// not survive a process restart, transcripts do.
//
// # Constructor Return Type Pattern
//
// Backend packages are opened as:
//
//	repo, err := badger.NewTranscriptRepository(backend) // storage.TranscriptRepository
//	meetings, err := sqlite.Open(path, logger)           // *sqlite.Store, a storage.MeetingRepository
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
