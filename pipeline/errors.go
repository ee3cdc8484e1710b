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

package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrJobStoreRequired indicates that a job store was not provided.
	ErrJobStoreRequired = errors.New("job store is required")

	// ErrModelSourceRequired indicates that a model source was not provided.
	ErrModelSourceRequired = errors.New("model source is required")

	// ErrSummarizerRequired indicates that a summarizer was not provided.
	ErrSummarizerRequired = errors.New("summarizer is required")

	// ErrMeetingStoresRequired indicates a meeting run on a coordinator
	// without transcript and meeting repositories.
	ErrMeetingStoresRequired = errors.New("meeting runs require transcript and meeting repositories")

	// ErrQueueFull indicates the coordinator cannot accept more runs.
	ErrQueueFull = errors.New("pipeline queue is full")

	// ErrClosed indicates the coordinator has been released.
	ErrClosed = errors.New("pipeline is closed")

	// ErrTimeout indicates a stage exceeded its time budget.
	ErrTimeout = errors.New("timed out")

	// ErrInvalidMaxAttempts is returned for a persist retry budget below one.
	ErrInvalidMaxAttempts = errors.New("persist attempts must be at least 1")
)

// Stage names a pipeline step.
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageSummarize  Stage = "summarize"
	StagePersist    Stage = "persist"
)

// StageError is a stage-aware pipeline failure. Its message is what gets
// stored on a failed job.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StageOf returns the stage that produced err, or "" if err did not come
// from a stage.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
