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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidOptions indicates TranscriptionOptions failed validation.
	ErrInvalidOptions = errors.New("invalid transcription options")

	// ErrInvalidModelSize indicates an unknown model size identifier.
	ErrInvalidModelSize = errors.New("invalid model size")

	// ErrInvalidDevice indicates an unknown execution device.
	ErrInvalidDevice = errors.New("invalid device")

	// ErrInvalidComputeType indicates an unknown numeric precision mode.
	ErrInvalidComputeType = errors.New("invalid compute type")

	// ErrInvalidBeamSize indicates a beam width below 1.
	ErrInvalidBeamSize = errors.New("beam size must be at least 1")

	// ErrInvalidBatchSize indicates a batch size below 1 in batched mode.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")

	// ErrInvalidVADParameters indicates out-of-range VAD tuning.
	ErrInvalidVADParameters = errors.New("invalid VAD parameters")

	// ErrInvalidSegment indicates a segment whose end does not follow its start.
	ErrInvalidSegment = errors.New("invalid transcript segment")

	// ErrInvalidTranscript indicates a Transcript failed validation.
	ErrInvalidTranscript = errors.New("invalid transcript")

	// ErrInvalidStatus indicates an unknown job status.
	ErrInvalidStatus = errors.New("invalid job status")

	// ErrInvalidMeetingStatus indicates an unknown meeting status.
	ErrInvalidMeetingStatus = errors.New("invalid meeting status")

	// ErrBadLength indicates an encoded slice length that cannot fit the input.
	ErrBadLength = errors.New("encoded length out of range")
)

// Lookup errors
var (
	// ErrJobNotFound indicates no job exists with the given id.
	ErrJobNotFound = errors.New("job not found")
)
