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

import (
	"fmt"
	"slices"
	"strings"
)

// NormalizeOptions puts options into canonical form: identifiers are
// lowercased and trimmed, and zero-valued VAD tuning is replaced with defaults.
func NormalizeOptions(opts *TranscriptionOptions) {
	opts.ModelSize = strings.ToLower(strings.TrimSpace(opts.ModelSize))
	opts.Device = strings.ToLower(strings.TrimSpace(opts.Device))
	opts.ComputeType = strings.ToLower(strings.TrimSpace(opts.ComputeType))
	opts.Language = strings.ToLower(strings.TrimSpace(opts.Language))
	if opts.VAD == (VADParameters{}) {
		opts.VAD = DefaultVADParameters()
	}
}

// ValidateOptions validates TranscriptionOptions according to domain rules.
//
// Validation rules:
//   - ModelSize, Device and ComputeType must be known identifiers
//   - BeamSize must be at least 1
//   - BatchSize must be at least 1 when batched mode is on
//   - VAD threshold must lie in [0, 1]; durations must not be negative
//
// Language is not validated; unknown codes are left to the recognizer.
func ValidateOptions(opts *TranscriptionOptions) error {
	if opts == nil {
		return fmt.Errorf("%w: options are nil", ErrInvalidOptions)
	}

	if !slices.Contains(ModelSizes, opts.ModelSize) {
		return fmt.Errorf("%w: %w %q", ErrInvalidOptions, ErrInvalidModelSize, opts.ModelSize)
	}

	if !slices.Contains(Devices, opts.Device) {
		return fmt.Errorf("%w: %w %q", ErrInvalidOptions, ErrInvalidDevice, opts.Device)
	}

	if !slices.Contains(ComputeTypes, opts.ComputeType) {
		return fmt.Errorf("%w: %w %q", ErrInvalidOptions, ErrInvalidComputeType, opts.ComputeType)
	}

	if opts.BeamSize < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, ErrInvalidBeamSize)
	}

	if opts.UseBatchedMode && opts.BatchSize < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, ErrInvalidBatchSize)
	}

	if opts.VADFilter {
		if err := ValidateVADParameters(opts.VAD); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
	}

	return nil
}

// ValidateVADParameters checks VAD tuning ranges.
func ValidateVADParameters(vad VADParameters) error {
	if vad.Threshold < 0 || vad.Threshold > 1 {
		return fmt.Errorf("%w: threshold %.2f outside [0, 1]", ErrInvalidVADParameters, vad.Threshold)
	}
	if vad.MinSpeechDurationMs < 0 {
		return fmt.Errorf("%w: negative min speech duration", ErrInvalidVADParameters)
	}
	if vad.MinSilenceDurationMs < 0 {
		return fmt.Errorf("%w: negative min silence duration", ErrInvalidVADParameters)
	}
	return nil
}

// ValidateSegment checks that a segment ends after it starts.
// Ordering between segments is not enforced.
func ValidateSegment(seg *TranscriptSegment) error {
	if seg == nil {
		return fmt.Errorf("%w: segment is nil", ErrInvalidSegment)
	}
	if seg.Start < 0 {
		return fmt.Errorf("%w: segment %d starts before zero", ErrInvalidSegment, seg.Index)
	}
	if seg.End <= seg.Start {
		return fmt.Errorf("%w: segment %d ends at %.3f, not after start %.3f",
			ErrInvalidSegment, seg.Index, seg.End, seg.Start)
	}
	return nil
}

// ValidateTranscript validates a Transcript artifact before it is stored.
func ValidateTranscript(t *Transcript) error {
	if t == nil {
		return fmt.Errorf("%w: transcript is nil", ErrInvalidTranscript)
	}
	if t.ID == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidTranscript)
	}
	for i := range t.Segments {
		if err := ValidateSegment(&t.Segments[i]); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTranscript, err)
		}
	}
	return nil
}

// ParseJobStatus converts a string into a JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	status := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// ParseMeetingStatus converts a string into a MeetingStatus.
func ParseMeetingStatus(s string) (MeetingStatus, error) {
	status := MeetingStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case MeetingStatusDraft, MeetingStatusScheduled, MeetingStatusInProgress,
		MeetingStatusCompleted, MeetingStatusCancelled, MeetingStatusFailed:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMeetingStatus, s)
	}
}
