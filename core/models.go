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
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a new opaque identifier for jobs, transcripts and meetings.
func NewID() string {
	return uuid.NewString()
}

// JobStatus is the lifecycle state of a transcription job.
type JobStatus string

const (
	// JobStatusQueued is the initial state assigned when a job is accepted.
	JobStatusQueued JobStatus = "queued"
	// JobStatusProcessing means a coordinator has picked the job up.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted is terminal: Result is set, Error is empty.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed is terminal: Error is set, Result is nil.
	JobStatusFailed JobStatus = "failed"
)

// IsTerminal reports whether no further transitions may occur.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Word is a single recognized word with timing, present when word
// timestamps were requested.
type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// TranscriptSegment is one recognized utterance. Offsets are in seconds.
type TranscriptSegment struct {
	Index            int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogProb       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
	Words            []Word  `json:"words,omitempty"`
}

// TranscriptionResult is the structured output of a completed job.
type TranscriptionResult struct {
	Segments            []TranscriptSegment `json:"segments"`
	Language            string              `json:"language"`
	LanguageProbability float64             `json:"language_probability"`
	ProcessingTime      float64             `json:"processing_time"` // seconds spent transcribing
	AudioDuration       float64             `json:"audio_duration"`  // end offset of the last segment
}

// Text joins the trimmed segment texts in order with single spaces.
func (r *TranscriptionResult) Text() string {
	if r == nil {
		return ""
	}
	return JoinSegmentText(r.Segments)
}

// JoinSegmentText concatenates segment texts in order, space separated.
func JoinSegmentText(segments []TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// AudioDuration returns the end offset of the last segment, or 0 when there
// are no segments.
func AudioDuration(segments []TranscriptSegment) float64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].End
}

// Clone returns a deep copy of the result.
func (r *TranscriptionResult) Clone() *TranscriptionResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Segments = make([]TranscriptSegment, len(r.Segments))
	for i, seg := range r.Segments {
		out.Segments[i] = seg
		if seg.Tokens != nil {
			out.Segments[i].Tokens = append([]int(nil), seg.Tokens...)
		}
		if seg.Words != nil {
			out.Segments[i].Words = append([]Word(nil), seg.Words...)
		}
	}
	return &out
}

// Job is one tracked transcription request.
type Job struct {
	ID        string               `json:"id"`
	Status    JobStatus            `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	FileName  string               `json:"file_name"`
	MeetingID string               `json:"meeting_id,omitempty"`
	Options   TranscriptionOptions `json:"options"`
	Result    *TranscriptionResult `json:"result,omitempty"`
	Summary   string               `json:"summary,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// IsDone reports whether the job reached a terminal state.
func (j *Job) IsDone() bool {
	return j.Status.IsTerminal()
}

// Clone returns a deep copy safe to hand to callers.
func (j Job) Clone() Job {
	j.Result = j.Result.Clone()
	return j
}

// JobMeta is the caller-supplied data used to create a job.
type JobMeta struct {
	FileName  string
	MeetingID string
	Options   TranscriptionOptions
}

// ModelKey identifies one constructed recognizer instance.
type ModelKey struct {
	ModelSize   string `json:"model_size"`
	Device      string `json:"device"`
	ComputeType string `json:"compute_type"`
}

// String formats the key as "size_device_compute".
func (k ModelKey) String() string {
	return k.ModelSize + "_" + k.Device + "_" + k.ComputeType
}

// MeetingStatus is the lifecycle state of a meeting record.
type MeetingStatus string

const (
	MeetingStatusDraft      MeetingStatus = "draft"
	MeetingStatusScheduled  MeetingStatus = "scheduled"
	MeetingStatusInProgress MeetingStatus = "in_progress"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
	MeetingStatusFailed     MeetingStatus = "failed"
)

// Meeting is the subset of a meeting record the pipeline reads and writes.
// The record itself is owned by the meeting store.
type Meeting struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Organizer       string        `json:"organizer"`
	Status          MeetingStatus `json:"status"`
	AudioPath       string        `json:"audio_file_path,omitempty"`
	TranscriptionID string        `json:"transcription_id,omitempty"`
	Summary         string        `json:"summary,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// MeetingUpdate carries the recording fields written back onto a meeting.
// Nil fields are left untouched.
type MeetingUpdate struct {
	AudioPath       *string
	TranscriptionID *string
	Summary         *string
	Status          *MeetingStatus
}

// Transcript is the durable artifact written for meeting recordings.
type Transcript struct {
	ID        string              `json:"id"`
	JobID     string              `json:"job_id"`
	MeetingID string              `json:"meeting_id,omitempty"`
	AudioPath string              `json:"audio_path"`
	Language  string              `json:"language"`
	Segments  []TranscriptSegment `json:"segments"`
	Text      string              `json:"text"`
	Summary   string              `json:"summary,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
