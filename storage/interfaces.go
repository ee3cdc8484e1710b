package storage

import (
	"context"

	"github.com/poiesic/minutes/core"
)

// TranscriptRepository persists transcript artifacts. Artifacts outlive the
// in-memory job table and are addressed by their own generated id.
// Implementations must be safe for concurrent use.
type TranscriptRepository interface {
	// SaveTranscript stores a transcript. CreatedAt is set if zero.
	// An existing transcript with the same id is replaced.
	SaveTranscript(ctx context.Context, t *core.Transcript) error

	// GetTranscript returns ErrNotFound if no transcript has the id.
	GetTranscript(ctx context.Context, id string) (*core.Transcript, error)

	// ListTranscriptsByMeeting returns the transcripts attached to a meeting,
	// oldest first.
	ListTranscriptsByMeeting(ctx context.Context, meetingID string) ([]*core.Transcript, error)

	// Close releases repository resources.
	Close() error
}

// MeetingRepository is the external meeting record store the pipeline
// writes recording results onto.
type MeetingRepository interface {
	// CreateMeeting inserts a meeting. ID, timestamps and a draft status are
	// assigned when empty.
	CreateMeeting(ctx context.Context, m *core.Meeting) error

	// GetMeeting returns ErrNotFound if no meeting has the id.
	GetMeeting(ctx context.Context, id string) (*core.Meeting, error)

	// UpdateMeetingRecording applies the non-nil fields of update.
	// Returns ErrNotFound if no meeting has the id.
	UpdateMeetingRecording(ctx context.Context, id string, update core.MeetingUpdate) error

	// Close releases repository resources.
	Close() error
}
