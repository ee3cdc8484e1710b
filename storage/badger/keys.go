package badger

import "strings"

// Key prefixes for different data types
const (
	transcriptPrefix        = "trn"
	transcriptMeetingPrefix = "trnm"
)

// makeTranscriptKey generates the primary key for a transcript.
// Format: trn:<id>
func makeTranscriptKey(id string) []byte {
	return []byte(transcriptPrefix + ":" + id)
}

// makeTranscriptMeetingKey generates the meeting index key.
// Format: trnm:<meetingID>:<id>
func makeTranscriptMeetingKey(meetingID, id string) []byte {
	return []byte(transcriptMeetingPrefix + ":" + meetingID + ":" + id)
}

// makeTranscriptMeetingPrefix returns the scan prefix for one meeting's index.
func makeTranscriptMeetingPrefix(meetingID string) []byte {
	return []byte(transcriptMeetingPrefix + ":" + meetingID + ":")
}

// extractTranscriptID returns the transcript id from a meeting index key.
func extractTranscriptID(key []byte) string {
	s := string(key)
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return ""
	}
	return s[idx+1:]
}
