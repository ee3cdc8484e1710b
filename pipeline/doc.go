// Package pipeline drives transcription jobs to a terminal state.
//
// A Coordinator chains three stages for each run:
//
//	transcribe -> summarize -> persist
//
// Transcription and summarization are blocking and run on a bounded ants
// pool, so callers that Submit a run return immediately. A transcription
// failure or timeout fails the job. Summarization never does: problems come
// back as sentinel text. For meeting runs a failed durable write fails the
// job and marks the meeting failed.
//
// The uploaded audio file is removed on every exit path unless the run
// sets KeepAudio.
package pipeline
