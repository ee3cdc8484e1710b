// Package dispatch is the request boundary of the transcription service.
//
// A Dispatcher accepts uploads, copies them to uniquely named files under
// the upload directory, registers a queued job and hands the run to the
// pipeline. It returns as soon as the copy is done; it never waits for
// transcription or summarization.
//
// Form values arrive as strings. ParseFormOptions converts them into typed,
// validated core.TranscriptionOptions once, at this boundary.
package dispatch
