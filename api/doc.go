// Package api exposes the transcription service over HTTP.
//
// Routes:
//
//	POST   /api/transcribe                         multipart "file" + option fields, 202
//	GET    /api/tasks                              ?status=&limit=
//	GET    /api/tasks/{id}
//	DELETE /api/tasks/{id}
//	POST   /api/summarize                          {"full_transcript", "language_code"}
//	POST   /api/meetings                           {"title", "organizer", "status"}
//	GET    /api/meetings                           ?status=
//	GET    /api/meetings/{id}
//	GET    /api/meetings/{id}/transcripts
//	POST   /api/meetings/{id}/process-recording    multipart "file", 202
//	GET    /api/transcripts/{id}
//	GET    /api/health
//
// Errors are returned as {"error": "..."}.
package api
