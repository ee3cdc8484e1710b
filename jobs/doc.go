// Package jobs holds the in-memory table of transcription jobs.
//
// The table is owned by a Store and reached only through its methods. Each
// job has its own lock, so writers for different jobs never contend and a
// slow writer never blocks listing. Readers always receive deep copies.
//
// Jobs move through a fixed lifecycle:
//
//	queued ──> processing ──> completed
//	   │            │
//	   └────────────┴───────> failed
//
// Completed and failed are terminal. A terminal job carries exactly one of
// Result or Error and is never modified again; it leaves the table only
// through Delete.
package jobs
