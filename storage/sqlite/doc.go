// Package sqlite implements storage.MeetingRepository on a SQLite database
// using the pure-Go modernc.org/sqlite driver.
package sqlite
