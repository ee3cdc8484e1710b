// Package modelcache memoizes speech-recognition engines by configuration.
//
// Acquire constructs a recognizer the first time a core.ModelKey is seen and
// returns the same instance for every later call with that key. Concurrent
// callers for a key that is still being built share the single in-flight
// construction. A failed construction is reported to every waiting caller
// and leaves the key empty, so the next Acquire tries again.
//
// The cache is unbounded by default. WithMaxEntries bounds it and evicts the
// least recently acquired recognizer when full.
package modelcache
