package engine

import "time"

// Clock supplies the ledger-visible current time. Deadline checks compare
// this against stored fields; the processor never waits on it.
type Clock interface {
	// Now returns the current Unix time in seconds, monotonically
	// non-decreasing between observations.
	Now() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() int64 {
	return time.Now().Unix()
}
