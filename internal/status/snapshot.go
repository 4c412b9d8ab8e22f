// internal/status/snapshot.go
package status

import "time"

// Snapshot is the observable health of one device.
// It is a value: callers receive copies and never share it.
type Snapshot struct {
	Device string
	State  State

	// Reconnects counts successful connects after the first one.
	Reconnects uint64

	// ConsecutiveReadFailures resets on the first successful read.
	ConsecutiveReadFailures uint64

	LastCycle time.Time
	LastError string
}
