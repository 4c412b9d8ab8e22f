// internal/status/encode.go
package status

import "github.com/rs/zerolog"

// MarshalZerologObject encodes the snapshot as structured log fields.
// No IO. No side effects.
func (s Snapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Str("device", s.Device).
		Str("state", s.State.String()).
		Uint64("reconnects", s.Reconnects).
		Uint64("consecutive_read_failures", s.ConsecutiveReadFailures)

	if !s.LastCycle.IsZero() {
		e.Time("last_cycle", s.LastCycle)
	}
	if s.LastError != "" {
		e.Str("last_error", s.LastError)
	}
}
