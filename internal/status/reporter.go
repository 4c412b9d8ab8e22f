// internal/status/reporter.go
package status

import "github.com/rs/zerolog"

// Reporter logs a device snapshot whenever its observable health changes.
// The first report is always emitted. Counters and cycle time alone do not
// count as a change.
type Reporter struct {
	logger zerolog.Logger
	last   Snapshot
	sent   bool
}

// NewReporter creates a reporter writing to logger.
func NewReporter(logger zerolog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Report emits s if it differs from the last emitted snapshot.
// It reports whether a line was written.
func (r *Reporter) Report(s Snapshot) bool {
	if r.sent && !changed(r.last, s) {
		return false
	}

	ev := r.logger.Info()
	if s.State != StateConnected {
		ev = r.logger.Warn()
	}
	ev.EmbedObject(s).Msg("device status")

	r.last = s
	r.sent = true
	return true
}

func changed(prev, next Snapshot) bool {
	if prev.State != next.State {
		return true
	}
	if prev.LastError != next.LastError {
		return true
	}
	// failing vs healthy, not every increment
	return (prev.ConsecutiveReadFailures == 0) != (next.ConsecutiveReadFailures == 0)
}
