// internal/status/constants.go
package status

// State is the lifecycle position of one device session.
// There is no degraded state: a read failure returns straight to Disconnected.
type State uint16

const (
	// StateDisconnected means no session exists. This is the boot state.
	StateDisconnected State = 0

	// StateConnecting means a connection attempt is in flight.
	StateConnecting State = 1

	// StateConnected means a live session is available for reads.
	StateConnected State = 2
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}
