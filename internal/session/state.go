// ABOUTME: Connection state enum for the protocol session lifecycle.
// ABOUTME: Transitions are driven only by transport events.

package session

// State is the connection state of the single protocol session.
//
//	Disconnected --Run--> Connecting
//	Connecting --pairing required--> AwaitingPairing
//	Connecting|AwaitingPairing --handshake success--> Open
//	Open --failure--> Closed
//	Closed --retryable--> Connecting (after the policy delay)
//	Closed --terminal logout--> Disconnected (requires credential wipe + re-pairing)
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAwaitingPairing
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingPairing:
		return "awaiting_pairing"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
