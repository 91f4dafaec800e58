// ABOUTME: Disconnect reason classification and fixed-delay reconnect policy.
// ABOUTME: Exactly one reason class (remote session invalidation) is terminal.

package session

import "time"

// Reason classifies why the transport disconnected.
type Reason int

const (
	// ReasonUnknown covers disconnects without a usable reason code.
	// Treated as retryable.
	ReasonUnknown Reason = iota

	// ReasonNetwork is a network drop, timeout, or failed handshake.
	ReasonNetwork

	// ReasonServerRestart is a server-initiated stream restart.
	ReasonServerRestart

	// ReasonLoggedOut means the remote party invalidated the session:
	// an explicit logout, or another client taking over the stream.
	// Terminal; recovery requires a credential wipe and fresh pairing.
	ReasonLoggedOut
)

func (r Reason) String() string {
	switch r {
	case ReasonNetwork:
		return "network"
	case ReasonServerRestart:
		return "server_restart"
	case ReasonLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// ReconnectPolicy decides whether and when to reconnect after a
// disconnect. The delay is fixed rather than exponential: this process
// owns one session, not a fleet, so reconnect volume is negligible.
type ReconnectPolicy struct {
	// Delay is waited before each reconnect attempt.
	Delay time.Duration

	// ShouldReconnect overrides the default classification when set.
	ShouldReconnect func(Reason) bool
}

// DefaultPolicy reconnects after every disconnect except a terminal
// logout, with the given fixed delay.
func DefaultPolicy(delay time.Duration) ReconnectPolicy {
	return ReconnectPolicy{Delay: delay}
}

func (p ReconnectPolicy) shouldReconnect(r Reason) bool {
	if p.ShouldReconnect != nil {
		return p.ShouldReconnect(r)
	}
	return r != ReasonLoggedOut
}
