// ABOUTME: Package documentation for the session lifecycle state machine.
// ABOUTME: Describes states, reconnect policy, and the transport boundary.

// Package session owns the lifecycle of the single protocol session:
// connecting, QR pairing, reconnection with a fixed delay, and gated
// outbound sends.
//
// The underlying protocol implementation sits behind the Transport
// interface and is treated as an opaque capability. Every reconnect
// re-runs the full connect path — credentials are re-loaded and event
// handlers re-attached — so a session that dropped mid-flight leaves no
// stale listeners behind.
package session
