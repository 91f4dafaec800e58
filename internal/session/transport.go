// ABOUTME: Transport abstraction over the protocol session implementation.
// ABOUTME: Connect, send, and receive events; credential persistence stays inside.

package session

import (
	"context"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/chat"
)

// Transport is the opaque protocol session capability: connect, send,
// receive events, persist credentials. Implementations own credential
// storage and the wire protocol; this package only orchestrates.
type Transport interface {
	// SetEventHandler registers the event sink, replacing any previous
	// registration. Replace-not-append keeps re-attachment idempotent
	// across reconnects: stale handlers from a prior attempt must not
	// double-fire.
	SetEventHandler(func(Event))

	// Connect establishes (or re-establishes) the session. Each call
	// re-loads credentials and rebuilds protocol state, so in-flight
	// operations against a previous session cannot leak into the new
	// one. Login success is reported asynchronously via Connected.
	Connect(ctx context.Context) error

	// Disconnect tears the session down without emitting Disconnected.
	Disconnect()

	// Send delivers a plain text message to the chat.
	Send(ctx context.Context, to chat.ID, text string) error

	// Reply delivers a text message quoting an earlier one. A nil
	// quote degrades to Send.
	Reply(ctx context.Context, to chat.ID, text string, quote *chat.Quote) error
}

// Event is a protocol session event delivered to the handler registered
// with SetEventHandler.
type Event interface {
	sessionEvent()
}

// Connected signals a completed handshake; the session is Open.
type Connected struct{}

// PairingCode carries a pairing payload to display out-of-band while
// the session awaits QR pairing.
type PairingCode struct {
	Code string
}

// Disconnected signals the session dropped, with a classified reason.
type Disconnected struct {
	Reason Reason
}

// Message carries one inbound message event.
type Message struct {
	Event chat.InboundEvent
}

func (Connected) sessionEvent()    {}
func (PairingCode) sessionEvent()  {}
func (Disconnected) sessionEvent() {}
func (Message) sessionEvent()      {}
