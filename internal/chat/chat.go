// ABOUTME: Value types for chat identifiers and inbound message events.
// ABOUTME: Shared by the session, filter, and router packages.

package chat

import "strings"

// GroupSuffix is the server part of group chat identifiers.
const GroupSuffix = "@g.us"

// ID uniquely names a conversation (individual or group) in the
// messaging network's namespace, e.g. "5511999999999@s.whatsapp.net"
// or "123456789-987654@g.us".
type ID string

// IsGroup reports whether the identifier names a group chat.
func (id ID) IsGroup() bool {
	return strings.HasSuffix(string(id), GroupSuffix)
}

func (id ID) String() string {
	return string(id)
}

// InboundEvent is one message event as delivered by the protocol
// session. It is constructed per event and discarded after the
// filtering/routing decision; never persisted.
type InboundEvent struct {
	// MessageID is the protocol-assigned message identifier, used for
	// deduplication. May be empty for synthetic events.
	MessageID string

	// Sender is the chat the message arrived in (the remote JID).
	Sender ID

	// FromSelf marks messages echoed back from this account's own
	// devices.
	FromSelf bool

	// Text is the extracted display text; empty for non-text events
	// (status updates, reactions, media without caption).
	Text string

	// Raw is the untouched protocol payload, opaque to this core.
	Raw any
}

// Quote references an earlier message for transports that support
// quoted replies.
type Quote struct {
	MessageID string
	Sender    ID
	Text      string
}
