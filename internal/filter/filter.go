// ABOUTME: Pure accept/reject decision for inbound message events.
// ABOUTME: Rejects self-messages, empty content, and non-allow-listed chats.

// Package filter decides, per inbound event, whether the event is
// eligible for routing. The decision is a pure function; logging and
// side effects belong to the caller.
package filter

import (
	"strings"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/allowlist"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/chat"
)

// Accept reports whether an inbound event should be routed to the
// handler. Rejections are silent by design: unauthorized senders
// (broadcast and status channels in particular) would otherwise flood
// the log.
//
// Startup refuses an empty allow-list, so the empty case is
// unreachable in practice; it still fails closed here.
func Accept(ev chat.InboundEvent, allowed allowlist.Set) bool {
	if ev.FromSelf {
		return false
	}
	if strings.TrimSpace(ev.Text) == "" {
		return false
	}
	if allowed.Len() == 0 {
		return false
	}
	return allowed.Contains(ev.Sender)
}
