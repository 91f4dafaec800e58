// ABOUTME: Maps whatsmeow events onto session events and inbound message values.
// ABOUTME: Classifies disconnect reasons; only remote invalidation is terminal.

package whatsapp

import (
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/chat"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/session"
)

// dispatch translates raw protocol events into session events. Events
// with no counterpart in the session model are dropped here.
func (t *Transport) dispatch(raw any) {
	switch evt := raw.(type) {
	case *events.Connected:
		t.emit(session.Connected{})
	case *events.PairSuccess:
		t.logger.Info("paired", "jid", evt.ID.String())
	case *events.Message:
		t.emit(session.Message{Event: inboundEvent(evt)})
	case *events.Disconnected:
		t.emit(session.Disconnected{Reason: session.ReasonNetwork})
	case *events.StreamError:
		t.emit(session.Disconnected{Reason: session.ReasonServerRestart})
	case *events.ConnectFailure:
		t.emit(session.Disconnected{Reason: session.ReasonNetwork})
	case *events.StreamReplaced:
		// Another client took over the session; reconnecting would
		// fight it for the socket.
		t.emit(session.Disconnected{Reason: session.ReasonLoggedOut})
	case *events.LoggedOut:
		t.emit(session.Disconnected{Reason: session.ReasonLoggedOut})
	}
}

// inboundEvent builds the routing view of one message event.
func inboundEvent(evt *events.Message) chat.InboundEvent {
	return chat.InboundEvent{
		MessageID: evt.Info.ID,
		Sender:    chat.ID(evt.Info.Chat.String()),
		FromSelf:  evt.Info.IsFromMe,
		Text:      extractText(evt.Message),
		Raw:       evt,
	}
}

// extractText pulls display text from the wire message, preferring the
// plain conversation field over extended text (links, quoted replies).
// Returns "" for non-text payloads.
func extractText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	return msg.GetExtendedTextMessage().GetText()
}
