// ABOUTME: Outbound message construction and delivery for the WhatsApp transport.
// ABOUTME: Plain sends use the conversation field; replies quote via context info.

package whatsapp

import (
	"context"
	"fmt"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/chat"
)

// Send delivers a plain text message to the chat.
func (t *Transport) Send(ctx context.Context, to chat.ID, text string) error {
	return t.deliver(ctx, to, &waE2E.Message{
		Conversation: proto.String(text),
	})
}

// Reply delivers text quoting an earlier message. A nil quote degrades
// to a plain send.
func (t *Transport) Reply(ctx context.Context, to chat.ID, text string, quote *chat.Quote) error {
	if quote == nil {
		return t.Send(ctx, to, text)
	}
	return t.deliver(ctx, to, &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(text),
			ContextInfo: &waE2E.ContextInfo{
				StanzaID:    proto.String(quote.MessageID),
				Participant: proto.String(quote.Sender.String()),
				QuotedMessage: &waE2E.Message{
					Conversation: proto.String(quote.Text),
				},
			},
		},
	})
}

// deliver sends a wire message to the parsed chat JID.
func (t *Transport) deliver(ctx context.Context, to chat.ID, msg *waE2E.Message) error {
	client := t.current()
	if client == nil {
		return ErrNoClient
	}

	jid, err := types.ParseJID(to.String())
	if err != nil {
		return fmt.Errorf("parsing chat id %q: %w", to, err)
	}

	if _, err := client.SendMessage(ctx, jid, msg); err != nil {
		return fmt.Errorf("sending to %s: %w", to, err)
	}
	return nil
}
