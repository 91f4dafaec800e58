// ABOUTME: Routes accepted inbound messages through the handler and replies.
// ABOUTME: Each message is an independent unit of work; failures never cascade.

// Package router wires accepted inbound events to the message handler
// and dispatches the handler's output back through the session.
package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/allowlist"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/chat"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/dedupe"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/filter"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/handler"
)

// Sender delivers outbound replies. Satisfied by *session.Session.
type Sender interface {
	Send(ctx context.Context, to chat.ID, text string) error
}

// Router filters inbound events and routes accepted ones through the
// handler. Handler failures are logged per message and never affect
// other messages or the connection.
type Router struct {
	allowed allowlist.Set
	handler handler.Handler
	sender  Sender
	seen    *dedupe.Cache
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Router. The seen cache may be nil to disable
// deduplication (tests). timeout bounds each handler invocation so a
// hung interpreter cannot stall message processing indefinitely.
func New(allowed allowlist.Set, h handler.Handler, sender Sender, seen *dedupe.Cache, timeout time.Duration, logger *slog.Logger) *Router {
	return &Router{
		allowed: allowed,
		handler: h,
		sender:  sender,
		seen:    seen,
		timeout: timeout,
		logger:  logger,
	}
}

// HandleInbound routes one inbound event. Rejections are silent;
// accepted events are processed on their own goroutine so a slow
// handler does not block delivery of subsequent events. Replies for
// distinct messages may therefore interleave.
func (r *Router) HandleInbound(ctx context.Context, ev chat.InboundEvent) {
	if !filter.Accept(ev, r.allowed) {
		return
	}
	if r.seen != nil && ev.MessageID != "" && r.seen.Seen(ev.Sender.String(), ev.MessageID) {
		r.logger.Debug("dropping duplicate message",
			"chat", ev.Sender,
			"message_id", ev.MessageID,
		)
		return
	}

	r.logger.Info("received message",
		"chat", ev.Sender,
		"message_id", ev.MessageID,
		"length", len(ev.Text),
	)

	go r.process(ctx, ev)
}

// process runs one handler invocation and sends the reply.
func (r *Router) process(ctx context.Context, ev chat.InboundEvent) {
	hctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.handler.Handle(hctx, ev.Text)
	if err != nil {
		r.logger.Error("handler failed", "chat", ev.Sender, "error", err)
		return
	}
	if reply == "" {
		r.logger.Warn("handler produced empty reply", "chat", ev.Sender)
		return
	}

	if err := r.sender.Send(ctx, ev.Sender, reply); err != nil {
		r.logger.Warn("reply not sent", "chat", ev.Sender, "error", err)
	}
}
