// ABOUTME: Session lifecycle state machine over a protocol Transport.
// ABOUTME: Drives connect, pairing, fixed-delay reconnection, and gated sends.

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/chat"
)

var (
	// ErrNotConnected is returned by Send and Reply while the session
	// is not Open.
	ErrNotConnected = errors.New("session is not open")

	// ErrLoggedOut is returned by Run after a terminal logout. The
	// operator must wipe credentials and re-pair to recover.
	ErrLoggedOut = errors.New("session invalidated by remote party")
)

// Session owns the lifecycle of the single protocol session: it
// connects the transport, observes its events, reconnects with a fixed
// delay on retryable failures, and exposes gated send primitives.
//
// Send and Reply share one failure policy: ErrNotConnected outside the
// Open state, and transport-level failures logged and swallowed. The
// bot trades delivery guarantees for liveness on a best-effort reply.
type Session struct {
	transport Transport
	policy    ReconnectPolicy
	logger    *slog.Logger

	state        atomic.Int32
	reconnecting atomic.Bool

	onMessage func(context.Context, chat.InboundEvent)
	onPairing func(code string)

	runCtx       context.Context
	terminal     chan struct{}
	terminalOnce sync.Once
}

// New creates a Session over the given transport. Callbacks must be
// registered before Run.
func New(transport Transport, policy ReconnectPolicy, logger *slog.Logger) *Session {
	return &Session{
		transport: transport,
		policy:    policy,
		logger:    logger,
		runCtx:    context.Background(),
		terminal:  make(chan struct{}),
	}
}

// OnMessage registers the sink for inbound message events. The context
// passed to the sink is the Run context.
func (s *Session) OnMessage(fn func(context.Context, chat.InboundEvent)) {
	s.onMessage = fn
}

// OnPairing registers the sink for pairing payloads, surfaced while the
// session awaits QR pairing.
func (s *Session) OnPairing(fn func(code string)) {
	s.onPairing = fn
}

// State returns the current connection state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Run connects the session and blocks until the context is cancelled or
// the remote party terminally invalidates the session (ErrLoggedOut).
// Connection success is observed via state transitions, not Run's
// return value.
func (s *Session) Run(ctx context.Context) error {
	s.runCtx = ctx
	s.connect(ctx)

	select {
	case <-ctx.Done():
		s.transport.Disconnect()
		s.setState(StateDisconnected)
		return nil
	case <-s.terminal:
		return ErrLoggedOut
	}
}

// Send delivers text to the chat. Fails fast with ErrNotConnected
// outside the Open state; transport failures are logged and dropped.
func (s *Session) Send(ctx context.Context, to chat.ID, text string) error {
	if s.State() != StateOpen {
		return ErrNotConnected
	}
	if err := s.transport.Send(ctx, to, text); err != nil {
		s.logger.Warn("send failed", "chat", to, "error", err)
	}
	return nil
}

// Reply is Send with an optional quoted-message reference. Same
// failure policy as Send.
func (s *Session) Reply(ctx context.Context, to chat.ID, text string, quote *chat.Quote) error {
	if s.State() != StateOpen {
		return ErrNotConnected
	}
	if err := s.transport.Reply(ctx, to, text, quote); err != nil {
		s.logger.Warn("reply failed", "chat", to, "error", err)
	}
	return nil
}

// connect runs one full connect attempt: re-attach the event handler,
// then dial. A dial failure is treated like a retryable disconnect so
// the reconnect path has a single shape.
func (s *Session) connect(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.setState(StateConnecting)
	s.transport.SetEventHandler(s.handleEvent)

	if err := s.transport.Connect(ctx); err != nil {
		s.logger.Warn("connect failed", "error", err)
		s.setState(StateClosed)
		s.scheduleReconnect(ctx, ReasonNetwork)
	}
}

// handleEvent drives state transitions from transport events.
func (s *Session) handleEvent(ev Event) {
	switch e := ev.(type) {
	case Connected:
		s.setState(StateOpen)
		s.logger.Info("session open")
	case PairingCode:
		s.setState(StateAwaitingPairing)
		if s.onPairing != nil {
			s.onPairing(e.Code)
		}
	case Disconnected:
		s.setState(StateClosed)
		s.scheduleReconnect(s.runCtx, e.Reason)
	case Message:
		if s.onMessage != nil {
			s.onMessage(s.runCtx, e.Event)
		}
	}
}

// scheduleReconnect applies the policy to a disconnect. At most one
// reconnect is pending at a time; a terminal reason parks the session
// in Disconnected and unblocks Run.
func (s *Session) scheduleReconnect(ctx context.Context, reason Reason) {
	if !s.policy.shouldReconnect(reason) {
		s.logger.Error("remote party invalidated the session, not reconnecting",
			"reason", reason.String(),
		)
		s.setState(StateDisconnected)
		s.terminalOnce.Do(func() { close(s.terminal) })
		return
	}

	if !s.reconnecting.CompareAndSwap(false, true) {
		// A reconnect is already pending.
		return
	}

	s.logger.Warn("session closed, reconnecting",
		"reason", reason.String(),
		"delay", s.policy.Delay,
	)

	go func() {
		select {
		case <-ctx.Done():
			s.reconnecting.Store(false)
			return
		case <-time.After(s.policy.Delay):
		}
		// Clear the guard before dialing so a failed attempt can
		// schedule its own retry.
		s.reconnecting.Store(false)
		s.connect(ctx)
	}()
}

func (s *Session) setState(next State) {
	prev := State(s.state.Swap(int32(next)))
	if prev != next {
		s.logger.Debug("connection state changed",
			"from", prev.String(),
			"to", next.String(),
		)
	}
}
