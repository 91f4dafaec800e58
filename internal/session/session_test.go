// ABOUTME: Tests for the session lifecycle state machine.
// ABOUTME: Exercises pairing, reconnect policy, terminal logout, and send gating with a fake transport.

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/chat"
)

type sentMessage struct {
	to    chat.ID
	text  string
	quote *chat.Quote
}

// fakeTransport records calls and lets tests emit events into the
// registered handler.
type fakeTransport struct {
	mu           sync.Mutex
	handler      func(Event)
	connectCalls int
	connectErr   error
	sendErr      error
	sent         []sentMessage
}

func (f *fakeTransport) SetEventHandler(fn func(Event)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = fn
}

func (f *fakeTransport) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
	return f.connectErr
}

func (f *fakeTransport) Disconnect() {}

func (f *fakeTransport) Send(ctx context.Context, to chat.ID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{to: to, text: text})
	return f.sendErr
}

func (f *fakeTransport) Reply(ctx context.Context, to chat.ID, text string, quote *chat.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{to: to, text: text, quote: quote})
	return f.sendErr
}

func (f *fakeTransport) emit(ev Event) {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (f *fakeTransport) connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectCalls
}

func (f *fakeTransport) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startSession runs the session in the background and returns a channel
// carrying Run's result.
func startSession(t *testing.T, s *Session) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	return cancel, done
}

func TestSession_OpensOnConnected(t *testing.T) {
	transport := &fakeTransport{}
	s := New(transport, DefaultPolicy(time.Second), testLogger())

	cancel, done := startSession(t, s)
	defer cancel()

	require.Eventually(t, func() bool {
		return s.State() == StateConnecting
	}, time.Second, time.Millisecond)

	transport.emit(Connected{})

	require.Eventually(t, func() bool {
		return s.State() == StateOpen
	}, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, StateDisconnected, s.State())
}

func TestSession_PairingSurfaced(t *testing.T) {
	transport := &fakeTransport{}
	s := New(transport, DefaultPolicy(time.Second), testLogger())

	var mu sync.Mutex
	var codes []string
	s.OnPairing(func(code string) {
		mu.Lock()
		codes = append(codes, code)
		mu.Unlock()
	})

	cancel, _ := startSession(t, s)
	defer cancel()

	transport.emit(PairingCode{Code: "2@abc,def,ghi"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(codes) == 1 && codes[0] == "2@abc,def,ghi"
	}, time.Second, time.Millisecond)
	assert.Equal(t, StateAwaitingPairing, s.State())

	// Handshake completes after scanning.
	transport.emit(Connected{})
	require.Eventually(t, func() bool {
		return s.State() == StateOpen
	}, time.Second, time.Millisecond)
}

func TestSession_ReconnectsAfterRetryableDisconnect(t *testing.T) {
	transport := &fakeTransport{}
	s := New(transport, DefaultPolicy(10*time.Millisecond), testLogger())

	cancel, _ := startSession(t, s)
	defer cancel()

	transport.emit(Connected{})
	require.Eventually(t, func() bool { return s.State() == StateOpen }, time.Second, time.Millisecond)

	transport.emit(Disconnected{Reason: ReasonNetwork})

	require.Eventually(t, func() bool {
		return transport.connects() == 2
	}, time.Second, time.Millisecond)
}

func TestSession_SingleReconnectForConcurrentDisconnects(t *testing.T) {
	transport := &fakeTransport{}
	s := New(transport, DefaultPolicy(20*time.Millisecond), testLogger())

	cancel, _ := startSession(t, s)
	defer cancel()

	require.Eventually(t, func() bool { return transport.connects() == 1 }, time.Second, time.Millisecond)

	// A stream error and the socket drop arrive back to back; only one
	// reconnect may be scheduled.
	transport.emit(Disconnected{Reason: ReasonServerRestart})
	transport.emit(Disconnected{Reason: ReasonNetwork})
	transport.emit(Disconnected{Reason: ReasonNetwork})

	require.Eventually(t, func() bool {
		return transport.connects() == 2
	}, time.Second, time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, transport.connects(), "duplicate disconnects must not stack reconnects")
}

func TestSession_TerminalLogoutStopsReconnect(t *testing.T) {
	transport := &fakeTransport{}
	s := New(transport, DefaultPolicy(10*time.Millisecond), testLogger())

	cancel, done := startSession(t, s)
	defer cancel()

	require.Eventually(t, func() bool { return transport.connects() == 1 }, time.Second, time.Millisecond)

	transport.emit(Disconnected{Reason: ReasonLoggedOut})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrLoggedOut)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after terminal logout")
	}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, transport.connects(), "no reconnect after terminal logout")
	assert.Equal(t, StateDisconnected, s.State())
}

func TestSession_ConnectFailureRetries(t *testing.T) {
	transport := &fakeTransport{connectErr: errors.New("dial tcp: connection refused")}
	s := New(transport, DefaultPolicy(5*time.Millisecond), testLogger())

	cancel, _ := startSession(t, s)
	defer cancel()

	require.Eventually(t, func() bool {
		return transport.connects() >= 3
	}, time.Second, time.Millisecond)
}

func TestSession_SendRequiresOpen(t *testing.T) {
	transport := &fakeTransport{}
	s := New(transport, DefaultPolicy(time.Second), testLogger())

	err := s.Send(context.Background(), "1234@g.us", "hello")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, transport.sentMessages())

	err = s.Reply(context.Background(), "1234@g.us", "hello", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSession_SendSwallowsTransportFailure(t *testing.T) {
	transport := &fakeTransport{sendErr: errors.New("stream closed")}
	s := New(transport, DefaultPolicy(time.Second), testLogger())

	cancel, _ := startSession(t, s)
	defer cancel()

	transport.emit(Connected{})
	require.Eventually(t, func() bool { return s.State() == StateOpen }, time.Second, time.Millisecond)

	// Best-effort delivery: the failure is logged, not propagated.
	assert.NoError(t, s.Send(context.Background(), "1234@g.us", "hello"))
	assert.NoError(t, s.Reply(context.Background(), "1234@g.us", "hello", nil))
	assert.Len(t, transport.sentMessages(), 2)
}

func TestSession_ReplyCarriesQuote(t *testing.T) {
	transport := &fakeTransport{}
	s := New(transport, DefaultPolicy(time.Second), testLogger())

	cancel, _ := startSession(t, s)
	defer cancel()

	transport.emit(Connected{})
	require.Eventually(t, func() bool { return s.State() == StateOpen }, time.Second, time.Millisecond)

	quote := &chat.Quote{MessageID: "MSG-1", Sender: "1234@g.us", Text: "lunch 42.50"}
	require.NoError(t, s.Reply(context.Background(), "1234@g.us", "recorded", quote))

	sent := transport.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, chat.ID("1234@g.us"), sent[0].to)
	assert.Equal(t, "recorded", sent[0].text)
	assert.Equal(t, quote, sent[0].quote)
}

func TestSession_MessagesDeliveredInOrder(t *testing.T) {
	transport := &fakeTransport{}
	s := New(transport, DefaultPolicy(time.Second), testLogger())

	var mu sync.Mutex
	var got []string
	s.OnMessage(func(_ context.Context, ev chat.InboundEvent) {
		mu.Lock()
		got = append(got, ev.Text)
		mu.Unlock()
	})

	cancel, _ := startSession(t, s)
	defer cancel()

	transport.emit(Connected{})
	transport.emit(Message{Event: chat.InboundEvent{Sender: "1234@g.us", Text: "first"}})
	transport.emit(Message{Event: chat.InboundEvent{Sender: "1234@g.us", Text: "second"}})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestSession_HandlerReattachedOnReconnect(t *testing.T) {
	transport := &fakeTransport{}
	s := New(transport, DefaultPolicy(5*time.Millisecond), testLogger())

	cancel, _ := startSession(t, s)
	defer cancel()

	require.Eventually(t, func() bool { return transport.connects() == 1 }, time.Second, time.Millisecond)

	transport.emit(Disconnected{Reason: ReasonNetwork})
	require.Eventually(t, func() bool { return transport.connects() == 2 }, time.Second, time.Millisecond)

	// The handler registered for the new attempt still drives state.
	transport.emit(Connected{})
	require.Eventually(t, func() bool { return s.State() == StateOpen }, time.Second, time.Millisecond)
}

func TestDefaultPolicy_Classification(t *testing.T) {
	p := DefaultPolicy(time.Second)

	assert.True(t, p.shouldReconnect(ReasonUnknown))
	assert.True(t, p.shouldReconnect(ReasonNetwork))
	assert.True(t, p.shouldReconnect(ReasonServerRestart))
	assert.False(t, p.shouldReconnect(ReasonLoggedOut))
}

func TestPolicy_Override(t *testing.T) {
	p := ReconnectPolicy{
		Delay:           time.Second,
		ShouldReconnect: func(Reason) bool { return false },
	}
	assert.False(t, p.shouldReconnect(ReasonNetwork))
}
