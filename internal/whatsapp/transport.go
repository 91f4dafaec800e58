// ABOUTME: WhatsApp transport over whatsmeow, implementing session.Transport.
// ABOUTME: Builds a fresh protocol client per connect so reconnects leave no stale listeners.

package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.mau.fi/whatsmeow"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/credentials"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/session"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/walog"
)

// ErrNoClient is returned by Send and Reply when no connect attempt has
// produced a client yet.
var ErrNoClient = errors.New("no active protocol client")

// Transport is the whatsmeow-backed session.Transport. Each Connect
// re-loads credentials and builds a new client with its handlers
// attached, so listeners from a previous attempt can never double-fire
// and in-flight sends against a dropped client fail instead of racing
// the new session.
type Transport struct {
	creds     *credentials.Store
	logger    *slog.Logger
	clientLog waLog.Logger

	mu      sync.Mutex
	client  *whatsmeow.Client
	handler func(session.Event)
}

// NewTransport creates a Transport backed by the given credential store.
func NewTransport(creds *credentials.Store, logger *slog.Logger) *Transport {
	return &Transport{
		creds:     creds,
		logger:    logger,
		clientLog: walog.Wrap(logger, "whatsapp"),
	}
}

// SetEventHandler replaces the registered event sink.
func (t *Transport) SetEventHandler(fn func(session.Event)) {
	t.mu.Lock()
	t.handler = fn
	t.mu.Unlock()
}

// Connect tears down any previous client, re-loads credentials, and
// dials. When no identity is stored yet, a pairing channel is opened
// first and codes are surfaced as session.PairingCode events.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		t.client.RemoveEventHandlers()
		t.client.Disconnect()
		t.client = nil
	}

	device, err := t.creds.Load(ctx)
	if err != nil {
		return err
	}

	client := whatsmeow.NewClient(device, t.clientLog)
	// Reconnection is owned by the session policy, not the library.
	client.EnableAutoReconnect = false
	client.AddEventHandler(t.dispatch)

	if client.Store.ID == nil {
		// Fresh credentials: pairing must happen before login. The
		// channel has to be opened before dialing.
		qrChan, err := client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("opening pairing channel: %w", err)
		}
		go t.watchPairing(qrChan)
	}

	if err := client.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	t.client = client
	return nil
}

// Disconnect tears down the current client, if any.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		t.client.RemoveEventHandlers()
		t.client.Disconnect()
		t.client = nil
	}
}

// watchPairing forwards pairing codes until the channel closes.
func (t *Transport) watchPairing(ch <-chan whatsmeow.QRChannelItem) {
	for item := range ch {
		switch item.Event {
		case whatsmeow.QRChannelEventCode:
			t.emit(session.PairingCode{Code: item.Code})
		case whatsmeow.QRChannelEventError:
			t.logger.Error("pairing failed", "error", item.Error)
		default:
			// success or timeout; login outcome arrives as a
			// connection event.
			t.logger.Debug("pairing channel finished", "event", item.Event)
		}
	}
}

// emit delivers an event to the registered handler.
func (t *Transport) emit(ev session.Event) {
	t.mu.Lock()
	fn := t.handler
	t.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
}

// current returns the active client.
func (t *Transport) current() *whatsmeow.Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client
}
