// ABOUTME: Durable session credential store over the protocol layer's sqlstore.
// ABOUTME: Credentials survive restarts so a paired session reconnects without re-pairing.

// Package credentials persists session credentials in a local SQLite
// database. The record format is owned by the protocol layer; this
// package only controls where it lives and when it is loaded or wiped.
//
// The store assumes a single owning process. Two processes sharing the
// same database file is undefined behavior.
package credentials

import (
	"context"
	"fmt"
	"log/slog"

	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	_ "modernc.org/sqlite"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/walog"
)

// Store wraps the protocol layer's credential container. Updates
// arriving over the session (key rotations, app state) are persisted by
// the container itself; callers only load and wipe.
type Store struct {
	container *sqlstore.Container
	path      string
	logger    *slog.Logger
}

// Open opens (creating if needed) the credential database at path.
// Errors here are fatal startup errors for the caller.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)", path)
	container, err := sqlstore.New(ctx, "sqlite", dsn, walog.Wrap(logger, "credstore"))
	if err != nil {
		return nil, fmt.Errorf("opening credential store %s: %w", path, err)
	}
	return &Store{container: container, path: path, logger: logger}, nil
}

// Load returns the stored device credentials, or fresh empty
// credentials when none exist yet. A device without an identity means
// the session must pair before it can connect.
func (s *Store) Load(ctx context.Context) (*store.Device, error) {
	device, err := s.container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	if device.ID == nil {
		s.logger.Info("no stored credentials, pairing required", "path", s.path)
	}
	return device, nil
}

// Wipe deletes all stored credentials. Required after a terminal
// logout before the session can pair again.
func (s *Store) Wipe(ctx context.Context) error {
	devices, err := s.container.GetAllDevices(ctx)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	for _, device := range devices {
		if err := device.Delete(ctx); err != nil {
			return fmt.Errorf("deleting device %s: %w", device.ID, err)
		}
	}
	s.logger.Info("credentials wiped", "path", s.path, "devices", len(devices))
	return nil
}

// Path returns the database location, for operator-facing messages.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.container.Close()
}
