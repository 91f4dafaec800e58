// ABOUTME: Bridges the protocol library's logging interface onto slog.
// ABOUTME: Downgrades protocol-level errors to warnings; they are expected session noise.

// Package walog adapts whatsmeow's logger interface to the process-wide
// slog logger.
package walog

import (
	"fmt"
	"log/slog"

	waLog "go.mau.fi/whatsmeow/util/log"
)

type logger struct {
	l *slog.Logger
}

// Wrap returns a whatsmeow logger that writes through the given slog
// logger under the named module.
func Wrap(l *slog.Logger, module string) waLog.Logger {
	return &logger{l: l.With("module", module)}
}

// Errorf logs at warn level. Transport-level errors (stale-session
// decrypt and MAC failures, stream teardowns) are expected noise from
// multi-device encryption and must not read as process errors.
func (l *logger) Errorf(msg string, args ...any) {
	l.l.Warn(fmt.Sprintf(msg, args...))
}

func (l *logger) Warnf(msg string, args ...any) {
	l.l.Warn(fmt.Sprintf(msg, args...))
}

func (l *logger) Infof(msg string, args ...any) {
	l.l.Info(fmt.Sprintf(msg, args...))
}

func (l *logger) Debugf(msg string, args ...any) {
	l.l.Debug(fmt.Sprintf(msg, args...))
}

func (l *logger) Sub(module string) waLog.Logger {
	return &logger{l: l.l.With("module", module)}
}
