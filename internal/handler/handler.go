// ABOUTME: Contract for the external message interpreter.
// ABOUTME: A handler turns inbound text into one reply string.

// Package handler defines the message-interpreter contract and the HTTP
// client used to reach an interpreter deployed as a separate service.
package handler

import "context"

// Handler turns the text of an accepted inbound message into the reply
// to send back. Implementations should not fail for expected inputs;
// any error means no reply is produced for that message.
type Handler interface {
	Handle(ctx context.Context, text string) (string, error)
}

// Func adapts a plain function to the Handler interface.
type Func func(ctx context.Context, text string) (string, error)

func (f Func) Handle(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Echo returns a handler that replies with the inbound text unchanged.
// Used as the fallback when no interpreter service is configured, so
// pairing and connectivity can be exercised end to end.
func Echo() Handler {
	return Func(func(_ context.Context, text string) (string, error) {
		return text, nil
	})
}
