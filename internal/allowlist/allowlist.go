// ABOUTME: Immutable set of chat identifiers the bot may read from and reply to.
// ABOUTME: Parsed once at startup and passed explicitly to validation and routing.

package allowlist

import (
	"errors"
	"sort"
	"strings"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/chat"
)

// ErrEmpty is returned when the raw allow-list resolves to zero entries.
// The system refuses to run unfiltered, so an empty list is a startup error.
var ErrEmpty = errors.New("allow-list is empty")

// Set is an immutable collection of authorized chat identifiers.
// The zero value is an empty set.
type Set struct {
	ids map[chat.ID]struct{}
}

// Parse builds a Set from a comma-separated list of chat identifiers.
// Entries are trimmed and blank entries dropped. Returns ErrEmpty if
// nothing survives.
func Parse(raw string) (Set, error) {
	ids := make(map[chat.ID]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ids[chat.ID(part)] = struct{}{}
	}
	if len(ids) == 0 {
		return Set{}, ErrEmpty
	}
	return Set{ids: ids}, nil
}

// Contains reports whether the chat identifier is authorized.
func (s Set) Contains(id chat.ID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of authorized chats.
func (s Set) Len() int {
	return len(s.ids)
}

// IDs returns the authorized identifiers in sorted order, for logging.
func (s Set) IDs() []chat.ID {
	out := make([]chat.ID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
