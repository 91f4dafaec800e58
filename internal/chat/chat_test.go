// ABOUTME: Tests for chat identifier helpers.
// ABOUTME: Group detection by the @g.us suffix.

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID_IsGroup(t *testing.T) {
	assert.True(t, ID("123456789-987654@g.us").IsGroup())
	assert.False(t, ID("5511999999999@s.whatsapp.net").IsGroup())
	assert.False(t, ID("").IsGroup())
}
