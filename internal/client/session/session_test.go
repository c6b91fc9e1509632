package session

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIDFormat(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^session_[0-9a-f]{9}_\d{13}$`), NewID())
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewID()
		_, dup := seen[id]
		assert.False(t, dup, id)
		seen[id] = struct{}{}
	}
}

func TestNewSession(t *testing.T) {
	s := New(4)
	assert.Equal(t, uint(4), s.UserID)
	assert.NotEmpty(t, s.ID)
}
