// Package session identifies one chat client run.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session correlates the realtime channel, the REST fallback and the local
// history slot for the lifetime of one client.
type Session struct {
	ID     string
	UserID uint
}

func New(userID uint) Session {
	return Session{ID: NewID(), UserID: userID}
}

// NewID returns session_<random>_<unix millis>.
func NewID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%s_%d", random, time.Now().UnixMilli())
}
