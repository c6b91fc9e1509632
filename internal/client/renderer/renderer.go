// Package renderer keeps the ordered list of chat bubbles, mirrors it onto
// a Display and persists it after every change.
package renderer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"productivity-chatbot/internal/client/history"
	"productivity-chatbot/internal/pkg/logging"
)

// Display shows message bubbles.
type Display interface {
	Append(msg history.Message)
	Reset()
	ScrollToLatest()
}

type Renderer struct {
	display   Display
	store     *history.Store
	sessionID string
	now       func() time.Time
	logger    zerolog.Logger

	mu       sync.Mutex
	messages []history.Message
}

type Option func(*Renderer)

func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

func New(display Display, store *history.Store, sessionID string, opts ...Option) *Renderer {
	r := &Renderer{
		display:   display,
		store:     store,
		sessionID: sessionID,
		now:       time.Now,
		logger:    logging.Component("renderer"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render appends one bubble, saves the full list and scrolls to it.
func (r *Renderer) Render(ctx context.Context, content, sender string, metadata *history.Metadata) history.Message {
	msg := history.Message{
		Sender:    sender,
		Content:   content,
		Timestamp: r.now(),
		Metadata:  metadata,
	}

	r.mu.Lock()
	r.messages = append(r.messages, msg)
	snapshot := append([]history.Message(nil), r.messages...)
	r.display.Append(msg)
	r.display.ScrollToLatest()
	r.mu.Unlock()

	r.persist(ctx, snapshot)
	return msg
}

// Remove takes back a bubble returned by Render, redraws the display and
// saves the shorter list. It reports false when msg is no longer listed.
func (r *Renderer) Remove(ctx context.Context, msg history.Message) bool {
	r.mu.Lock()
	idx := -1
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if m.Sender == msg.Sender && m.Content == msg.Content && m.Timestamp.Equal(msg.Timestamp) {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return false
	}
	r.messages = append(r.messages[:idx], r.messages[idx+1:]...)
	snapshot := append([]history.Message(nil), r.messages...)
	r.display.Reset()
	for _, m := range snapshot {
		r.display.Append(m)
	}
	r.mu.Unlock()

	r.persist(ctx, snapshot)
	return true
}

// Restore loads saved history onto the display and reports how many
// messages came back.
func (r *Renderer) Restore(ctx context.Context) int {
	saved := r.store.Load(ctx, r.sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = saved
	r.display.Reset()
	for _, msg := range saved {
		r.display.Append(msg)
	}
	if len(saved) > 0 {
		r.display.ScrollToLatest()
	}
	return len(saved)
}

// Clear empties the list and deletes the session slot.
func (r *Renderer) Clear(ctx context.Context) {
	r.mu.Lock()
	r.messages = nil
	r.display.Reset()
	r.mu.Unlock()

	if err := r.store.Clear(ctx, r.sessionID); err != nil {
		r.logger.Warn().Err(err).Str("session_id", r.sessionID).Msg("clear history failed")
	}
}

func (r *Renderer) Messages() []history.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]history.Message(nil), r.messages...)
}

func (r *Renderer) persist(ctx context.Context, messages []history.Message) {
	if err := r.store.Save(ctx, r.sessionID, messages); err != nil {
		r.logger.Warn().Err(err).Str("session_id", r.sessionID).Msg("save history failed")
	}
}
