// Package history persists the visible message list of a chat session in a
// key/value slot and restores it on start.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"productivity-chatbot/internal/pkg/logging"
)

const slotPrefix = "chat_history_"

// SlotKey names the slot that holds a session's history.
func SlotKey(sessionID string) string {
	return slotPrefix + sessionID
}

// Slots is a flat key/value persistence area.
type Slots interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	slots  Slots
	logger zerolog.Logger
}

func NewStore(slots Slots) *Store {
	return &Store{slots: slots, logger: logging.Component("history")}
}

// Save overwrites the slot with the full list.
func (s *Store) Save(ctx context.Context, sessionID string, messages []Message) error {
	if messages == nil {
		messages = []Message{}
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode history failed: %w", err)
	}
	if err := s.slots.Put(ctx, SlotKey(sessionID), payload); err != nil {
		return fmt.Errorf("save history failed: %w", err)
	}
	return nil
}

// Load returns the saved list. A missing, unreadable or corrupt slot yields
// an empty list; the cause is only logged.
func (s *Store) Load(ctx context.Context, sessionID string) []Message {
	key := SlotKey(sessionID)
	raw, ok, err := s.slots.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("slot", key).Msg("read history failed")
		return []Message{}
	}
	if !ok || len(raw) == 0 {
		return []Message{}
	}

	var messages []Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		s.logger.Warn().Err(err).Str("slot", key).Msg("discard corrupt history")
		return []Message{}
	}
	if messages == nil {
		return []Message{}
	}
	return messages
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.slots.Delete(ctx, SlotKey(sessionID)); err != nil {
		return fmt.Errorf("clear history failed: %w", err)
	}
	return nil
}
