// Package wire holds the JSON payloads shared by the chat server and its
// clients: the REST bodies and the realtime event envelope.
package wire

import (
	"encoding/json"
	"fmt"
)

// Realtime event names.
const (
	EventConnected = "connected"
	EventMessage   = "message"
	EventTyping    = "typing"
	EventError     = "error"
	EventJoinRoom  = "join_room"
	EventLeaveRoom = "leave_room"
	EventJoined    = "joined"
	EventLeft      = "left"
)

// Envelope frames every realtime event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(event string, data interface{}) (Envelope, error) {
	if data == nil {
		return Envelope{Event: event}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload failed: %w", event, err)
	}
	return Envelope{Event: event, Data: raw}, nil
}

// Decode unmarshals the envelope payload into dst.
func (e Envelope) Decode(dst interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no payload", e.Event)
	}
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return fmt.Errorf("decode %s payload failed: %w", e.Event, err)
	}
	return nil
}

// ChatRequest is the outbound user message, sent as the realtime "message"
// event or as the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	UserID    uint   `json:"user_id,omitempty"`
}

type Sentiment struct {
	Label        string  `json:"sentiment"`
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

// ChatReply is the bot answer, delivered as the realtime "message" event or
// as the POST /api/chat response.
type ChatReply struct {
	SessionID   string                 `json:"session_id"`
	UserMessage string                 `json:"user_message"`
	BotResponse string                 `json:"bot_response"`
	Intent      string                 `json:"intent"`
	Confidence  float64                `json:"confidence"`
	Entities    map[string]interface{} `json:"entities"`
	Sentiment   Sentiment              `json:"sentiment"`
	Timestamp   string                 `json:"timestamp"`
}

type Typing struct {
	Typing bool `json:"typing"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type Connected struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Room is used by join_room/leave_room and their joined/left replies.
type Room struct {
	SessionID string `json:"session_id"`
}
