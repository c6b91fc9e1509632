package history

import (
	"time"

	"productivity-chatbot/internal/wire"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is one rendered chat bubble.
type Message struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// Metadata is the classification attached to bot replies.
type Metadata struct {
	Intent     string                 `json:"intent,omitempty"`
	Confidence float64                `json:"confidence"`
	Entities   map[string]interface{} `json:"entities,omitempty"`
	Sentiment  *wire.Sentiment        `json:"sentiment,omitempty"`
}

// MetadataFromReply copies the classification out of a server reply.
func MetadataFromReply(reply wire.ChatReply) *Metadata {
	sentiment := reply.Sentiment
	return &Metadata{
		Intent:     reply.Intent,
		Confidence: reply.Confidence,
		Entities:   reply.Entities,
		Sentiment:  &sentiment,
	}
}
