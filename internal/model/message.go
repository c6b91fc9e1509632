package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type Message struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ConversationID uint           `gorm:"not null;index" json:"conversation_id"`
	Sender         string         `gorm:"size:10;not null;index" json:"sender"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	Intent         string         `gorm:"size:50;index" json:"intent,omitempty"`
	Confidence     *float64       `json:"confidence"`
	Entities       datatypes.JSON `json:"entities,omitempty"`
	Sentiment      datatypes.JSON `json:"sentiment,omitempty"`
	Timestamp      time.Time      `gorm:"index" json:"timestamp"`
}
