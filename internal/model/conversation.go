package model

import "time"

const (
	ConversationActive = "active"
	ConversationEnded  = "ended"
)

type Conversation struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	SessionID string     `gorm:"size:100;not null;uniqueIndex" json:"session_id"`
	StartedAt time.Time  `gorm:"index" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Status    string     `gorm:"size:20;default:active" json:"status"`
}
