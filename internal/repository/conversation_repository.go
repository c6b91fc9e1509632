package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"productivity-chatbot/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

// ConversationSummary is a conversation row with its message count.
type ConversationSummary struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	SessionID    string     `json:"session_id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	Status       string     `json:"status"`
	MessageCount int64      `json:"message_count"`
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) GetBySessionID(sessionID string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.Where("session_id = ?", sessionID).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conversation, nil
}

// GetOrCreate returns the conversation bound to sessionID, creating an active
// one owned by userID when none exists yet.
func (r *ConversationRepository) GetOrCreate(userID uint, sessionID string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.
		Where(model.Conversation{SessionID: sessionID}).
		Attrs(model.Conversation{
			UserID:    userID,
			Status:    model.ConversationActive,
			StartedAt: time.Now().UTC(),
		}).
		FirstOrCreate(&conversation).Error
	if err != nil {
		return nil, fmt.Errorf("get or create conversation failed: %w", err)
	}
	return &conversation, nil
}

func (r *ConversationRepository) ListByUserID(userID uint) ([]ConversationSummary, error) {
	var rows []ConversationSummary
	err := r.db.Model(&model.Conversation{}).
		Select("conversations.id, conversations.user_id, conversations.session_id, conversations.started_at, " +
			"conversations.ended_at, conversations.status, COUNT(messages.id) AS message_count").
		Joins("LEFT JOIN messages ON messages.conversation_id = conversations.id").
		Where("conversations.user_id = ?", userID).
		Group("conversations.id, conversations.user_id, conversations.session_id, conversations.started_at, " +
			"conversations.ended_at, conversations.status").
		Order("conversations.started_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return rows, nil
}

func (r *ConversationRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Conversation{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count conversations failed: %w", err)
	}
	return count, nil
}

// Delete removes the conversation and all of its messages in one transaction.
func (r *ConversationRepository) Delete(conversationID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Conversation{}, conversationID).Error
	})
	if err != nil {
		return fmt.Errorf("delete conversation failed: %w", err)
	}
	return nil
}
