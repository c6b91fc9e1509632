package repository

import (
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"productivity-chatbot/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

type IntentCount struct {
	Intent string `gorm:"column:intent"`
	Count  int64  `gorm:"column:intent_count"`
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListByConversationID returns every message of a conversation in send
// order, reading pageSize rows per query.
func (r *MessageRepository) ListByConversationID(conversationID uint, pageSize int) ([]model.Message, error) {
	if pageSize <= 0 {
		pageSize = 200
	}

	var messages []model.Message
	for offset := 0; ; offset += pageSize {
		var page []model.Message
		err := r.db.Where("conversation_id = ?", conversationID).
			Order("timestamp ASC, id ASC").
			Offset(offset).
			Limit(pageSize).
			Find(&page).Error
		if err != nil {
			return nil, fmt.Errorf("list messages failed: %w", err)
		}
		messages = append(messages, page...)
		if len(page) < pageSize {
			return messages, nil
		}
	}
}

func (r *MessageRepository) byUser(userID uint) *gorm.DB {
	return r.db.Model(&model.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.user_id = ?", userID)
}

func (r *MessageRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	if err := r.byUser(userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return count, nil
}

// IntentDistribution counts classified user messages per intent, most
// frequent first.
func (r *MessageRepository) IntentDistribution(userID uint) ([]IntentCount, error) {
	var rows []IntentCount
	err := r.byUser(userID).
		Select("messages.intent AS intent, COUNT(messages.id) AS intent_count").
		Where("messages.sender = ? AND messages.intent <> ''", model.SenderUser).
		Group("messages.intent").
		Order("intent_count DESC, intent ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("intent distribution failed: %w", err)
	}
	return rows, nil
}

// AverageConfidence is the mean classifier confidence over the user's
// messages, zero when nothing was classified.
func (r *MessageRepository) AverageConfidence(userID uint) (float64, error) {
	var avg sql.NullFloat64
	err := r.byUser(userID).
		Select("AVG(messages.confidence)").
		Where("messages.sender = ? AND messages.confidence IS NOT NULL", model.SenderUser).
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("average confidence failed: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}
