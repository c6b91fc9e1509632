package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"productivity-chatbot/internal/model"
	"productivity-chatbot/internal/repository"
)

type ConversationService struct {
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository
	historyCache     HistoryCache
	historyPageSize  int
}

type ConversationMessages struct {
	SessionID    string                         `json:"session_id"`
	Conversation repository.ConversationSummary `json:"conversation"`
	Messages     []model.Message                `json:"messages"`
}

func NewConversationService(
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	historyCache HistoryCache,
) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		historyCache:     historyCache,
		historyPageSize:  200,
	}
}

func (s *ConversationService) List(userID uint) ([]repository.ConversationSummary, error) {
	if userID == 0 {
		userID = DefaultUserID
	}
	return s.conversationRepo.ListByUserID(userID)
}

// Messages returns a conversation with its messages in send order. The redis
// copy is only trusted while no write is pending for the session.
func (s *ConversationService) Messages(ctx context.Context, sessionID string) (*ConversationMessages, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.GetBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	out := &ConversationMessages{
		SessionID: sessionID,
		Conversation: repository.ConversationSummary{
			ID:        conversation.ID,
			UserID:    conversation.UserID,
			SessionID: conversation.SessionID,
			StartedAt: conversation.StartedAt,
			EndedAt:   conversation.EndedAt,
			Status:    conversation.Status,
		},
	}
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				out.Messages = cached
				out.Conversation.MessageCount = int64(len(cached))
				return out, nil
			}
		}
	}

	messages, err := s.messageRepo.ListByConversationID(conversation.ID, s.historyPageSize)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			if err := s.historyCache.SetHistory(ctx, sessionID, messages); err != nil {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("cache history failed")
			}
		}
	}
	out.Messages = messages
	out.Conversation.MessageCount = int64(len(messages))
	return out, nil
}

func (s *ConversationService) Delete(ctx context.Context, sessionID string) error {
	conversation, err := s.conversationRepo.GetBySessionID(strings.TrimSpace(sessionID))
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}
	if err := s.conversationRepo.Delete(conversation.ID); err != nil {
		return err
	}
	if s.historyCache != nil {
		if err := s.historyCache.DeleteHistory(ctx, conversation.SessionID); err != nil {
			log.Warn().Err(err).Str("session_id", conversation.SessionID).Msg("delete cached history failed")
		}
	}
	return nil
}
