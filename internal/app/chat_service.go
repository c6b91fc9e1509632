package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"productivity-chatbot/internal/model"
	"productivity-chatbot/internal/nlp"
	"productivity-chatbot/internal/repository"
	"productivity-chatbot/internal/wire"
)

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.Message) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

type ChatService struct {
	conversationRepo *repository.ConversationRepository
	publisher        MessagePublisher
	historyCache     HistoryCache
	engine           *nlp.Engine
	now              func() time.Time
}

type ChatInput struct {
	Message   string
	SessionID string
	UserID    uint
}

func NewChatService(
	conversationRepo *repository.ConversationRepository,
	publisher MessagePublisher,
	historyCache HistoryCache,
	engine *nlp.Engine,
) *ChatService {
	return &ChatService{
		conversationRepo: conversationRepo,
		publisher:        publisher,
		historyCache:     historyCache,
		engine:           engine,
		now:              time.Now,
	}
}

// Chat classifies one user message, queues both sides of the exchange for
// persistence and returns the bot reply.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*wire.ChatReply, error) {
	content := strings.TrimSpace(input.Message)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := input.UserID
	if userID == 0 {
		userID = DefaultUserID
	}

	conversation, err := s.conversationRepo.GetOrCreate(userID, sessionID)
	if err != nil {
		return nil, err
	}

	result := s.engine.Process(content)
	entities, err := json.Marshal(result.Entities)
	if err != nil {
		return nil, fmt.Errorf("marshal entities failed: %w", err)
	}
	sentiment, err := json.Marshal(result.Sentiment)
	if err != nil {
		return nil, fmt.Errorf("marshal sentiment failed: %w", err)
	}

	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}
	if s.historyCache != nil {
		if err := s.historyCache.MarkDirty(ctx, sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("mark history dirty failed")
		}
		if err := s.historyCache.DeleteHistory(ctx, sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("delete cached history failed")
		}
	}

	now := s.now().UTC()
	confidence := result.Confidence
	userMessage := model.Message{
		ConversationID: conversation.ID,
		Sender:         model.SenderUser,
		Content:        content,
		Intent:         result.Intent,
		Confidence:     &confidence,
		Entities:       datatypes.JSON(entities),
		Sentiment:      datatypes.JSON(sentiment),
		Timestamp:      now,
	}
	if err := s.publisher.Publish(ctx, userMessage); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("publish user message failed")
		return nil, ErrMessageEnqueue
	}

	botMessage := model.Message{
		ConversationID: conversation.ID,
		Sender:         model.SenderBot,
		Content:        result.Response,
		Intent:         result.Intent,
		Confidence:     &confidence,
		Timestamp:      now,
	}
	if err := s.publisher.Publish(ctx, botMessage); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("publish bot message failed")
		return nil, ErrMessageEnqueue
	}

	return &wire.ChatReply{
		SessionID:   sessionID,
		UserMessage: content,
		BotResponse: result.Response,
		Intent:      result.Intent,
		Confidence:  result.Confidence,
		Entities:    result.Entities,
		Sentiment: wire.Sentiment{
			Label:        result.Sentiment.Label,
			Polarity:     result.Sentiment.Polarity,
			Subjectivity: result.Sentiment.Subjectivity,
		},
		Timestamp: now.Format(time.RFC3339Nano),
	}, nil
}

func (s *ChatService) Intents() map[string]nlp.IntentSummary {
	return s.engine.Catalog()
}
