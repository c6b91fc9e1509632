package app

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"productivity-chatbot/internal/repository"
)

type AnalyticsService struct {
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository
}

// Analytics is the per-user usage summary. IntentDistribution keeps the
// most frequent intent first when encoded.
type Analytics struct {
	TotalConversations int64                                 `json:"total_conversations"`
	TotalMessages      int64                                 `json:"total_messages"`
	IntentDistribution *orderedmap.OrderedMap[string, int64] `json:"intent_distribution"`
	AverageConfidence  float64                               `json:"average_confidence"`
	UserID             uint                                  `json:"user_id"`
}

func NewAnalyticsService(conversationRepo *repository.ConversationRepository, messageRepo *repository.MessageRepository) *AnalyticsService {
	return &AnalyticsService{conversationRepo: conversationRepo, messageRepo: messageRepo}
}

func (s *AnalyticsService) Summary(userID uint) (*Analytics, error) {
	if userID == 0 {
		userID = DefaultUserID
	}

	conversations, err := s.conversationRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.messageRepo.IntentDistribution(userID)
	if err != nil {
		return nil, err
	}
	avg, err := s.messageRepo.AverageConfidence(userID)
	if err != nil {
		return nil, err
	}

	distribution := orderedmap.New[string, int64]()
	for _, row := range counts {
		distribution.Set(row.Intent, row.Count)
	}
	return &Analytics{
		TotalConversations: conversations,
		TotalMessages:      messages,
		IntentDistribution: distribution,
		AverageConfidence:  avg,
		UserID:             userID,
	}, nil
}
