package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productivity-chatbot/internal/cache"
	"productivity-chatbot/internal/model"
	"productivity-chatbot/internal/nlp"
	"productivity-chatbot/internal/pkg/testdb"
	"productivity-chatbot/internal/repository"
)

type services struct {
	chat          *ChatService
	conversations *ConversationService
	analytics     *AnalyticsService
	messages      *repository.MessageRepository
	cache         *cache.HistoryCache
	redis         *miniredis.Miniredis
}

func newServices(t *testing.T) services {
	t.Helper()
	db := testdb.Open(t)
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	historyCache := cache.NewHistoryCache(client, time.Minute, 5*time.Second)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	engine := nlp.NewEngine(nlp.WithSeed(1))

	return services{
		chat:          NewChatService(conversationRepo, NewRepositoryPublisher(messageRepo), historyCache, engine),
		conversations: NewConversationService(conversationRepo, messageRepo, historyCache),
		analytics:     NewAnalyticsService(conversationRepo, messageRepo),
		messages:      messageRepo,
		cache:         historyCache,
		redis:         mr,
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, model.Message) error {
	return errors.New("broker down")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	s := newServices(t)
	_, err := s.chat.Chat(context.Background(), ChatInput{Message: "   "})
	require.ErrorIs(t, err, ErrMessageEmpty)
}

func TestChatPersistsBothSides(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	reply, err := s.chat.Chat(ctx, ChatInput{Message: "  Give me some productivity tips  ", SessionID: "sess-1", UserID: 3})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", reply.SessionID)
	assert.Equal(t, "Give me some productivity tips", reply.UserMessage)
	assert.Equal(t, "productivity_tips", reply.Intent)
	assert.NotEmpty(t, reply.BotResponse)
	assert.NotEmpty(t, reply.Timestamp)

	history, err := s.conversations.Messages(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, uint(3), history.Conversation.UserID)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, model.SenderUser, history.Messages[0].Sender)
	assert.Equal(t, "productivity_tips", history.Messages[0].Intent)
	require.NotNil(t, history.Messages[0].Confidence)
	assert.Equal(t, model.SenderBot, history.Messages[1].Sender)
	assert.Equal(t, reply.BotResponse, history.Messages[1].Content)

	var sentiment nlp.Sentiment
	require.NoError(t, json.Unmarshal(history.Messages[0].Sentiment, &sentiment))
	assert.Equal(t, reply.Sentiment.Label, sentiment.Label)
}

func TestChatDefaultsSessionAndUser(t *testing.T) {
	s := newServices(t)
	reply, err := s.chat.Chat(context.Background(), ChatInput{Message: "hello"})
	require.NoError(t, err)
	assert.Len(t, reply.SessionID, 36)

	list, err := s.conversations.List(0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, DefaultUserID, list[0].UserID)
	assert.Equal(t, int64(2), list[0].MessageCount)
}

func TestChatPublishFailure(t *testing.T) {
	s := newServices(t)
	s.chat.publisher = failingPublisher{}
	_, err := s.chat.Chat(context.Background(), ChatInput{Message: "hello", SessionID: "x"})
	require.ErrorIs(t, err, ErrMessageEnqueue)
}

func TestMessagesUsesCacheUntilDirty(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.chat.Chat(ctx, ChatInput{Message: "hello", SessionID: "sess-2"})
	require.NoError(t, err)

	// the write left a dirty marker, so nothing is cached yet
	_, err = s.conversations.Messages(ctx, "sess-2")
	require.NoError(t, err)
	_, hit, err := s.cache.GetHistory(ctx, "sess-2")
	require.NoError(t, err)
	assert.False(t, hit)

	s.redis.FastForward(6 * time.Second)
	first, err := s.conversations.Messages(ctx, "sess-2")
	require.NoError(t, err)
	cached, hit, err := s.cache.GetHistory(ctx, "sess-2")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Len(t, cached, len(first.Messages))

	_, err = s.chat.Chat(ctx, ChatInput{Message: "thanks, bye", SessionID: "sess-2"})
	require.NoError(t, err)
	again, err := s.conversations.Messages(ctx, "sess-2")
	require.NoError(t, err)
	assert.Len(t, again.Messages, 4)
}

func TestMessagesReturnsEveryPage(t *testing.T) {
	s := newServices(t)
	s.conversations.historyPageSize = 2
	ctx := context.Background()

	for _, text := range []string{"hello", "add task write notes", "thanks, bye"} {
		_, err := s.chat.Chat(ctx, ChatInput{Message: text, SessionID: "paged"})
		require.NoError(t, err)
	}

	history, err := s.conversations.Messages(ctx, "paged")
	require.NoError(t, err)
	require.Len(t, history.Messages, 6)
	assert.Equal(t, int64(6), history.Conversation.MessageCount)
	assert.Equal(t, "hello", history.Messages[0].Content)
	assert.Equal(t, "thanks, bye", history.Messages[4].Content)
}

type brokenDeleteCache struct {
	*cache.HistoryCache
}

func (brokenDeleteCache) DeleteHistory(context.Context, string) error {
	return errors.New("redis unavailable")
}

func TestCacheDeleteFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	s := newServices(t)
	broken := brokenDeleteCache{s.cache}
	db := testdb.Open(t)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	chat := NewChatService(conversationRepo, NewRepositoryPublisher(messageRepo), broken, nlp.NewEngine(nlp.WithSeed(1)))
	conversations := NewConversationService(conversationRepo, messageRepo, broken)
	ctx := context.Background()

	_, err := chat.Chat(ctx, ChatInput{Message: "hello", SessionID: "stale"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "delete cached history failed")
	assert.Contains(t, buf.String(), `"session_id":"stale"`)

	buf.Reset()
	require.NoError(t, conversations.Delete(ctx, "stale"))
	assert.Contains(t, buf.String(), "delete cached history failed")
}

func TestMessagesUnknownConversation(t *testing.T) {
	s := newServices(t)
	_, err := s.conversations.Messages(context.Background(), "nope")
	require.ErrorIs(t, err, ErrConversationNotFound)

	err = s.conversations.Delete(context.Background(), "nope")
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestDeleteConversation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, err := s.chat.Chat(ctx, ChatInput{Message: "hello", SessionID: "gone"})
	require.NoError(t, err)

	require.NoError(t, s.conversations.Delete(ctx, "gone"))
	_, err = s.conversations.Messages(ctx, "gone")
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestAnalyticsSummary(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	for _, msg := range []string{"Give me some productivity tips", "any productivity tips to stay focused", "hello"} {
		_, err := s.chat.Chat(ctx, ChatInput{Message: msg, SessionID: "a1", UserID: 5})
		require.NoError(t, err)
	}
	_, err := s.chat.Chat(ctx, ChatInput{Message: "hello", SessionID: "a2", UserID: 5})
	require.NoError(t, err)

	summary, err := s.analytics.Summary(5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalConversations)
	assert.Equal(t, int64(8), summary.TotalMessages)
	assert.Equal(t, uint(5), summary.UserID)
	assert.Greater(t, summary.AverageConfidence, 0.0)

	var total int64
	for pair := summary.IntentDistribution.Oldest(); pair != nil; pair = pair.Next() {
		total += pair.Value
	}
	assert.Equal(t, int64(4), total)

	raw, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"intent_distribution":{`)
}

func TestAnalyticsEmptyUser(t *testing.T) {
	s := newServices(t)
	summary, err := s.analytics.Summary(42)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalMessages)
	assert.Zero(t, summary.AverageConfidence)
	assert.Equal(t, 0, summary.IntentDistribution.Len())
}

func TestIntentsCatalogSkipsUnknown(t *testing.T) {
	s := newServices(t)
	catalog := s.chat.Intents()
	assert.NotContains(t, catalog, nlp.IntentUnknown)
	assert.Contains(t, catalog, "greeting")
}
