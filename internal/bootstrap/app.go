package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	appsvc "productivity-chatbot/internal/app"
	"productivity-chatbot/internal/cache"
	"productivity-chatbot/internal/config"
	"productivity-chatbot/internal/nlp"
	mysqlClient "productivity-chatbot/internal/platform/mysql"
	rabbitmqClient "productivity-chatbot/internal/platform/rabbitmq"
	redisClient "productivity-chatbot/internal/platform/redis"
	"productivity-chatbot/internal/repository"
	"productivity-chatbot/internal/worker"
)

type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	MQPublisher   *rabbitmqClient.MessagePublisher
	MessageWorker *worker.MessagePersistWorker

	Engine        *nlp.Engine
	Chat          *appsvc.ChatService
	Conversations *appsvc.ConversationService
	Analytics     *appsvc.AnalyticsService

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, StartedAt: time.Now()}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), cfg.App.Env == "dev")
	if err != nil {
		return nil, err
	}
	a.MySQL = mysqlDB

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Redis = redisCli

	conversationRepo := repository.NewConversationRepository(mysqlDB)
	messageRepo := repository.NewMessageRepository(mysqlDB)

	var publisher appsvc.MessagePublisher = appsvc.NewRepositoryPublisher(messageRepo)
	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.MQConn = mqConn

		a.MessageWorker = worker.NewMessagePersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue)
		if err := a.MessageWorker.Start(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("start message worker failed: %w", err)
		}
		a.MQPublisher = rabbitmqClient.NewMessagePublisher(mqConn, cfg.RabbitMQ.MessagePersistQueue)
		publisher = a.MQPublisher
	} else {
		log.Info().Msg("rabbitmq disabled, persisting messages inline")
	}

	engineOpts := []nlp.Option{nlp.WithMinConfidence(cfg.NLP.MinConfidence)}
	if cfg.NLP.Seed != 0 {
		engineOpts = append(engineOpts, nlp.WithSeed(cfg.NLP.Seed))
	}
	a.Engine = nlp.NewEngine(engineOpts...)

	historyCache := cache.NewHistoryCache(redisCli, cfg.HistoryTTL(), cfg.HistoryDirtyTTL())
	a.Chat = appsvc.NewChatService(conversationRepo, publisher, historyCache, a.Engine)
	a.Conversations = appsvc.NewConversationService(conversationRepo, messageRepo, historyCache)
	a.Analytics = appsvc.NewAnalyticsService(conversationRepo, messageRepo)

	return a, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQPublisher != nil {
		if err := a.MQPublisher.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
