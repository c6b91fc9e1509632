package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	appsvc "productivity-chatbot/internal/app"
	"productivity-chatbot/internal/bootstrap"
	"productivity-chatbot/internal/transport/http/handler"
	"productivity-chatbot/internal/transport/realtime"
)

// Dependencies is everything the router serves.
type Dependencies struct {
	GinMode       string
	Chat          *appsvc.ChatService
	Conversations *appsvc.ConversationService
	Analytics     *appsvc.AnalyticsService
	Hub           *realtime.Hub
	Health        *handler.HealthHandler
}

func NewRouter(app *bootstrap.App, hub *realtime.Hub) *gin.Engine {
	checks := []handler.DependencyCheck{
		{Name: "mysql", Check: func(ctx context.Context) error {
			sqlDB, err := app.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		{Name: "redis", Check: func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}},
	}
	if app.Config.RabbitMQ.Enabled {
		checks = append(checks, handler.DependencyCheck{Name: "rabbitmq", Check: func(context.Context) error {
			if app.MQConn == nil || app.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}})
	}

	return New(Dependencies{
		GinMode:       app.Config.App.GinMode,
		Chat:          app.Chat,
		Conversations: app.Conversations,
		Analytics:     app.Analytics,
		Hub:           hub,
		Health: handler.NewHealthHandler(
			app.Config.App.Name,
			app.Config.App.Env,
			app.StartedAt,
			hub.Count,
			checks...,
		),
	})
}

func New(deps Dependencies) *gin.Engine {
	if deps.GinMode != "" {
		gin.SetMode(deps.GinMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	if deps.Health != nil {
		router.GET("/healthz", deps.Health.Check)
	}
	if deps.Hub != nil {
		router.GET("/ws", deps.Hub.Serve)
	}

	chatHandler := handler.NewChatHandler(deps.Chat)
	conversationHandler := handler.NewConversationHandler(deps.Conversations)
	analyticsHandler := handler.NewAnalyticsHandler(deps.Analytics)

	api := router.Group("/api")
	api.POST("/chat", chatHandler.Chat)
	api.GET("/intents", chatHandler.Intents)
	api.GET("/conversations", conversationHandler.List)
	api.GET("/conversations/:session_id/messages", conversationHandler.Messages)
	api.DELETE("/conversations/:session_id", conversationHandler.Delete)
	api.GET("/analytics", analyticsHandler.Summary)

	return router
}
