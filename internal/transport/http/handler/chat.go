package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"productivity-chatbot/internal/app"
	"productivity-chatbot/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

// ChatRequest keeps Message as a pointer so a missing field can be told
// apart from an empty one.
type ChatRequest struct {
	Message   *string `json:"message"`
	SessionID string  `json:"session_id"`
	UserID    uint    `json:"user_id"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		response.Error(c, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.chatService.Chat(c.Request.Context(), app.ChatInput{
		Message:   *req.Message,
		SessionID: req.SessionID,
		UserID:    req.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, "Message cannot be empty")
		case errors.Is(err, app.ErrMessageEnqueue):
			response.Error(c, http.StatusServiceUnavailable, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "process message failed")
		}
		return
	}

	response.OK(c, reply)
}

func (h *ChatHandler) Intents(c *gin.Context) {
	response.OK(c, gin.H{"intents": h.chatService.Intents()})
}

// queryUserID reads ?user_id, falling back to the default user when absent
// or malformed.
func queryUserID(c *gin.Context) uint {
	raw := c.Query("user_id")
	if raw == "" {
		return app.DefaultUserID
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return app.DefaultUserID
	}
	return uint(parsed)
}
