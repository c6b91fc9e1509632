package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"productivity-chatbot/internal/app"
	"productivity-chatbot/internal/transport/http/response"
)

type ConversationHandler struct {
	conversationService *app.ConversationService
}

func NewConversationHandler(conversationService *app.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

func (h *ConversationHandler) List(c *gin.Context) {
	conversations, err := h.conversationService.List(queryUserID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list conversations failed")
		return
	}
	response.OK(c, gin.H{"conversations": conversations})
}

func (h *ConversationHandler) Messages(c *gin.Context) {
	result, err := h.conversationService.Messages(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "invalid session_id")
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, "Conversation not found")
		default:
			response.Error(c, http.StatusInternalServerError, "get messages failed")
		}
		return
	}
	response.OK(c, result)
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.conversationService.Delete(c.Request.Context(), c.Param("session_id")); err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, "Conversation not found")
		default:
			response.Error(c, http.StatusInternalServerError, "delete conversation failed")
		}
		return
	}
	response.OK(c, gin.H{"message": "Conversation deleted successfully"})
}
