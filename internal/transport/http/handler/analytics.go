package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"productivity-chatbot/internal/app"
	"productivity-chatbot/internal/transport/http/response"
)

type AnalyticsHandler struct {
	analyticsService *app.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *app.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.analyticsService.Summary(queryUserID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "load analytics failed")
		return
	}
	response.OK(c, summary)
}
