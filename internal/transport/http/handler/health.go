package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DependencyCheck pings one backing service.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	name      string
	env       string
	startedAt time.Time
	checks    []DependencyCheck
	liveConns func() int
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(name, env string, startedAt time.Time, liveConns func() int, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{
		name:      name,
		env:       env,
		startedAt: startedAt,
		checks:    checks,
		liveConns: liveConns,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	allOK := true
	deps := orderedmap.New[string, dependencyStatus]()
	for _, check := range h.checks {
		status := dependencyStatus{OK: true}
		if err := check.Check(ctx); err != nil {
			status = dependencyStatus{OK: false, Message: err.Error()}
			allOK = false
		}
		deps.Set(check.Name, status)
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	wsConns := 0
	if h.liveConns != nil {
		wsConns = h.liveConns()
	}
	c.JSON(statusCode, gin.H{
		"app":                   h.name,
		"env":                   h.env,
		"uptime_sec":            int(time.Since(h.startedAt).Seconds()),
		"websocket_connections": wsConns,
		"dependencies":          deps,
	})
}
