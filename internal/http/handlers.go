package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/irislabs/agentshell/internal/logging"
	"github.com/irislabs/agentshell/internal/monitoring"
	"github.com/irislabs/agentshell/internal/service"
	"github.com/irislabs/agentshell/internal/shared/id"
	"github.com/irislabs/agentshell/internal/shared/types"
	"github.com/irislabs/agentshell/internal/shared/validate"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	metrics  *monitoring.Metrics
	log      *logging.Logger
	started  time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, metrics *monitoring.Metrics, log *logging.Logger) *Handlers {
	return &Handlers{
		registry: registry,
		metrics:  metrics,
		log:      log,
		started:  time.Now(),
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "agentshell",
		"version": "0.1.0",
	})
}

// Health handles the detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"registry":       h.registry.Stats(),
	})
}

// ListServices lists all registered services with their tool definitions
func (h *Handlers) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(),
		"stats":    h.registry.Stats(),
	})
}

// ListTools lists every tool across all services, the flat list an agent
// loop feeds to its model
func (h *Handlers) ListTools(c *gin.Context) {
	tools := h.registry.Tools()
	c.JSON(http.StatusOK, gin.H{
		"tools": tools,
		"count": len(tools),
	})
}

// Execute runs a tool by id
func (h *Handlers) Execute(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.ToolID(req.ToolID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := id.NewRequestID()
	start := time.Now()

	rid := requestID.String()
	appCtx := &types.Context{RequestID: &rid, AgentID: req.AgentID}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	duration := time.Since(start)

	if err != nil {
		h.metrics.RecordToolCall(req.ToolID, "unknown_tool", duration)
		c.JSON(http.StatusNotFound, gin.H{
			"error":      err.Error(),
			"request_id": requestID.String(),
		})
		return
	}

	status := "success"
	if !result.Success {
		status = "failure"
	}
	h.metrics.RecordToolCall(req.ToolID, status, duration)
	h.log.Info("tool executed",
		zap.String("request_id", requestID.String()),
		zap.String("tool_id", req.ToolID),
		zap.String("status", status),
		zap.Duration("duration", duration),
	)

	c.JSON(http.StatusOK, gin.H{
		"request_id": requestID.String(),
		"result":     result,
	})
}

// Statuses reports the status panel of every service that implements
// StatusReporter, shell transcripts and discovered skills included
func (h *Handlers) Statuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses": h.registry.Statuses(),
	})
}
