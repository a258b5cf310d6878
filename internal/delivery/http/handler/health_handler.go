package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthChecker - a dependency the health route reports on
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler - liveness plus dependency state
type HealthHandler struct {
	loaded func() bool
	store  HealthChecker
	stream HealthChecker
	logger *zap.Logger
}

func NewHealthHandler(loaded func() bool, store HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		loaded: loaded,
		store:  store,
		logger: logger,
	}
}

// WithStream adds the refresh stream connection to the report.
func (h *HealthHandler) WithStream(stream HealthChecker) *HealthHandler {
	h.stream = stream
	return h
}

// Health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "healthy"
	store := "ok"

	if h.store != nil {
		if err := h.store.Health(c.Context()); err != nil {
			h.logger.Warn("Vote store unhealthy", zap.Error(err))
			status = "degraded"
			store = "unavailable"
		}
	}

	body := fiber.Map{
		"status":       status,
		"vote_store":   store,
		"cache_loaded": h.loaded(),
		"time":         time.Now(),
	}

	if h.stream != nil {
		body["refresh_stream"] = "ok"
		if err := h.stream.Health(c.Context()); err != nil {
			h.logger.Warn("Refresh stream unhealthy", zap.Error(err))
			body["status"] = "degraded"
			body["refresh_stream"] = "unavailable"
		}
	}

	return c.JSON(body)
}
