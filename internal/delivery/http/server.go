package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/praio-service/internal/config"
	"github.com/praio-service/internal/delivery/http/handler"
	"github.com/praio-service/internal/delivery/http/middleware"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Server - HTTP server on Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	pointHandler  *handler.PointHandler
	voteHandler   *handler.VoteHandler
	healthHandler *handler.HealthHandler
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	pointHandler *handler.PointHandler,
	voteHandler *handler.VoteHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Praio API",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:           app,
		config:        cfg,
		logger:        logger,
		pointHandler:  pointHandler,
		voteHandler:   voteHandler,
		healthHandler: healthHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// writeTimeout must outlast a full notify-refresh recheck loop.
func writeTimeout(cfg *config.Config) time.Duration {
	recheck := time.Duration(cfg.Cache.RecheckAttempts) * cfg.Cache.RecheckInterval
	if recheck < 10*time.Second {
		return 10 * time.Second
	}
	return recheck + 30*time.Second
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	s.app.Get("/health", s.healthHandler.Health)

	points := s.app.Group("/points")
	points.Get("/", s.pointHandler.List)
	points.Get("/:code", s.pointHandler.Get)
	points.Get("/:code/data", s.pointHandler.Data)
	points.Get("/:code/forecast", s.pointHandler.Forecast)
	points.Get("/:code/rating", s.pointHandler.Rating)

	s.app.Post("/vote", s.voteHandler.Submit)
	s.app.Post("/notify-refresh", s.pointHandler.NotifyRefresh)
}

// App exposes the fiber app for in-process requests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := "INTERNAL_SERVER_ERROR"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			if code == fiber.StatusNotFound {
				errCode = "NOT_FOUND"
			}
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    errCode,
				"message": err.Error(),
			},
		})
	}
}
