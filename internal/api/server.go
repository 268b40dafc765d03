// Package api serves statement previews over HTTP.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cleared-dev/icsimport/internal/importer"
	"github.com/cleared-dev/icsimport/internal/metrics"
)

// requestIDKey is the fiber locals key holding the request ID.
const requestIDKey = "requestid"

// DefaultBodyLimit caps uploads when Config.BodyLimit is zero.
const DefaultBodyLimit = 10 << 20

// Config controls the HTTP server.
type Config struct {
	BodyLimit int // bytes
}

// Server is the preview HTTP server.
type Server struct {
	app      *fiber.App
	registry *importer.Registry
	logger   *zap.Logger
}

// NewServer builds the fiber app with its middleware and routes.
func NewServer(registry *importer.Registry, logger *zap.Logger, cfg Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = DefaultBodyLimit
	}

	s := &Server{registry: registry, logger: logger}
	s.app = fiber.New(fiber.Config{
		AppName:               "icsimport",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	s.app.Use(s.logRequests)

	metrics.Init()

	s.app.Get("/api/health", s.handleHealth)
	s.app.Post("/api/statements/preview", s.handlePreview)
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	return s
}

// App exposes the underlying fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Let the error handler set the final status before logging it.
		if herr := s.app.ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	s.logger.Info("request",
		zap.String("request_id", requestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)))
	return nil
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	id := requestID(c)
	if id == "" {
		// Errors raised before the middleware chain runs, such as an
		// oversized body, have no request ID yet.
		id = c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("request_id", id), zap.Error(err))
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error(), RequestID: id})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
