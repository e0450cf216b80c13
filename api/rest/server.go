// Package rest provides the REST API surface of the assistant engine.
package rest

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"yqhp/assistant-engine/internal/engine"
	"yqhp/assistant-engine/internal/session"
	"yqhp/assistant-engine/pkg/types"
)

// Planner is the planning collaborator the execute endpoint depends on.
// Satisfied by nlu.Planner; tests stub it.
type Planner interface {
	Plan(ctx context.Context, requestText string) (*types.ExecutionPlan, error)
}

// Config holds the configuration for the REST API server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080").
	Address string `yaml:"address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// EnableCORS enables Cross-Origin Resource Sharing.
	EnableCORS bool `yaml:"enable_cors"`
}

// DefaultConfig returns a default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		EnableCORS:   true,
	}
}

// Server represents the REST API server.
type Server struct {
	app      *fiber.App
	engine   *engine.Engine
	planner  Planner
	sessions *session.Store
	config   *Config
}

// NewServer creates a new REST API server.
func NewServer(eng *engine.Engine, planner Planner, sessions *session.Store, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		ErrorHandler: customErrorHandler,
		AppName:      "Assistant Engine API",
	})

	server := &Server{
		app:      app,
		engine:   eng,
		planner:  planner,
		sessions: sessions,
		config:   config,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	// Recovery middleware - recovers from panics
	s.app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
	}))

	// Logger middleware - logs HTTP requests
	s.app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	if s.config.EnableCORS {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept,Authorization",
			MaxAge:       86400,
		}))
	}
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)

	v1 := s.app.Group("/api/v1/assistant")
	v1.Post("/execute", s.handleExecute)
	v1.Post("/confirm", s.handleConfirm)
	v1.Get("/capabilities", s.handleCapabilities)
	v1.Get("/stats", s.handleStats)
}

// Start begins listening. Blocks until Shutdown or a listener error.
func (s *Server) Start() error {
	return s.app.Listen(s.config.Address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// customErrorHandler renders unhandled fiber errors as the uniform body.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}
