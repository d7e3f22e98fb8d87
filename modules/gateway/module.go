package gateway

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/chat-relay/modules/broadcast"
	"github.com/example/chat-relay/modules/relay"
)

// Module is the client-facing edge: a Fiber HTTP server exposing the
// WebSocket endpoint plus health and room-listing routes.
type Module struct {
	app      *fiber.App
	handlers *Handlers
	port     string
	relay    *relay.Module
	hub      *broadcast.Hub
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new gateway module. The listen port comes from the
// PORT environment variable, defaulting to 3000.
func NewModule(relayModule *relay.Module, logger types.Logger) *Module {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return &Module{
		port:   port,
		relay:  relayModule,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "gateway"
}

// SetHub sets the broadcast hub (called from main.go).
func (m *Module) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// Start initializes and starts the HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.relay == nil {
		return fmt.Errorf("relay module dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "chat-relay",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	m.handlers = NewHandlers(m.relay, m.hub, m.logger)
	m.registerRoutes()

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		// Server started successfully
	}

	m.logger.Info("Gateway started", "port", m.port)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown gateway: %w", err)
	}
	m.logger.Info("Gateway stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// registerRoutes sets up the HTTP and WebSocket routes.
func (m *Module) registerRoutes() {
	m.app.Get("/health", m.handlers.HealthCheck)

	// WebSocket upgrade middleware
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handlers.HandleWebSocket))

	api := m.app.Group("/api/v1")
	api.Get("/rooms", m.handlers.ListRooms)
}

// errorHandler handles Fiber errors globally.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	m.logger.Error("HTTP error", "code", code, "message", message, "error", err)

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
