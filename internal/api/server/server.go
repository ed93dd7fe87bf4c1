package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/api/middleware"
	"github.com/feral-file/ff-vault/internal/api/rest"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/messaging"
	"github.com/feral-file/ff-vault/internal/registry"
)

// Config holds the server configuration
type Config struct {
	Debug          bool
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	Auth           middleware.AuthConfig
}

// Server wraps the HTTP server
type Server struct {
	config        Config
	hub           registry.Hub
	events        rest.EventReader
	notifications messaging.NotificationHandler
	clock         adapter.Clock
	httpServer    *http.Server
}

// New creates a new API server
func New(cfg Config, hub registry.Hub, events rest.EventReader, notifications messaging.NotificationHandler, clock adapter.Clock) *Server {
	return &Server{
		config:        cfg,
		hub:           hub,
		events:        events,
		notifications: notifications,
		clock:         clock,
	}
}

// Router builds the gin router with middleware and routes
func (s *Server) Router() *gin.Engine {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(s.config.AllowedOrigins))

	// Setup REST routes
	restHandler := rest.NewHandler(s.hub, s.events, s.notifications)
	rest.SetupRoutes(router, restHandler, s.config.Auth, s.clock)

	return router
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
