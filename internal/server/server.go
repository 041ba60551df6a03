// Package server exposes the simulator as a web terminal: a small gin API
// that creates sessions, feeds them command lines, and drains their output.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nonightshift/scosim/internal/config"
)

// Server represents the HTTP server.
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	auth       *AuthService
	sessions   *SessionManager
	httpServer *http.Server
}

// New creates a new server instance.
func New(cfg *config.Config) *Server {
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		router:   gin.New(),
		auth:     NewAuthService(cfg.APIKey, cfg.JWTSecret),
		sessions: NewSessionManager(cfg),
	}

	s.router.Use(RecoveryMiddleware())
	s.router.Use(LoggerMiddleware())
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// health check and token exchange need no bearer token
	s.router.GET("/health", s.healthCheck)
	s.router.POST("/auth/token", s.issueToken)

	api := s.router.Group("/api")
	api.Use(AuthMiddleware(s.auth))
	{
		api.GET("/sessions", s.listSessions)
		api.POST("/session", s.createSession)
		api.POST("/session/:id/input", s.sessionInput)
		api.GET("/session/:id/output", s.sessionOutput)
		api.DELETE("/session/:id", s.deleteSession)
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down web terminal...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Starting web terminal on %s", s.cfg.Addr())

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	s.sessions.CloseAll()
	log.Println("Server stopped")
	return nil
}

// Router returns the gin router, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
