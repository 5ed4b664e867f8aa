// Package server provides the HTTP API for the frack ticket tracker.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/frackdev/frack/internal/events"
	"github.com/frackdev/frack/internal/files"
	"github.com/frackdev/frack/internal/service"
)

// Config holds the server configuration.
type Config struct {
	// Port is the TCP port to listen on (default 1353).
	Port int

	// Host is the address to bind to (default "localhost").
	Host string

	// DB is the database connection.
	DB *sql.DB

	// FileRoot is the directory attachment files are stored under
	// (default "files").
	FileRoot string

	// BaseURL is the externally visible URL prefix (optional).
	BaseURL string

	// SecureCookies marks auth cookies Secure.
	SecureCookies bool

	// Exchange receives ticket events (optional).
	Exchange *events.Exchange

	// Logger for server events (optional).
	Logger *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	httpServer *http.Server
	router     *http.ServeMux
	logger     *slog.Logger

	tickets *service.TicketService
	auth    *service.AuthService
	store   *files.DiskStore
}

// New creates a new Server with the given configuration.
func New(config Config) (*Server, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if config.Port == 0 {
		config.Port = 1353
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.FileRoot == "" {
		config.FileRoot = "files"
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  config,
		router:  http.NewServeMux(),
		logger:  logger,
		tickets: service.NewTicketService(config.DB, config.Exchange),
		auth:    service.NewAuthService(config.DB),
		store:   files.NewDiskStore(config.FileRoot),
	}

	// Set up routes
	s.setupRoutes()

	return s, nil
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "url", fmt.Sprintf("http://%s", listener.Addr()))
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address (e.g., "localhost:1353").
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
