package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frackdev/frack/internal/db"
	"github.com/frackdev/frack/internal/events"
	"github.com/frackdev/frack/internal/server"
)

// Serve command flags
var (
	servePort     int
	serveHost     string
	serveFileRoot string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default 1353)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host address to bind to (default localhost)")
	serveCmd.Flags().StringVar(&serveFileRoot, "file-root", "", "Directory for attachment files (default ~/.frack/files)")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long: `Start the HTTP server that exposes the ticket tracker as a JSON API.

The API provides:
  - Ticket creation, retrieval, and update
  - Grouped comment history
  - Attachment upload and download
  - Email-keyed login with cookie authentication
  - Component, milestone, and enum reference data

Examples:
  frack serve                   # Start on default port 1353
  frack serve --port 8080       # Start on custom port
  frack serve --host 0.0.0.0    # Bind to all interfaces`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// newLogger builds the server logger: colored output when stderr is a
// terminal and color is not disabled.
func newLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
		NoColor:    IsNoColor() || !term.IsTerminal(int(os.Stderr.Fd())),
	}))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	host := serveHost
	if host == "" {
		host = cfg.Host
	}
	port := servePort
	if port == 0 {
		port = cfg.Port
	}
	fileRoot := serveFileRoot
	if fileRoot == "" {
		fileRoot = cfg.GetFileRoot()
	}

	database, err := db.Open(GetDBPath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger := newLogger()

	// The exchange lets in-process subscribers observe ticket activity;
	// for now the server only logs it.
	exchange := events.NewExchange(logger)
	exchange.Subscribe(events.TicketCreated, logEvent(logger, events.TicketCreated))
	exchange.Subscribe(events.TicketUpdated, logEvent(logger, events.TicketUpdated))
	exchange.Subscribe(events.AttachmentAdded, logEvent(logger, events.AttachmentAdded))

	srv, err := server.New(server.Config{
		Port:          port,
		Host:          host,
		DB:            database.DB,
		FileRoot:      fileRoot,
		BaseURL:       cfg.BaseURL,
		SecureCookies: cfg.SecureCookies,
		Exchange:      exchange,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Handle graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	OutputLine("Frack server starting at http://%s", srv.Address())
	OutputLine("Press Ctrl+C to stop")

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-stop:
		OutputLine("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	OutputLine("Server stopped")
	return nil
}

func logEvent(logger *slog.Logger, name string) events.Handler {
	return func(payload interface{}) error {
		logger.Info("event", "name", name, "payload", payload)
		return nil
	}
}
