// Package server exposes the portfolio API over HTTP and WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"folioscope/internal/server/handler"
	"folioscope/internal/server/middleware"
	"folioscope/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server registers.
type Handlers struct {
	Health    *handler.HealthHandler
	Portfolio *handler.PortfolioHandler
	Accounts  *handler.AccountHandler
	Manual    *handler.ManualPositionHandler
	Prices    *handler.PriceHandler
	Snapshots *handler.SnapshotHandler
}

// Server is the HTTP + WebSocket API server for the portfolio tracker.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered on the
// ServeMux and the middleware chain (auth, logging, CORS) applied.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required beyond the shared chain).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Portfolio view.
	mux.HandleFunc("GET /api/portfolio", handlers.Portfolio.GetPortfolio)

	// Account configuration.
	mux.HandleFunc("GET /api/accounts", handlers.Accounts.ListAccounts)
	mux.HandleFunc("POST /api/accounts", handlers.Accounts.CreateAccount)
	mux.HandleFunc("GET /api/accounts/{id}", handlers.Accounts.GetAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", handlers.Accounts.UpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", handlers.Accounts.DeleteAccount)

	// Manually entered positions.
	mux.HandleFunc("GET /api/positions/manual", handlers.Manual.ListPositions)
	mux.HandleFunc("POST /api/positions/manual", handlers.Manual.CreatePosition)
	mux.HandleFunc("PUT /api/positions/manual/{id}", handlers.Manual.UpdatePosition)
	mux.HandleFunc("DELETE /api/positions/manual/{id}", handlers.Manual.DeletePosition)

	// On-demand price lookups.
	mux.HandleFunc("GET /api/prices/crypto", handlers.Prices.GetCryptoPrices)
	mux.HandleFunc("GET /api/prices/stocks", handlers.Prices.GetStockQuotes)
	mux.HandleFunc("GET /api/prices/stocks/search", handlers.Prices.SearchSymbols)

	// Snapshot history.
	mux.HandleFunc("GET /api/snapshots", handlers.Snapshots.ListSnapshots)
	mux.HandleFunc("POST /api/snapshots/trigger", handlers.Snapshots.TriggerSnapshot)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
