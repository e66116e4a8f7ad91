package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/checkout"
	"github.com/beemafrica/beem-go/internal/config"
	"github.com/beemafrica/beem-go/internal/httputil"
	"github.com/beemafrica/beem-go/internal/transactions"
	"github.com/beemafrica/beem-go/internal/webhook"
)

// Server receives Beem callbacks and starts checkouts for browser clients.
type Server struct {
	cfg       *config.Config
	router    *chi.Mux
	http      *http.Server
	logger    *slog.Logger
	pool      *pgxpool.Pool      // nil when transactions are not stored
	checkouts *checkout.Service // nil disables /api/checkout
}

// New creates a Server with middleware and routes configured. store and
// checkouts may be nil; pool is only used by the health check.
func New(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool, store transactions.Store, checkouts *checkout.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	s := &Server{
		cfg:       cfg,
		router:    r,
		logger:    logger,
		pool:      pool,
		checkouts: checkouts,
	}

	r.Get("/health", s.handleHealth)

	if cfg.Webhook.Enabled {
		h := webhook.NewHandler(store, logger, webhook.WithRegion(cfg.Beem.Region))
		r.Mount(cfg.Webhook.Path, h.Routes(cfg.Webhook.Secret))
		r.Mount(cfg.Webhook.CollectionPath, h.CollectionRoutes(cfg.Webhook.Secret))
		if cfg.Webhook.Secret == "" {
			logger.Warn("webhook.secret is empty; callbacks are accepted without a token")
		}
	}

	if checkouts != nil {
		r.Route("/api/checkout", func(r chi.Router) {
			r.Use(corsMiddleware(cfg.Checkout.WhitelistDomains))
			r.Use(middleware.AllowContentType("application/json"))
			r.Post("/", s.handleCheckout)
		})
	}

	return s
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server starting", "address", s.cfg.Address())
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartWithReady begins listening. It closes the ready channel once the
// listener is bound, then blocks serving requests.
func (s *Server) StartWithReady(ready chan<- struct{}) error {
	s.http = &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.logger.Info("server starting", "address", ln.Addr().String())
	close(ready)

	if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	timeout := time.Duration(s.cfg.Server.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("shutting down server", "timeout", timeout)
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pool.Ping(ctx); err != nil {
			s.logger.Error("health check: database unreachable", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// checkoutResponse is what a browser gets back. The Authorization header
// of the redirect holds the account credentials and is never included.
type checkoutResponse struct {
	URL           string `json:"url"`
	TransactionID string `json:"transactionId"`
}

type checkoutRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	TransactionID   string          `json:"transactionId"`
	ReferenceNumber string          `json:"referenceNumber"`
	Mobile          string          `json:"mobile"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	redirect, err := s.checkouts.Begin(r.Context(), checkout.Request{
		Amount:          req.Amount,
		TransactionID:   req.TransactionID,
		ReferenceNumber: req.ReferenceNumber,
		Mobile:          req.Mobile,
	})
	if err != nil {
		if errors.Is(err, apierr.ErrInvalidArgument) {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, transactions.ErrExists) {
			httputil.WriteError(w, http.StatusConflict, "transactionId already used")
			return
		}
		s.logger.Error("starting checkout", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, checkoutResponse{URL: redirect.URL, TransactionID: redirect.TransactionID})
}
