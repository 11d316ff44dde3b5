// Package api exposes the transfer and ledger HTTP surface.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/transfer"
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	transfers *transfer.Service
	store     interfaces.LedgerStore
	auth      interfaces.Authenticator
	logger    *slog.Logger

	metricsEnabled bool
}

// NewServer creates the API server.
func NewServer(transfers *transfer.Service, store interfaces.LedgerStore, auth interfaces.Authenticator, logger *slog.Logger) *Server {
	return &Server{transfers: transfers, store: store, auth: auth, logger: logger}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Transfer authenticates inside the service so the 401 taxonomy stays
	// in one place.
	r.Post("/transfer", s.handleTransfer)

	// Direct ledger CRUD, the write-through path used by client caches.
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/accounts/{accountID}", s.handleGetAccount)
		r.Route("/accounts/{accountID}/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleInsertTransaction)
		})
		r.Put("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("processed request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// requireAuth gates the CRUD routes on a valid bearer token. Missing and
// invalid tokens get the same response.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if _, err := s.auth.UserFromToken(r.Context(), token); err != nil {
			httpError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
