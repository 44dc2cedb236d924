package rest

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig wires the router's dependencies.
type RouterConfig struct {
	Handler       *Handler
	Auth          *AuthMiddleware
	Health        *HealthHandler
	Hub           *WebSocketHub
	Logger        *slog.Logger
	RateLimit     int
	RateBurst     int
	EnableMetrics bool
}

// NewRouter builds the HTTP routing table. Probes and metrics are public;
// everything under /api/v1 requires a marshal token.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", cfg.Health.Healthz)
	mux.HandleFunc("GET /readyz", cfg.Health.Readyz)
	if cfg.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	api := http.NewServeMux()
	h := cfg.Handler
	api.HandleFunc("GET /api/v1/checklist", h.GetChecklist)
	api.HandleFunc("POST /api/v1/checklist", h.CreateItem)
	api.HandleFunc("POST /api/v1/checklist/{itemID}/complete", h.CompleteItem)
	api.HandleFunc("POST /api/v1/checklist/{itemID}/uncomplete", h.UncompleteItem)
	api.HandleFunc("GET /api/v1/checklist/{itemID}/contexts", h.GetItemContexts)
	api.HandleFunc("GET /api/v1/dashboard", h.GetDashboard)
	api.HandleFunc("POST /api/v1/checkins", h.CheckIn)
	api.HandleFunc("POST /api/v1/checkins/checkout", h.CheckOut)
	api.HandleFunc("GET /api/v1/notes", h.GetNotes)
	api.HandleFunc("POST /api/v1/notes", h.CreateNote)
	api.HandleFunc("GET /api/v1/notes/{noteID}", h.GetNote)
	api.HandleFunc("GET /api/v1/contacts", h.GetContacts)
	api.HandleFunc("POST /api/v1/contacts", h.CreateContact)
	if cfg.Hub != nil {
		api.Handle("GET /api/v1/ws", cfg.Hub)
	}

	mux.Handle("/api/v1/", cfg.Auth.Middleware()(api))

	middlewares := []Middleware{
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
	}
	if cfg.EnableMetrics {
		middlewares = append(middlewares, MetricsMiddleware())
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))
	}

	return Chain(mux, middlewares...)
}
