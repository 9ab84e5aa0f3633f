package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/touchline/touchline-chat/internal/api/handler"
	"github.com/touchline/touchline-chat/internal/api/middleware"
	"github.com/touchline/touchline-chat/internal/chat"
	"github.com/touchline/touchline-chat/internal/services/directory"
	"github.com/touchline/touchline-chat/internal/services/gate"
	"github.com/touchline/touchline-chat/internal/services/history"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	DirectoryService *directory.Service
	GateService      *gate.Service
	HistoryService   *history.Service
	HubManager       *chat.HubManager
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.DirectoryService)
	conversationHandler := handler.NewConversationHandler(cfg.HistoryService)
	sessionHandler := chat.NewSessionHandler(
		cfg.HubManager,
		cfg.DirectoryService,
		cfg.GateService,
		cfg.HistoryService,
		cfg.Logger,
	)

	// Create middleware
	identityMiddleware := middleware.Identity(cfg.DirectoryService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no identity)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Listing routes require a resolved caller identity
	listing := api.NewRoute().Subrouter()
	listing.Use(identityMiddleware)
	listing.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	listing.HandleFunc("/users/{id:[0-9]+}", userHandler.Get).Methods(http.MethodGet)
	listing.HandleFunc("/conversations/{user_id:[0-9]+}", conversationHandler.Get).Methods(http.MethodGet)

	// Chat socket; sender identity travels in each envelope and is checked
	// by the gate per message
	r.Handle("/ws/chat/{room}", sessionHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
