// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-taskmate/internal/middleware"
	"github.com/iyunix/go-taskmate/internal/ratelimit"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Chat       *ChatHandler
	Tasks      *TaskHandler
	JWTSecret  []byte
	Limiter    *ratelimit.KeyedLimiter
	CORSOrigin string
	Logger     Logger
}

// NewRouter builds the API router. Everything but /health requires a token.
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.RecoverPanic(cfg.Logger))
	r.Use(middleware.LoggingMiddleware(cfg.Logger))

	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.NewJWTMiddleware(cfg.JWTSecret, cfg.Logger))
	if cfg.Limiter != nil {
		api.Use(middleware.RateLimitMiddleware(cfg.Limiter, cfg.Logger))
	}
	cfg.Chat.Register(api)
	cfg.Tasks.Register(api)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "METHOD_NOT_ALLOWED")
	})
	return r
}
