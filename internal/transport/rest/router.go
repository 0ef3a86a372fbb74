package rest

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"cnmaturity/internal/metrics"
	"cnmaturity/internal/service"
	"cnmaturity/internal/transport/rest/handler"
	"cnmaturity/internal/transport/rest/middleware"
	"cnmaturity/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AssessmentService  *service.AssessmentService
	CatalogService     *service.CatalogService
	AuthService        *service.AuthService
	WSHub              *ws.Hub
	Recorder           *metrics.Recorder
	Logger             *zap.Logger
	CORSAllowedOrigins []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.AssessmentService)
	catalogHandler := handler.NewCatalogHandler(c.CatalogService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.CORSAllowedOrigins, logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSAllowedOrigins))
	r.Use(middleware.AccessLog(logger))
	r.Use(c.Recorder.Middleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/catalog/categories", catalogHandler.Categories).Methods("GET", "OPTIONS")
	v1.HandleFunc("/catalog/questions/{questionId}", catalogHandler.Question).Methods("GET", "OPTIONS")
	v1.HandleFunc("/knowledge/articles", catalogHandler.Articles).Methods("GET", "OPTIONS")
	v1.HandleFunc("/knowledge/articles/{articleId}", catalogHandler.Article).Methods("GET", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if c.Recorder != nil {
		r.Handle("/metrics", c.Recorder.Handler()).Methods("GET")
	}

	// Session routes (require a token for the session in the path)
	sessionRoutes := v1.NewRoute().Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Delete).Methods("DELETE")
	sessionRoutes.HandleFunc("/sessions/{sessionId}/questions", sessionHandler.Questions).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/sessions/{sessionId}/answers", sessionHandler.Submit).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/sessions/{sessionId}/answers/{questionId}", sessionHandler.Revise).Methods("PUT", "OPTIONS")
	sessionRoutes.HandleFunc("/sessions/{sessionId}/score", sessionHandler.Score).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/sessions/{sessionId}/result", sessionHandler.Result).Methods("GET", "OPTIONS")

	return r
}

const (
	allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowedHeaders = "Content-Type, Authorization"
)

// corsMiddleware echoes the request origin when it is allowed.
// An empty list or "*" allows any origin.
func corsMiddleware(origins []string) mux.MiddlewareFunc {
	anyOrigin := len(origins) == 0 || slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case anyOrigin:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
