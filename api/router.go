package api

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	zlog "github.com/rs/zerolog/log"
	"github.com/sobadon/cyberd/internal/logutil"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// News endpoints
	r.HandleFunc("/api/news", h.News).Methods("GET")
	r.HandleFunc("/api/search", h.Search).Methods("GET")
	r.HandleFunc("/api/refresh", h.Refresh).Methods("GET")
	r.HandleFunc("/api/digest", h.Digest).Methods("GET")
	r.HandleFunc("/api/history", h.History).Methods("GET")

	// Exports
	r.HandleFunc("/export/json", h.ExportJSON).Methods("GET")
	r.HandleFunc("/export/pdf", h.ExportPDF).Methods("GET")

	// Notification management
	notifRouter := r.PathPrefix("/notifications").Subrouter()
	notifRouter.HandleFunc("/status", h.NotificationStatus).Methods("GET")
	notifRouter.HandleFunc("/subscribe", h.Subscribe).Methods("POST")
	notifRouter.HandleFunc("/unsubscribe", h.Unsubscribe).Methods("POST")
	notifRouter.HandleFunc("/start", h.StartNotifications).Methods("POST")
	notifRouter.HandleFunc("/stop", h.StopNotifications).Methods("POST")
	notifRouter.HandleFunc("/test", h.TestNotification).Methods("POST")

	return r
}

// CORSMiddleware adds CORS headers
func CORSMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(next)
	}
}

// LoggingMiddleware attaches a request logger and logs each request
func LoggingMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := logutil.NewLogger().With().
				Str("method", r.Method).
				Str("path", r.RequestURI).
				Logger().WithContext(r.Context())

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			zlog.Ctx(ctx).Info().
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
