package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"lovemenu/internal/api"
	"lovemenu/internal/logger"
	"lovemenu/internal/metrics"
	"lovemenu/internal/services/catalog"
	"lovemenu/internal/services/order"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Pinger reports whether the storage behind the API is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router mounts
type Deps struct {
	Catalog        *catalog.Handler
	Orders         *order.Handler
	DB             Pinger
	Metrics        *metrics.Registry
	Logger         *logger.Logger
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler for the whole API
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(recoverer(d.Logger))
	r.Use(cors.AllowAll().Handler)
	r.Use(withLogging(d.Logger, d.Metrics))
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.WriteErrorResponse(w, http.StatusNotFound, "Not found", logger.RequestID(r.Context()), nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.WriteErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", logger.RequestID(r.Context()), nil)
	})

	r.Get("/", root)
	r.Get("/health", healthCheck(d.DB))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/dishes", d.Catalog.Routes)
		r.Route("/orders", d.Orders.Routes)
	})

	return r
}

func root(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "LoveMenu API",
		"version": Version,
	})
}

// healthCheck answers 503 when the database does not respond
func healthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		response := map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "lovemenu",
		}

		if err := db.Ping(ctx); err != nil {
			response["status"] = "unhealthy"
			api.WriteJSON(w, http.StatusServiceUnavailable, response)
			return
		}
		api.WriteJSON(w, http.StatusOK, response)
	}
}
