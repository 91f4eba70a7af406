package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"propertyad/internal/handler"
	"propertyad/internal/httputil"
	applog "propertyad/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	FormHandler    *handler.FormHandler
	ListingHandler *handler.ListingHandler // nil when listings are not stored
	Logger         *zap.Logger

	// AllowedOrigins for browser hosts; empty allows any origin.
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(applog.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/options", cfg.FormHandler.Options)

	r.Route("/forms", func(r chi.Router) {
		r.Post("/", cfg.FormHandler.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", cfg.FormHandler.Get)
			r.Delete("/", cfg.FormHandler.Delete)
			r.Put("/fields/{field}", cfg.FormHandler.EditField)
			r.Post("/images", cfg.FormHandler.UploadImages)
			r.Delete("/images/{index}", cfg.FormHandler.RemoveImage)
			r.Post("/submit", cfg.FormHandler.Submit)
		})
	})

	if cfg.ListingHandler != nil {
		r.Get("/listings/{id}", cfg.ListingHandler.GetByID)
	}

	return r
}
