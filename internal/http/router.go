package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gemsketch/api/internal/auth"
	"github.com/gemsketch/api/internal/config"
	"github.com/gemsketch/api/internal/httputil"
	"github.com/gemsketch/api/internal/logging"
	"github.com/gemsketch/api/internal/relay"
	"github.com/gemsketch/api/internal/upload"
	"github.com/gemsketch/api/internal/user"
	"github.com/gemsketch/api/web"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	userHandler *user.Handler,
	uploadHandler *upload.Handler,
	relayHandler *relay.Handler,
	authMiddleware *auth.Middleware,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Public routes
	r.Post("/create", userHandler.Create)
	r.Post("/login", userHandler.Login)

	// Stored files are fetchable by name without a token; see upload.Handler.Fetch.
	r.Get("/image/{filename}", uploadHandler.Fetch)

	// Protected routes (require a bearer token)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/profile", userHandler.Profile)
		r.Post("/upload", uploadHandler.Upload)
		r.Post("/process-image", relayHandler.ProcessImage)
	})

	// Embedded single-page client
	r.Handle("/*", web.Handler())

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
