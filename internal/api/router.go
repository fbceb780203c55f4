package api

import (
	"net/http"

	"github.com/Rrens/deskmap/internal/api/handler"
	customMiddleware "github.com/Rrens/deskmap/internal/api/middleware"
	"github.com/Rrens/deskmap/internal/config"
	"github.com/Rrens/deskmap/internal/directory"
	"github.com/Rrens/deskmap/internal/realtime"
	"github.com/Rrens/deskmap/internal/repository/postgres"
	"github.com/Rrens/deskmap/internal/repository/redis"
	"github.com/Rrens/deskmap/internal/security"
	"github.com/Rrens/deskmap/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router. The directory
// service is returned alongside so the caller can run the sync
// scheduler on it.
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, broadcaster *realtime.Broadcaster) (http.Handler, *service.DirectoryService, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	encryptor, err := security.NewEncryptorFromPassphrase(cfg.Directory.EncryptionKey)
	if err != nil {
		return nil, nil, err
	}

	// Initialize repositories
	deskRepo := postgres.NewDeskRepository(db)
	mapRepo := postgres.NewMapRepository(db)
	directoryConfigRepo := postgres.NewDirectoryConfigRepository(db)
	userCacheRepo := postgres.NewUserCacheRepository(db)

	layoutCache := redis.NewLayoutCache(redisClient)
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	directoryClient := directory.NewClient()

	// Initialize services
	authService := service.NewAuthService(cfg.Auth, jwtManager)
	layoutService := service.NewLayoutService(db, deskRepo, mapRepo, layoutCache, broadcaster)
	directoryService := service.NewDirectoryService(
		db,
		directoryClient,
		directoryConfigRepo,
		userCacheRepo,
		deskRepo,
		mapRepo,
		encryptor,
		layoutCache,
		broadcaster,
		log.With().Str("component", "directory").Logger(),
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	layoutHandler := handler.NewLayoutHandler(layoutService)
	directoryHandler := handler.NewDirectoryHandler(directoryService)
	eventsHandler := handler.NewEventsHandler(broadcaster)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Viewer routes (public)
		r.Get("/layout", layoutHandler.Get)
		r.Get("/events", eventsHandler.Stream)

		// Auth routes (public)
		r.Post("/auth/login", authHandler.Login)

		// Admin routes. The timeout stays off the viewer routes so the
		// event stream can outlive it.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Put("/layout", layoutHandler.Save)

			r.Route("/directory", func(r chi.Router) {
				r.Get("/config", directoryHandler.GetConfig)
				r.Put("/config", directoryHandler.SaveConfig)
				r.Get("/users", directoryHandler.Users)
				r.Post("/sync", directoryHandler.Sync)
				r.Post("/test", directoryHandler.Test)
			})
		})
	})

	return r, directoryService, nil
}
