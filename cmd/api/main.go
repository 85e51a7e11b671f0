package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/socialgraph/socialgraph-api/internal/config"
	"github.com/socialgraph/socialgraph-api/internal/domain/auth"
	"github.com/socialgraph/socialgraph-api/internal/domain/notification"
	"github.com/socialgraph/socialgraph-api/internal/domain/relationships"
	"github.com/socialgraph/socialgraph-api/internal/domain/user"
	"github.com/socialgraph/socialgraph-api/internal/middleware"
	"github.com/socialgraph/socialgraph-api/internal/pkg/database"
	"github.com/socialgraph/socialgraph-api/internal/pkg/jwt"
	"github.com/socialgraph/socialgraph-api/internal/pkg/logger"
	"github.com/socialgraph/socialgraph-api/internal/pkg/metrics"
	pkgresponse "github.com/socialgraph/socialgraph-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting SocialGraph API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	metrics.Register(prometheus.DefaultRegisterer)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	relationshipRepo := relationships.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService, auth.NewRedisTokenStore(redis))
	userService := user.NewService(userRepo)
	notificationService := notification.NewService(notificationRepo, userRepo)
	relationshipService := relationships.NewService(relationshipRepo, userRepo, notificationService)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	notificationHandler := notification.NewHandler(notificationService)
	relationshipHandler := relationships.NewHandler(relationshipService, &relationshipProfileAdapter{repo: userRepo})

	// ---------- Middleware ----------
	authMiddleware := middleware.Auth(jwtService)
	relationshipLimit := middleware.RateLimit(
		middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitBurst),
		cfg.RateLimitWindow,
	)
	credentialLimit := middleware.RateLimit(
		middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitBurst),
		cfg.RateLimitWindow,
	)

	// ---------- Background jobs ----------
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	cleanupJob := notification.NewCleanupJob(notificationRepo, cfg.NotificationRetentionDays)
	go cleanupJob.Start(jobCtx, 24*time.Hour)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	healthChecker := database.NewHealthChecker(db, redis)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		components, healthy := healthChecker.Check(r.Context())
		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		pkgresponse.JSON(w, status, map[string]interface{}{
			"status":     state,
			"version":    "1.0.0",
			"components": components,
		})
	})

	if cfg.MetricsEnabled {
		r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass)).Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Use(chimw.Compress(5))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", authHandler.Routes(authMiddleware, credentialLimit))
		r.Mount("/relationships", relationshipHandler.Routes(authMiddleware, relationshipLimit))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))

		mountUserRoutes(r, authMiddleware,
			userHandler.Get,
			userHandler.UpdateMe,
			relationshipHandler.Followers,
			relationshipHandler.Following,
		)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stopJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// mountUserRoutes registers /users. The static /me route is declared before
// /{id} so it is never parsed as a user ID.
func mountUserRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler, getProfile, updateMe, followers, following http.HandlerFunc) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Patch("/me", updateMe)
		r.Get("/{id}", getProfile)
		r.Get("/{id}/followers", followers)
		r.Get("/{id}/following", following)
	})
}

// ---------- Adapters ----------

// relationshipProfileAdapter exposes public user fields to the relationships handler
type relationshipProfileAdapter struct {
	repo user.Repository
}

func (a *relationshipProfileAdapter) GetUserProfile(ctx context.Context, userID uuid.UUID) (*relationships.UserProfile, error) {
	u, err := a.repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, err
	}
	return &relationships.UserProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.Name(),
	}, nil
}
