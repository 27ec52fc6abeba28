// Package main is the entrypoint for the Homelet API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/homelet/homelet/internal/auth"
	"github.com/homelet/homelet/internal/cache"
	"github.com/homelet/homelet/internal/config"
	"github.com/homelet/homelet/internal/handler"
	"github.com/homelet/homelet/internal/metrics"
	"github.com/homelet/homelet/internal/middleware"
	"github.com/homelet/homelet/internal/render"
	"github.com/homelet/homelet/internal/repository"
	"github.com/homelet/homelet/internal/server"
	"github.com/homelet/homelet/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize prerender layer
	metricsRecorder := metrics.NewInMemory()
	snapshots := cache.NewSnapshotStore(cacheClient, cfg.PrerenderSnapshotTTL, cfg.PrerenderNegativeTTL)
	prerenderCache := render.NewCache(snapshots, metricsRecorder, logger)

	// Initialize services
	homeService := service.NewHomeService(repo, prerenderCache, metricsRecorder, logger)
	renderer := render.NewRenderer(repo, prerenderCache, cfg.LandingURL, logger)

	// Initialize session resolution
	identityCache := cache.NewIdentityStore(cacheClient, cfg.SessionCacheTTL)
	resolver := auth.NewResolver(repo, identityCache, logger)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	homeHandler := handler.NewHomeHandler(homeService, logger)
	pageHandler := handler.NewPageHandler(renderer, logger)

	// Setup router
	r := setupRouter(healthHandler, metricsHandler, homeHandler, pageHandler, resolver, cfg, logger)

	// Warm the prerender cache in the background so startup is not
	// blocked on building every detail page.
	if cfg.PrerenderWarmOnStart {
		go func() {
			if _, err := renderer.Warm(ctx); err != nil {
				logger.Warn("prerender warm failed", "error", err)
			}
		}()
	}

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"landing_url", cfg.LandingURL,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	metricsHandler *handler.MetricsHandler,
	homeHandler *handler.HomeHandler,
	pageHandler *handler.PageHandler,
	resolver *auth.Resolver,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.BodyLimit(cfg.MaxRequestBodySize))

	// Every route sees the session middleware; it never rejects, it
	// only attaches an identity when one resolves.
	r.Use(middleware.Session(middleware.SessionConfig{
		Logger:     logger,
		Resolver:   resolver,
		CookieName: cfg.SessionCookieName,
	}))

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Get("/metrics", metricsHandler.Snapshot)

	// Home listing API
	r.Route("/api/homes", func(r chi.Router) {
		r.Get("/", homeHandler.List)
		r.Post("/", homeHandler.Create)
		r.Get("/mine", homeHandler.ListMine)
		r.Get("/{id}", homeHandler.Get)
		r.Get("/{id}/owner", homeHandler.Owner)
		r.Patch("/{id}", homeHandler.Update)
		r.Delete("/{id}", homeHandler.Delete)
	})

	// Page data endpoints
	r.Route("/pages", func(r chi.Router) {
		r.Get("/index", pageHandler.Index)
		r.Get("/create", pageHandler.Create)
		r.Get("/paths", pageHandler.Paths)
		r.Get("/homes", pageHandler.Homes)
		r.Get("/homes/{id}", pageHandler.HomeDetail)
		r.Get("/homes/{id}/edit", pageHandler.HomeEdit)
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
