package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"workspacemanager/internal/auth"
	"workspacemanager/internal/config"
	"workspacemanager/internal/events"
	"workspacemanager/internal/handler"
	"workspacemanager/internal/handler/sse"
	"workspacemanager/internal/metrics"
	"workspacemanager/internal/middleware"
	"workspacemanager/internal/repository/backend"
	"workspacemanager/internal/repository/localfs"
	"workspacemanager/internal/service/workspace"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"roots", len(cfg.Roots),
		"settings_backend", cfg.SettingsBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open settings store
	settings, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open settings store: %v", err)
	}
	defer settings.Close()

	if settings.Watch != nil {
		go func() {
			if err := settings.Watch(ctx); err != nil {
				logger.Error("settings watcher stopped", "error", err)
			}
		}()
	}

	// Create workspace manager
	broadcaster := events.NewBroadcaster()
	manager := workspace.NewManager(
		settings.Repo,
		settings.TxManager,
		localfs.New(),
		cfg.Roots,
		broadcaster,
		logger,
	)
	defer manager.Close()

	if err := manager.Load(ctx); err != nil {
		log.Fatalf("Failed to load excludes: %v", err)
	}
	go manager.Run(ctx)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Handlers{
		Tree:     handler.NewTreeHandler(manager, logger),
		Profiles: handler.NewProfileHandler(manager, logger),
		Events:   handler.NewEventsHandler(broadcaster, sse.DefaultConfig(), logger),
	})

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Metrics → Recovery → Auth → Routes
	if cfg.JWKSURL != "" {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		h = middleware.AuthMiddleware(jwtVerifier, logger, "/health", "/metrics")(h)
	} else {
		logger.Warn("JWKS_URL not set - API is unauthenticated")
	}
	h = middleware.Recovery(logger)(h)
	h = metrics.Middleware(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
