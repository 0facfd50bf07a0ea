package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/diagnosis/guardiao-web/internal/http/handlers"
	"github.com/diagnosis/guardiao-web/internal/http/middleware"
	"github.com/diagnosis/guardiao-web/internal/http/views"
	"github.com/diagnosis/guardiao-web/internal/i18n"
	"github.com/diagnosis/guardiao-web/internal/platform/backend"
	"github.com/diagnosis/guardiao-web/internal/repo/memory"
	"github.com/diagnosis/guardiao-web/internal/repo/postgres"
	"github.com/diagnosis/guardiao-web/internal/repo/redis"
	"github.com/diagnosis/guardiao-web/internal/service"
	"github.com/diagnosis/guardiao-web/internal/session"
	"github.com/diagnosis/guardiao-web/pkg/config"
	"github.com/diagnosis/guardiao-web/pkg/database"
	"github.com/diagnosis/guardiao-web/pkg/events"
	"github.com/diagnosis/guardiao-web/pkg/logger"
	mw "github.com/diagnosis/guardiao-web/pkg/middleware"
)

// stores bundles the per-backend repositories selected by SESSION_STORE.
type stores struct {
	clientStorage session.ClientStorage
	rateLimits    middleware.Counter
	idempotency   service.Idempotency
	close         func()
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err)
	}
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	ctx := context.Background()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open client storage", "store", cfg.Session.Store, "error", err)
		os.Exit(1)
	}
	defer st.close()

	// Connect to event bus
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		nats, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		publisher = nats
	}
	defer publisher.Close()

	api := backend.New(cfg.Backend.URL, cfg.Backend.Timeout)

	// Initialize services
	authService := service.NewAuthService(api, session.NewHolder(st.clientStorage), publisher)
	dashboardService := service.NewDashboardService(api, publisher, st.idempotency)

	tr := i18n.New(cfg.UI.Locale)
	renderer, err := views.New(tr)
	if err != nil {
		logger.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	h := handlers.New(authService, dashboardService, api, renderer, tr)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("web"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)

	// CORS only matters for the machine endpoints; pages are same-origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Use(mw.Health)
	r.Use(mw.Metrics)

	r.Mount("/", h.Routes(handlers.Options{
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		LoginLimit: middleware.RateLimitConfig{
			Requests: cfg.Limits.LoginRequests,
			Window:   cfg.Limits.LoginWindow,
		},
		LoginCounter:      st.rateLimits,
		TrustProxyHeaders: cfg.Limits.TrustProxyHeaders,
	}))

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down web service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Web service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting web service", "port", cfg.Server.Port, "backend", cfg.Backend.URL, "store", cfg.Session.Store)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Web service error", "error", err)
		os.Exit(1)
	}
	<-done
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Session.Store {
	case config.StoreMemory:
		return &stores{
			clientStorage: memory.NewClientStorageRepo(),
			rateLimits:    memory.NewRateLimitRepo(),
			idempotency:   memory.NewIdempotencyRepo(),
			close:         func() {},
		}, nil

	case config.StoreRedis:
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &stores{
			clientStorage: redis.NewClientStorageRepo(rdb, cfg.Session.TTL),
			rateLimits:    redis.NewRateLimitRepo(rdb),
			idempotency:   redis.NewIdempotencyRepo(rdb),
			close:         func() { rdb.Close() },
		}, nil

	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}

		cleanupCtx, stop := context.WithCancel(ctx)
		go cleanupExpired(cleanupCtx, pool)

		return &stores{
			clientStorage: postgres.NewClientStorageRepo(pool),
			rateLimits:    postgres.NewRateLimitRepo(pool),
			idempotency:   postgres.NewIdempotencyRepo(pool),
			close: func() {
				stop()
				pool.Close()
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.Session.Store)
	}
}

// cleanupExpired prunes rate limit and idempotency rows every hour.
func cleanupExpired(ctx context.Context, pool *pgxpool.Pool) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := postgres.CleanupExpired(ctx, pool)
			if err != nil {
				logger.Warn("Failed to clean up expired rows", "error", err)
				continue
			}
			logger.Debug("Cleaned up expired rows", "rows", n)
		}
	}
}
