package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/cache"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/config"
	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/middlewares"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/observability"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/routes"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/security"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/server"

	"go.opentelemetry.io/otel"
	"golang.org/x/term"
)

// newLogger writes text to a terminal and JSON everywhere else.
func newLogger(level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func main() {
	ctx := context.Background()

	// Setup logger
	level := new(slog.LevelVar)
	logger := newLogger(level)
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	level.Set(cfg.App.LogLevel)
	actorID, _ := cfg.Ledger.ActorID()

	// Database
	pool, err := config.NewPool(ctx, config.NewDBConfig(cfg.Database, logger))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	store := db.NewStore(pool)

	// Cache and per-key locks; both fall back to in-process without Redis
	redisCfg := cache.DefaultRedisConfig()
	redisCfg.Addr = cfg.Redis.Addr
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	fc := cache.NewFallbackCache(&cache.FallbackConfig{
		Redis:  redisCfg,
		Memory: cache.DefaultConfig(),
		Logger: logger,
	})
	var locker cache.Locker = cache.NewLocalLocker()
	if rc := fc.Redis(); rc != nil {
		locker = cache.NewRedisLocker(rc.Client(), cfg.Ledger.AllocationLockTTL, logger)
	}

	// Telemetry
	httpMetrics := observability.NewMetrics(&observability.MetricsConfig{
		Logger:    logger,
		Namespace: cfg.Telemetry.MetricsNamespace,
		Subsystem: "http",
		Buckets:   observability.DefaultMetricsConfig("").Buckets,
		SkipPaths: []string{"/metrics", "/health", "/live"},
	})

	svc := ledger.New(ledger.Options{
		Store:          store,
		Logger:         logger,
		Cache:          fc,
		MasterCacheTTL: cfg.Ledger.MasterCacheTTL,
		Locker:         locker,
		Metrics:        observability.NewLedgerMetrics(nil, cfg.Telemetry.MetricsNamespace),
		Tracer:         otel.Tracer(cfg.Telemetry.ServiceName),
		SystemActorID:  actorID,
	})

	respond := config.NewResponder(cfg.Ledger.ExposeDevMessages, logger, observability.GetRequestID)
	h := handlers.NewHandler(svc, respond, logger)

	// Router and global middlewares, outermost first
	r := router.NewRouter(logger,
		middlewares.Recovery(&middlewares.RecoveryConfig{Logger: logger, Respond: respond}),
		observability.RequestID(),
		middlewares.Logger(&middlewares.LoggerConfig{
			Logger:             logger,
			SkipPaths:          []string{"/health", "/live", "/metrics"},
			IncludeQueryParams: true,
			RequestID:          observability.GetRequestID,
		}),
		middlewares.CORS(middlewares.NewCORSOptions(cfg.CORS, logger)),
		middlewares.Security(middlewares.DefaultSecurityConfig()),
		middlewares.BodyLimit(cfg.Server.MaxBodyBytes),
	)

	deps := routes.Deps{
		Handler: h,
		Access: security.NewAccessValidator(security.AccessConfig{
			BaseURL:  cfg.Auth.BaseURL,
			Timeout:  cfg.Auth.Timeout,
			Cache:    fc,
			CacheTTL: cfg.Auth.CacheTTL,
			Logger:   logger,
		}),
		Health: &observability.HealthConfig{
			Logger:  logger,
			Version: cfg.App.Version,
			Checks: []observability.Check{
				{Name: "database", Critical: true, Probe: svc.Ping},
				{Name: "cache", Probe: fc.Ping},
			},
		},
	}
	if cfg.Telemetry.MetricsEnabled {
		deps.Metrics = observability.MetricsHandler(nil)
	}
	routes.Setup(r, deps)

	srv := server.New(httpMetrics.Middleware()(r), server.FromSettings(cfg.Server, logger))

	// Resources close in reverse order: the HTTP server drains first
	sm := server.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	sm.Register(server.NewDatabaseResource("database", pool))
	sm.Register(server.NewCustomResource("cache", func(context.Context) error { return fc.Close() }))
	sm.Register(server.NewHTTPServerResource("http-server", srv, r.BeginShutdown))

	logger.Info("Starting server", "port", cfg.Server.Port, "routes", len(r.Routes()))

	if err := server.Run(ctx, srv, sm); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
