// Package app wires the shared dependency graph for the issuer and verifier
// processes. The two services are independent binaries over the same storage
// contract; only the mounted endpoints differ.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vouch/internal/credential/handler"
	"vouch/internal/credential/metrics"
	"vouch/internal/credential/service"
	"vouch/internal/credential/store"
	"vouch/internal/platform/config"
	"vouch/internal/platform/database"
	"vouch/internal/platform/health"
	"vouch/internal/platform/httpserver"
	"vouch/internal/platform/logger"
	redisclient "vouch/internal/platform/redis"
	"vouch/internal/platform/tracer"
	"vouch/internal/ratelimit"
	httptransport "vouch/internal/transport/http"
)

// Run starts a service instance for the given role and blocks until shutdown.
func Run(role httptransport.Role) {
	cfg := config.FromEnv(string(role))
	log := logger.New()

	log.Info("initializing vouch",
		"role", role,
		"addr", cfg.Addr,
		"store", cfg.StoreBackend,
		"worker", cfg.Worker,
	)

	// Storage-unavailable is fatal: the service refuses to accept traffic
	// without a working store.
	st, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open credential store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	m := metrics.New()
	svc := service.New(st, cfg.Worker,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithTracer(tracer.NewOTel()),
	)
	h := handler.New(svc, log)

	healthHandler := health.New("vouch-" + string(role))
	healthHandler.RegisterCheck("store", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return st.Health(ctx)
	})

	var limiter ratelimit.Limiter = ratelimit.NewMemory(cfg.RateLimit, cfg.RateLimitWindow)
	rdb, err := redisclient.New(cfg.RedisAddr)
	if err != nil {
		log.Warn("redis unavailable, falling back to in-process rate limiting", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
		limiter = ratelimit.NewRedis(rdb.Client, cfg.RateLimit, cfg.RateLimitWindow)
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rdb.Health(ctx)
		})
	}

	router := httptransport.NewRouter(role, h, healthHandler, limiter, cfg, log)
	srv := httpserver.New(cfg.Addr, router, cfg.PortAttempts, log)

	ln, err := srv.Listen()
	if err != nil {
		log.Error("failed to bind listen address", "error", err)
		os.Exit(1)
	}

	log.Info("starting http server", "addr", ln.Addr().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, ln); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// openStore constructs the configured storage backend. All backends ensure
// their schema on open, so initialization is idempotent.
func openStore(cfg config.Server) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := database.New(database.Config{
			URL:             cfg.DatabaseURL,
			MaxOpenConns:    database.DefaultConfig().MaxOpenConns,
			MaxIdleConns:    database.DefaultConfig().MaxIdleConns,
			ConnMaxLifetime: database.DefaultConfig().ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if pool == nil {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		pg := store.NewPostgres(pool.DB())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pg, nil
	case config.StoreMemory:
		return store.NewMemory(), nil
	case config.StoreBolt:
		return store.NewBolt(cfg.BoltPath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
