package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	jwttoken "neuroease/internal/jwt_token"
	"neuroease/internal/platform/config"
	"neuroease/internal/platform/httpserver"
	"neuroease/internal/platform/logger"
	platformmetrics "neuroease/internal/platform/metrics"
	"neuroease/internal/platform/postgres"
	platformredis "neuroease/internal/platform/redis"
	ratelimitmw "neuroease/internal/ratelimit/middleware"
	ratelimitmodels "neuroease/internal/ratelimit/models"
	"neuroease/internal/ratelimit/store/bucket"
	"neuroease/internal/screening/accumulator"
	"neuroease/internal/screening/catalog"
	"neuroease/internal/screening/engine"
	"neuroease/internal/screening/handler"
	screeningmetrics "neuroease/internal/screening/metrics"
	"neuroease/internal/screening/service"
	"neuroease/internal/screening/store"
	"neuroease/pkg/platform/audit"
	"neuroease/pkg/platform/audit/publisher"
	auditmemory "neuroease/pkg/platform/audit/store/memory"
	auditpostgres "neuroease/pkg/platform/audit/store/postgres"
	"neuroease/pkg/platform/circuit"
)

const auditBufferSize = 1024

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/screening.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// infra holds the optional backing services chosen from configuration.
type infra struct {
	db    *sql.DB
	redis *platformredis.Client
}

func (i *infra) close(log *slog.Logger) {
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("failed to close postgres pool", "error", err)
		}
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	strategy, err := engine.ParseStrategy(cfg.Screening.SelectionStrategy)
	if err != nil {
		return err
	}

	deps, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close(log)

	screeningMetrics := screeningmetrics.New()

	var (
		ruleSource catalog.Provider
		diagnoses  service.DiagnosisStore
		auditStore audit.Store
	)
	if deps.db != nil {
		ruleSource = catalog.NewPostgres(deps.db)
		diagnoses = store.NewPostgres(deps.db)
		auditStore = auditpostgres.New(deps.db)
	} else {
		ruleSource = catalog.NewFile(cfg.Screening.CatalogPath)
		diagnoses = store.NewInMemory()
		auditStore = auditmemory.NewInMemoryStore()
	}

	rules := catalog.NewCached(ruleSource, cfg.Screening.CatalogTTL,
		catalog.WithLogger(log),
		catalog.WithMetrics(screeningMetrics),
		catalog.WithBreaker(circuit.New("rule_catalog")),
	)
	if _, err := rules.Reload(ctx); err != nil {
		// Serving continues; evaluations report the catalog as unavailable
		// until a refresh succeeds.
		log.Warn("initial rule catalog load failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	var (
		answers service.Accumulator
		buckets ratelimitmw.BucketStore
	)
	if deps.redis != nil {
		answers = accumulator.NewRedis(deps.redis.Client, cfg.Screening.SessionIdleTimeout)
		buckets = bucket.NewRedis(deps.redis.Client)
	} else {
		mem := accumulator.New(cfg.Screening.SessionIdleTimeout)
		memBuckets := bucket.New()
		sweepers := []*accumulator.Sweeper{
			accumulator.NewSweeper(mem, cfg.Screening.SweepInterval, log, screeningMetrics.SetActiveSessions),
			accumulator.NewSweeper(memBuckets, cfg.Screening.SweepInterval, log, nil),
		}
		for _, sw := range sweepers {
			g.Go(func() error {
				if err := sw.Run(gctx); !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		}
		answers = mem
		buckets = memBuckets
	}

	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	svc, err := service.New(answers, rules, diagnoses,
		service.WithLogger(log),
		service.WithMetrics(screeningMetrics),
		service.WithAuditPublisher(auditPublisher),
		service.WithCatalogReloader(rules),
		service.WithStrategy(strategy),
	)
	if err != nil {
		return err
	}

	jwtValidator := jwttoken.NewJWTServiceAdapter(
		jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience),
	)
	limiter := ratelimitmw.New(buckets, ratelimitmodels.Limit{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
	}, log)
	router := newRouter(log, routes{
		screening:  handler.New(svc, log),
		validator:  jwtValidator,
		limiter:    limiter,
		catalog:    rules,
		metrics:    platformmetrics.New(),
		adminToken: cfg.Server.AdminToken,
	}, deps)

	srv := httpserver.New(cfg.Server.Addr, router)

	g.Go(func() error {
		log.Info("starting neuroease", "addr", cfg.Server.Addr, "strategy", string(strategy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	deps := &infra{}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("using postgres rule catalog and diagnosis store")
	} else {
		log.Info("using file rule catalog and in-memory diagnosis store", "path", cfg.Screening.CatalogPath)
	}
	deps.db = db

	rc, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		deps.close(log)
		return nil, err
	}
	if rc != nil {
		log.Info("using redis answer accumulator")
	}
	deps.redis = rc
	return deps, nil
}
