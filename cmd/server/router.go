package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	platformmetrics "neuroease/internal/platform/metrics"
	ratelimitmw "neuroease/internal/ratelimit/middleware"
	"neuroease/internal/screening/catalog"
	"neuroease/internal/screening/handler"
	"neuroease/pkg/platform/httputil"
	adminmw "neuroease/pkg/platform/middleware/admin"
	authmw "neuroease/pkg/platform/middleware/auth"
	metadatamw "neuroease/pkg/platform/middleware/metadata"
	requestmw "neuroease/pkg/platform/middleware/request"
	requesttimemw "neuroease/pkg/platform/middleware/requesttime"
)

// routes groups what newRouter mounts.
type routes struct {
	screening  *handler.Handler
	validator  authmw.TokenValidator
	limiter    *ratelimitmw.Middleware
	catalog    *catalog.Cached
	metrics    *platformmetrics.Metrics
	adminToken string
}

func newRouter(log *slog.Logger, rt routes, deps *infra) chi.Router {
	r := chi.NewRouter()
	r.Use(requestmw.RequestID)
	r.Use(requestmw.TraceContext)
	r.Use(requesttimemw.Middleware)
	r.Use(metadatamw.ClientMetadata)
	r.Use(requestmw.Logger(log))
	r.Use(requestmw.Recover(log))
	r.Use(rt.metrics.Middleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", health(rt.catalog, deps))

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(rt.validator, log))
		r.Use(rt.limiter.RateLimitAuthenticated)
		rt.screening.Register(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(rt.adminToken, log))
		rt.screening.RegisterAdmin(r)
	})
	return r
}

// health reports 503 and status "degraded" when a configured backend is
// unreachable. A stale rule catalog is flagged but keeps status "ok".
func health(rules *catalog.Cached, deps *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if deps.db != nil {
			if err := deps.db.PingContext(r.Context()); err != nil {
				status["postgres"] = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		if deps.redis != nil {
			if err := deps.redis.Health(r.Context()); err != nil {
				status["redis"] = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		if rules.Degraded() {
			status["rule_catalog"] = "stale"
		}
		if code != http.StatusOK {
			status["status"] = "degraded"
		}
		httputil.WriteJSON(w, code, status)
	}
}
