package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"neuroease/internal/screening/metrics"
	"neuroease/internal/screening/models"
	dErrors "neuroease/pkg/domain-errors"
	"neuroease/pkg/platform/circuit"
	"neuroease/pkg/requestcontext"
)

const defaultLoadTimeout = 10 * time.Second

// Snapshot is one immutable catalog version.
type Snapshot struct {
	Rules    []models.DiagnosticRule
	LoadedAt time.Time
}

// Cached serves rules from an in-memory snapshot and reloads it from the
// provider once it is older than the TTL. Concurrent reloads collapse into a
// single provider call. When a reload fails the previous snapshot keeps
// serving; only a cache that never loaded reports the catalog unavailable.
//
// With a breaker, repeated refresh failures open the circuit: requests stop
// waiting on the provider and are served the stale snapshot while a single
// background refresh retries.
type Cached struct {
	provider Provider
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	breaker  *circuit.Breaker
	// loadTimeout bounds a shared provider load, which runs detached from
	// the callers waiting on it.
	loadTimeout time.Duration

	current    atomic.Pointer[Snapshot]
	group      singleflight.Group
	rechecking atomic.Bool
}

type CachedOption func(*Cached)

func WithLogger(logger *slog.Logger) CachedOption {
	return func(c *Cached) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) CachedOption {
	return func(c *Cached) {
		c.metrics = m
	}
}

// WithBreaker guards provider refreshes with b.
func WithBreaker(b *circuit.Breaker) CachedOption {
	return func(c *Cached) {
		c.breaker = b
	}
}

// WithLoadTimeout bounds each provider load. Non-positive disables the bound.
func WithLoadTimeout(d time.Duration) CachedOption {
	return func(c *Cached) {
		c.loadTimeout = d
	}
}

// NewCached wraps provider. A non-positive ttl disables expiry: the snapshot
// is loaded once and replaced only by Reload.
func NewCached(provider Provider, ttl time.Duration, opts ...CachedOption) *Cached {
	c := &Cached{provider: provider, ttl: ttl, logger: slog.Default(), loadTimeout: defaultLoadTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadRules returns the current rules, refreshing a stale snapshot first.
func (c *Cached) LoadRules(ctx context.Context) ([]models.DiagnosticRule, error) {
	snap := c.current.Load()
	if snap != nil && !c.stale(ctx, snap) {
		return snap.Rules, nil
	}
	if snap != nil && c.breaker != nil && c.breaker.IsOpen() {
		c.recheck(ctx)
		return snap.Rules, nil
	}
	fresh, err := c.refresh(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		if snap != nil {
			c.logger.WarnContext(ctx, "rule catalog refresh failed, serving stale snapshot",
				"loaded_at", snap.LoadedAt,
				"error", err,
			)
			return snap.Rules, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeRuleCatalogUnavailable, "rule catalog unavailable")
	}
	return fresh.Rules, nil
}

// Reload forces a provider load and swaps the snapshot on success.
func (c *Cached) Reload(ctx context.Context) (*Snapshot, error) {
	snap, err := c.refresh(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRuleCatalogUnavailable, "rule catalog reload failed")
	}
	return snap, nil
}

// Invalidate drops the snapshot age so the next LoadRules reloads. The old
// snapshot stays available as the stale fallback.
func (c *Cached) Invalidate() {
	snap := c.current.Load()
	if snap == nil {
		return
	}
	c.current.CompareAndSwap(snap, &Snapshot{Rules: snap.Rules})
}

// Degraded reports whether refreshes are failing and a stale snapshot is
// being served.
func (c *Cached) Degraded() bool {
	return c.breaker != nil && c.breaker.IsOpen()
}

// Current returns the snapshot in use, or nil before the first load.
func (c *Cached) Current() *Snapshot {
	return c.current.Load()
}

func (c *Cached) stale(ctx context.Context, snap *Snapshot) bool {
	if snap.LoadedAt.IsZero() {
		return true
	}
	if c.ttl <= 0 {
		return false
	}
	return requestcontext.Now(ctx).Sub(snap.LoadedAt) >= c.ttl
}

// refresh joins or starts the shared provider load. The load runs on a
// context detached from ctx so one caller giving up cannot fail the others;
// a cancelled caller stops waiting and gets ctx.Err().
func (c *Cached) refresh(ctx context.Context) (*Snapshot, error) {
	ch := c.group.DoChan("catalog", func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
			defer cancel()
		}
		rules, err := c.provider.LoadRules(loadCtx)
		if err != nil {
			c.metrics.RecordCatalogLoad(false, 0)
			c.recordOutcome(loadCtx, err)
			return nil, err
		}
		c.recordOutcome(loadCtx, nil)
		snap := &Snapshot{Rules: rules, LoadedAt: requestcontext.Now(loadCtx)}
		c.current.Store(snap)
		c.metrics.RecordCatalogLoad(true, len(rules))
		c.logger.InfoContext(loadCtx, "rule catalog loaded", "rules", len(rules))
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recheck starts one background refresh at a time while the circuit is open.
func (c *Cached) recheck(ctx context.Context) {
	if !c.rechecking.CompareAndSwap(false, true) {
		return
	}
	recheckCtx := context.WithoutCancel(ctx)
	go func() {
		defer c.rechecking.Store(false)
		_, _ = c.refresh(recheckCtx)
	}()
}

func (c *Cached) recordOutcome(ctx context.Context, err error) {
	if c.breaker == nil {
		return
	}
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "rule catalog circuit opened, serving last snapshot",
				"breaker", c.breaker.Name(),
				"error", err,
			)
		}
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "rule catalog circuit closed", "breaker", c.breaker.Name())
	}
}
