package accumulator

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable is an in-process store that must evict idle entries itself. The
// Redis-backed stores rely on key TTLs instead.
type Sweepable interface {
	Sweep(ctx context.Context) int
	Active() int
}

// Sweeper periodically evicts idle entries from a Sweepable.
type Sweeper struct {
	target   Sweepable
	interval time.Duration
	logger   *slog.Logger
	observe  func(active int)
}

// NewSweeper builds a sweeper. observe, when non-nil, receives the remaining
// entry count after each pass.
func NewSweeper(target Sweepable, interval time.Duration, logger *slog.Logger, observe func(active int)) *Sweeper {
	return &Sweeper{target: target, interval: interval, logger: logger, observe: observe}
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.target.Sweep(ctx); removed > 0 {
				s.logger.DebugContext(ctx, "idle entries evicted", "count", removed, "remaining", s.target.Active())
			}
			if s.observe != nil {
				s.observe(s.target.Active())
			}
		}
	}
}
