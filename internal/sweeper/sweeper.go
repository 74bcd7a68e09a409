package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/harborpay/scanpay-backend/pkg/config"
	"github.com/harborpay/scanpay-backend/pkg/logger"
	"github.com/harborpay/scanpay-backend/pkg/metrics"
)

type orderExpirer interface {
	ExpireDue(ctx context.Context, now time.Time, limit int) (int64, error)
}

// Sweeper periodically transitions overdue pending orders to expired. One
// replica sweeps at a time; the distributed lock arbitrates.
type Sweeper struct {
	expirer orderExpirer
	lock    Lock
	logg    *logger.Logger
	metrics *metrics.SweepMetrics
	cfg     config.SweeperConfig
	now     func() time.Time
}

// New builds a sweeper with the provided collaborators.
func New(expirer orderExpirer, lock Lock, logg *logger.Logger, m *metrics.SweepMetrics, cfg config.SweeperConfig) (*Sweeper, error) {
	if expirer == nil {
		return nil, fmt.Errorf("order expirer required")
	}
	if lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Sweeper{
		expirer: expirer,
		lock:    lock,
		logg:    logg,
		metrics: m,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// Run sweeps on the configured interval until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.metrics.IncFailure()
				s.logg.Error(ctx, "expiry sweep failed", err)
			}
		}
	}
}

// RunOnce performs a single sweep. Batches keep going until a batch comes
// back short, so a backlog drains in one run.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !acquired {
		return nil
	}
	defer func() {
		if releaseErr := s.lock.Release(ctx); releaseErr != nil {
			s.logg.Error(ctx, "release sweep lock failed", releaseErr)
		}
	}()

	start := s.now()
	var total int64
	for {
		expired, err := s.expirer.ExpireDue(ctx, s.now(), s.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("expire due orders: %w", err)
		}
		total += expired
		if expired < int64(s.cfg.BatchSize) {
			break
		}
	}
	s.metrics.ObserveSweep(total, s.now().Sub(start))

	if total > 0 {
		logCtx := s.logg.WithField(ctx, "count", total)
		s.logg.Info(logCtx, "expiry sweep complete")
	}
	return nil
}
