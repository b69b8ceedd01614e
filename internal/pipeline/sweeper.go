package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
)

// DefaultRetention is how long an opportunity stays after it was stored.
const DefaultRetention = 7 * 24 * time.Hour

// Expirer deletes rows stored strictly before cutoff.
type Expirer interface {
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper removes opportunities older than the retention window, whatever
// their deadline or type.
type Sweeper struct {
	store   Expirer
	window  time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewSweeper(store Expirer, window time.Duration, m *metrics.Metrics, log *zap.Logger) *Sweeper {
	if window <= 0 {
		window = DefaultRetention
	}
	return &Sweeper{store: store, window: window, now: time.Now, metrics: m, log: log.Named("sweeper")}
}

// WithClock overrides the sweeper's clock.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Sweep deletes rows whose age exceeds the window. A row exactly one window
// old survives.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.window)
	n, err := s.store.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	s.metrics.ExpiredDeletedTotal.Add(float64(n))
	s.log.Info("expired opportunities removed", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	return n, nil
}
