package cart

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/cartkeep/pkg/logger"
)

// DefaultSweepSchedule runs the sweep at minute 0 of every hour.
const DefaultSweepSchedule = "0 * * * *"

// Sweeper deletes expired carts out of band.
// It satisfies the scheduled task contract of pkg/job.
type Sweeper struct {
	repo     *Repository
	log      *slog.Logger
	schedule string
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSchedule sets the cron expression (5 fields).
func WithSchedule(expr string) SweeperOption {
	return func(s *Sweeper) {
		if expr != "" {
			s.schedule = expr
		}
	}
}

// WithSweepLogger sets the sweeper logger.
func WithSweepLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSweeper creates a Sweeper over repo.
func NewSweeper(repo *Repository, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		repo:     repo,
		log:      logger.NewNope(),
		schedule: DefaultSweepSchedule,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sweeper) Name() string     { return "cart_sweep" }
func (s *Sweeper) Schedule() string { return s.schedule }

// Handle deletes every expired record, then clears the cart cache.
func (s *Sweeper) Handle(ctx context.Context) error {
	start := time.Now()

	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "cart sweep failed",
			slog.Int64("deleted", n),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.log.InfoContext(ctx, "cart sweep finished",
		slog.Int64("deleted", n),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}
