// Package sweeper runs the retention purge on a fixed cadence.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pushrelay/config"
	"pushrelay/internal/delivery"
	"pushrelay/internal/infra/metrics"
	"pushrelay/internal/usecase"

	"go.uber.org/fx"
)

// Params holds dependencies for the sweeper, injected by Fx.
type Params struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	Logger    *slog.Logger
	MessageUC usecase.MessageUsecase
}

type sweeper struct {
	messageUC usecase.MessageUsecase
	logger    *slog.Logger
	interval  time.Duration
	timeout   time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates the retention sweeper and registers its shutdown hook
func New(params Params) delivery.Delivery {
	s := newSweeper(params.MessageUC, params.Logger, params.Cfg.Retention.SweepInterval, params.Cfg.Retention.SweepTimeout)

	params.Lc.Append(fx.Hook{
		OnStop: s.stop,
	})

	return s
}

func newSweeper(messageUC usecase.MessageUsecase, logger *slog.Logger, interval, timeout time.Duration) *sweeper {
	return &sweeper{
		messageUC: messageUC,
		logger:    logger.With(slog.String("component", "retention_sweeper")),
		interval:  interval,
		timeout:   timeout,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Serve sweeps once right away, then on every tick until stopped.
func (s *sweeper) Serve(ctx context.Context) error {
	defer close(s.doneCh)

	s.logger.Info("Starting retention sweeper", slog.Duration("interval", s.interval))

	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// A tick and a stop can be ready together; stop wins.
			select {
			case <-s.stopCh:
				return nil
			default:
			}
			s.sweep()
		}
	}
}

// sweep is not tied to the serve context, so a stop lets it finish.
func (s *sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	purged, err := s.messageUC.PurgeExpired(ctx)
	metrics.SweepDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		s.logger.Error("Retention sweep failed", slog.Any("error", err))

		return
	}

	if purged > 0 {
		s.logger.Info("Purged expired messages", slog.Int64("count", purged))
	}
}

// stop prevents new sweeps and waits for the current one, bounded by ctx.
func (s *sweeper) stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopCh) })

	select {
	case <-s.doneCh:
		s.logger.Info("Retention sweeper stopped")
	case <-ctx.Done():
		s.logger.Warn("Retention sweeper did not stop in time")
	}

	return nil
}
