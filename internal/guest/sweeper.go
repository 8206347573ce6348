package guest

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper runs the guest sweep on a fixed interval. It is a thin scheduler
// around Service.Sweep; tests drive Sweep directly instead of the ticker.
type Sweeper struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper builds a background sweep runner.
func NewSweeper(service *Service, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{service: service, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every interval tick until the context
// is cancelled. Sweep errors are logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	if _, err := s.service.Sweep(ctx); err != nil {
		s.logger.Error("guest sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.service.Sweep(ctx); err != nil {
				s.logger.Error("guest sweep failed", "error", err)
			}
		}
	}
}
