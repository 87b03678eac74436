package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Runner is a restartable strategy instance.
type Runner interface {
	Run(ctx context.Context) error
}

// Factory builds a fresh Runner for each supervised attempt. State carried
// across restarts lives on the exchange and is re-adopted at startup, not
// in the instance.
type Factory func() (Runner, error)

// Supervisor restarts a strategy after a fatal error, with a fixed delay
// between attempts.
type Supervisor struct {
	factory Factory
	delay   time.Duration
	logger  *slog.Logger
}

// NewSupervisor creates a supervisor.
func NewSupervisor(factory Factory, delay time.Duration, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = 5 * time.Second
	}
	return &Supervisor{
		factory: factory,
		delay:   delay,
		logger:  logger,
	}
}

// Run builds and runs strategy instances until the context is cancelled.
// A factory error is unrecoverable and returned; a runner error triggers a
// delayed restart with a fresh instance.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		runner, err := s.factory()
		if err != nil {
			return fmt.Errorf("build strategy instance: %w", err)
		}

		err = runner.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}

		s.logger.Error("strategy instance terminated, restarting",
			"error", err, "delay", s.delay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.delay):
		}
	}
}
