package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Scheduler re-triggers a task on a fixed interval. It exists so the periodic
// batch sweep can be driven by a plain function in tests instead of real time
// passing. Overlap protection lives in the task itself (ProcessPending), not
// here.
type Scheduler struct {
	interval time.Duration
	task     func(context.Context)
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(interval time.Duration, logger *zap.Logger, task func(context.Context)) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
		logger:   logger,
	}
}

// Start launches the periodic loop. It returns immediately; Stop cancels the
// loop and waits for the in-flight task, if any, to return.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				s.task(ctx)
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// SweepTask adapts the orchestrator's batch sweep for the scheduler,
// swallowing the in-progress signal that is expected under overlap.
func SweepTask(o *Orchestrator, logger *zap.Logger) func(context.Context) {
	return func(ctx context.Context) {
		if _, err := o.ProcessPending(ctx); err != nil && !errors.Is(err, ErrSweepInProgress) && !errors.Is(err, context.Canceled) {
			logger.Warn("scheduled batch sweep failed", zap.Error(err))
		}
	}
}
