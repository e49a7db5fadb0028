package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SweepError records a single candidate failure inside a batch sweep.
type SweepError struct {
	CandidateID string `json:"candidateId"`
	Message     string `json:"message"`
}

// SweepReport summarizes one batch sweep.
type SweepReport struct {
	Pending   int          `json:"pending"`
	Evaluated int          `json:"evaluated"`
	Skipped   int          `json:"skipped"`
	Errors    []SweepError `json:"errors,omitempty"`
}

// ProcessPending evaluates every candidate with a completed interview and no
// interview score, sequentially with a fixed inter-candidate delay. A failure
// on one candidate is recorded and the sweep continues with the next. Only
// one sweep runs at a time; a concurrent request gets ErrSweepInProgress.
func (o *Orchestrator) ProcessPending(ctx context.Context) (*SweepReport, error) {
	if !o.sweepMu.TryLock() {
		o.deps.Logger.Info("batch sweep requested while another is running, skipping")
		return nil, ErrSweepInProgress
	}
	defer o.sweepMu.Unlock()

	pending, err := o.deps.Store.ListPendingEvaluation(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending candidates: %w", err)
	}

	report := &SweepReport{Pending: len(pending)}

	o.deps.Logger.Info("batch sweep started", zap.Int("pending", len(pending)))

	for i, c := range pending {
		if err := ctx.Err(); err != nil {
			o.deps.Logger.Info("batch sweep cancelled", zap.Int("processed", i))
			return report, err
		}

		_, skipped, err := o.Evaluate(ctx, c.ID)
		switch {
		case err != nil:
			o.deps.Logger.Warn("sweep evaluation failed, continuing",
				zap.String("candidate_id", c.ID),
				zap.Error(err),
			)
			report.Errors = append(report.Errors, SweepError{
				CandidateID: c.ID,
				Message:     err.Error(),
			})
		case skipped:
			report.Skipped++
		default:
			report.Evaluated++
		}

		if o.delay > 0 && i < len(pending)-1 {
			if err := sleep(ctx, o.delay); err != nil {
				return report, err
			}
		}
	}

	o.deps.Logger.Info("batch sweep finished",
		zap.Int("pending", report.Pending),
		zap.Int("evaluated", report.Evaluated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)),
	)

	return report, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
