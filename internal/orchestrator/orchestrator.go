package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hiresage/hiresage/internal/candidate"
	"github.com/hiresage/hiresage/internal/evaluation"
	"github.com/hiresage/hiresage/internal/interview"
	"github.com/hiresage/hiresage/internal/scoring"
)

// ErrSweepInProgress is returned when a batch sweep is requested while
// another sweep is still running. Sweeps never overlap.
var ErrSweepInProgress = errors.New("batch sweep already in progress")

// LetterService generates the outcome letters dispatched after evaluation.
type LetterService interface {
	GenerateOffer(c *candidate.Candidate) (string, error)
	GenerateRejection(c *candidate.Candidate) (string, error)
}

// EmailSender mirrors mailer.Sender; declared here so tests can fake it
// without importing the mailer package.
type EmailSender interface {
	SendOffer(ctx context.Context, c *candidate.Candidate, letterPath string) error
	SendRejection(ctx context.Context, c *candidate.Candidate, letterPath string) error
}

// ResponseEvaluator assesses a finished interview session.
type ResponseEvaluator interface {
	Evaluate(ctx context.Context, session *interview.Session) *evaluation.Evaluation
}

// Deps are the collaborators the orchestrator drives. The orchestrator is the
// only component that writes evaluation fields or triggers notifications.
type Deps struct {
	Store      candidate.Store
	Aggregator *scoring.Aggregator
	Evaluator  ResponseEvaluator
	Letters    LetterService
	Mailer     EmailSender
	Logger     *zap.Logger
}

// Config tunes the batch sweep.
type Config struct {
	// SweepDelay is the fixed pause between candidates in a batch sweep,
	// throttling provider and email usage.
	SweepDelay time.Duration
}

// Orchestrator enforces idempotency, persists evaluation results, and
// dispatches exactly one of the two notification branches per candidate.
type Orchestrator struct {
	deps  Deps
	delay time.Duration

	sweepMu sync.Mutex
}

func New(cfg Config, deps Deps) *Orchestrator {
	return &Orchestrator{
		deps:  deps,
		delay: cfg.SweepDelay,
	}
}

// SubmitInterview runs the response evaluator over the session and records
// the per-answer scores on the candidate, marking the interview completed.
// The candidate is then eligible for evaluation by Evaluate or the sweep.
func (o *Orchestrator) SubmitInterview(ctx context.Context, id string, session *interview.Session) (*evaluation.Evaluation, error) {
	if o.deps.Evaluator == nil {
		return nil, errors.New("response evaluator is not configured")
	}

	if _, err := o.deps.Store.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("load candidate %s: %w", id, err)
	}

	eval := o.deps.Evaluator.Evaluate(ctx, session)

	if _, err := o.deps.Store.ApplyInterview(ctx, id, candidate.InterviewUpdate{
		AnswerScores: eval.AnswerScores(),
		CompletedAt:  time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("record interview for candidate %s: %w", id, err)
	}

	o.deps.Logger.Info("interview recorded",
		zap.String("candidate_id", id),
		zap.Int("answers", len(eval.PerAnswer)),
		zap.Int("overall_score", eval.Overall.Score),
	)

	return eval, nil
}

// Evaluate produces and persists the decision record for the candidate. When
// the candidate already has an interview score the call is a no-op returning
// skipped=true: no aggregation, no persistence, no notification.
func (o *Orchestrator) Evaluate(ctx context.Context, id string) (*scoring.Result, bool, error) {
	c, err := o.deps.Store.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("load candidate %s: %w", id, err)
	}

	if c.InterviewScore != nil {
		o.deps.Logger.Debug("candidate already evaluated, skipping",
			zap.String("candidate_id", id),
			zap.Int("interview_score", *c.InterviewScore),
		)
		return nil, true, nil
	}

	result, err := o.evaluate(ctx, c)
	if err != nil {
		return nil, false, err
	}

	return result, false, nil
}

// Recalculate bypasses the idempotency check and overwrites the scores. It
// never touches status, hire status, or notifications.
func (o *Orchestrator) Recalculate(ctx context.Context, id string) (*scoring.Result, error) {
	c, err := o.deps.Store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load candidate %s: %w", id, err)
	}

	result := o.deps.Aggregator.Aggregate(c, o.loadTemplate(ctx, c), time.Now())

	if _, err := o.deps.Store.ApplyScores(ctx, id, candidate.ScoresUpdate{
		InterviewScore:  result.InterviewScore,
		GrowthPotential: result.GrowthPotential,
		RetentionScore:  result.RetentionScore,
		EvaluatedAt:     result.EvaluatedAt,
	}); err != nil {
		return nil, fmt.Errorf("persist recalculated scores for %s: %w", id, err)
	}

	o.deps.Logger.Info("candidate scores recalculated",
		zap.String("candidate_id", id),
		zap.Int("interview_score", result.InterviewScore),
	)

	return &result, nil
}

func (o *Orchestrator) evaluate(ctx context.Context, c *candidate.Candidate) (*scoring.Result, error) {
	result := o.deps.Aggregator.Aggregate(c, o.loadTemplate(ctx, c), time.Now())

	hireStatus := candidate.HireStatusRejected
	if result.Passed {
		hireStatus = candidate.HireStatusOffered
	}

	// Persistence must be durable before any notification is attempted.
	updated, err := o.deps.Store.ApplyEvaluation(ctx, c.ID, candidate.EvaluationUpdate{
		InterviewScore:     result.InterviewScore,
		GrowthPotential:    result.GrowthPotential,
		RetentionScore:     result.RetentionScore,
		InterviewCompleted: true,
		Status:             candidate.StatusCompleted,
		AIHireStatus:       hireStatus,
		EvaluatedAt:        result.EvaluatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("persist evaluation for %s: %w", c.ID, err)
	}

	o.deps.Logger.Info("candidate evaluated",
		zap.String("candidate_id", c.ID),
		zap.Int("interview_score", result.InterviewScore),
		zap.Bool("passed", result.Passed),
		zap.String("verdict", string(result.Verdict)),
	)

	o.dispatch(ctx, updated, result)

	return &result, nil
}

// dispatch sends exactly one of the two notification branches. Failures are
// logged and never roll back the persisted result or trigger a retry; the
// evaluation record stays authoritative either way.
func (o *Orchestrator) dispatch(ctx context.Context, c *candidate.Candidate, result scoring.Result) {
	if result.Passed {
		path, err := o.deps.Letters.GenerateOffer(c)
		if err != nil {
			o.deps.Logger.Warn("offer letter generation failed",
				zap.String("candidate_id", c.ID),
				zap.Error(err),
			)
			return
		}
		if err := o.deps.Mailer.SendOffer(ctx, c, path); err != nil {
			o.deps.Logger.Warn("offer email failed",
				zap.String("candidate_id", c.ID),
				zap.Error(err),
			)
		}
		return
	}

	path, err := o.deps.Letters.GenerateRejection(c)
	if err != nil {
		o.deps.Logger.Warn("rejection letter generation failed",
			zap.String("candidate_id", c.ID),
			zap.Error(err),
		)
		return
	}
	if err := o.deps.Mailer.SendRejection(ctx, c, path); err != nil {
		o.deps.Logger.Warn("rejection email failed",
			zap.String("candidate_id", c.ID),
			zap.Error(err),
		)
	}
}

// loadTemplate fetches the candidate's assigned template. A missing template
// is not fatal: the global passing threshold applies instead.
func (o *Orchestrator) loadTemplate(ctx context.Context, c *candidate.Candidate) *candidate.Template {
	if c.TemplateID == "" {
		return nil
	}

	tpl, err := o.deps.Store.GetTemplate(ctx, c.TemplateID)
	if err != nil {
		o.deps.Logger.Warn("assigned template not loadable, using default threshold",
			zap.String("candidate_id", c.ID),
			zap.String("template_id", c.TemplateID),
			zap.Error(err),
		)
		return nil
	}
	return tpl
}
