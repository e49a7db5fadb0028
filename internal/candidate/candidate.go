package candidate

import (
	"context"
	"errors"
	"time"

	"github.com/hiresage/hiresage/internal/interview"
)

// ErrNotFound is returned by stores when a candidate or template id does not
// exist.
var ErrNotFound = errors.New("not found")

// Status tracks a candidate through the hiring funnel.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusInterview Status = "interview"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Hire statuses written by the evaluation pipeline.
const (
	HireStatusOffered  = "offered"
	HireStatusRejected = "rejected"
)

// Signals are the optional, independently produced inputs to the composite
// score. Other subsystems own their production; the pipeline only reads them.
// Scales follow the producing subsystem: EQScore and LearningVelocity are
// 0-10, everything else is 0-100.
type Signals struct {
	TechnicalScore         *float64 `json:"technicalScore,omitempty"`
	EQScore                *float64 `json:"eqScore,omitempty"`
	BehaviorScore          *float64 `json:"behaviorScore,omitempty"`
	HiringProbabilityScore *float64 `json:"hiringProbabilityScore,omitempty"`

	LearningVelocity  *float64 `json:"learningVelocity,omitempty"`
	Openness          *float64 `json:"openness,omitempty"`
	Conscientiousness *float64 `json:"conscientiousness,omitempty"`
	Adaptability      *float64 `json:"adaptability,omitempty"`

	EmotionalStability *float64 `json:"emotionalStability,omitempty"`
	TeamCollaboration  *float64 `json:"teamCollaboration,omitempty"`
	CultureFitScore    *float64 `json:"cultureFitScore,omitempty"`
	StressTolerance    *float64 `json:"stressTolerance,omitempty"`
}

// Candidate is the durable owner of signals and evaluation results. The
// evaluation fields (InterviewScore and friends) are written only by the
// orchestrator.
type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Location   string `json:"location,omitempty"`
	AppliedFor string `json:"appliedFor,omitempty"`
	TemplateID string `json:"templateId,omitempty"`

	Status             Status     `json:"status"`
	InterviewCompleted bool       `json:"interviewCompleted"`
	AnswerScores       []int      `json:"answerScores,omitempty"`
	Signals            Signals    `json:"signals"`
	InterviewScore     *int       `json:"interviewScore,omitempty"`
	GrowthPotential    *int       `json:"growthPotential,omitempty"`
	RetentionScore     *int       `json:"retentionScore,omitempty"`
	AIHireStatus       string     `json:"aiHireStatus,omitempty"`
	EvaluatedAt        *time.Time `json:"evaluatedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Template is the interview template a candidate was assigned. PassingScore
// overrides the global passing threshold when set.
type Template struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Role         string               `json:"role,omitempty"`
	Difficulty   interview.Difficulty `json:"difficulty,omitempty"`
	PassingScore int                  `json:"passingScore"`
}

// EvaluationUpdate is the full write performed by a fresh evaluation.
type EvaluationUpdate struct {
	InterviewScore     int
	GrowthPotential    int
	RetentionScore     int
	InterviewCompleted bool
	Status             Status
	AIHireStatus       string
	EvaluatedAt        time.Time
}

// ScoresUpdate is the reduced write performed by an explicit recalculation.
// It never touches status or notification fields.
type ScoresUpdate struct {
	InterviewScore  int
	GrowthPotential int
	RetentionScore  int
	EvaluatedAt     time.Time
}

// InterviewUpdate records the outcome of a response evaluation on the
// candidate so the aggregator can later fold it in.
type InterviewUpdate struct {
	AnswerScores []int
	CompletedAt  time.Time
}

// Store is the persistence collaborator the pipeline consumes. Single-record
// atomicity is all the pipeline relies on.
type Store interface {
	Create(ctx context.Context, c *Candidate) (*Candidate, error)
	Get(ctx context.Context, id string) (*Candidate, error)
	ApplyEvaluation(ctx context.Context, id string, upd EvaluationUpdate) (*Candidate, error)
	ApplyScores(ctx context.Context, id string, upd ScoresUpdate) (*Candidate, error)
	ApplyInterview(ctx context.Context, id string, upd InterviewUpdate) (*Candidate, error)
	ListPendingEvaluation(ctx context.Context) ([]*Candidate, error)

	PutTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id string) (*Template, error)
}
