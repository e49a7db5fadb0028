package scoring

import (
	"math"
	"time"

	"github.com/hiresage/hiresage/internal/candidate"
)

// Verdict is the four-level hiring recommendation derived from the interview
// score alone. It is a fixed global rubric: unlike Passed it never honors a
// template-specific threshold, so the two may disagree at the boundary.
type Verdict string

const (
	VerdictStrongHire Verdict = "Strong Hire"
	VerdictHire       Verdict = "Hire"
	VerdictMaybe      Verdict = "Maybe"
	VerdictReject     Verdict = "Reject"
)

// Result is the decision record produced for a candidate.
type Result struct {
	InterviewScore  int       `json:"interviewScore"`
	GrowthPotential int       `json:"growthPotential"`
	RetentionScore  int       `json:"retentionScore"`
	Passed          bool      `json:"passed"`
	Verdict         Verdict   `json:"verdict"`
	EvaluatedAt     time.Time `json:"evaluatedAt"`
}

// Config holds the aggregation constants. The weights and the missing-signal
// defaults are untuned product constants carried over from observed behavior;
// they are configuration precisely because nobody has validated them yet.
type Config struct {
	TechnicalWeight         float64 `mapstructure:"technical-weight"`
	EQWeight                float64 `mapstructure:"eq-weight"`
	BehaviorWeight          float64 `mapstructure:"behavior-weight"`
	HiringProbabilityWeight float64 `mapstructure:"hiring-probability-weight"`

	DefaultPassingScore    int `mapstructure:"default-passing-score"`
	DefaultGrowthPotential int `mapstructure:"default-growth-potential"`
	DefaultRetentionScore  int `mapstructure:"default-retention-score"`
}

func DefaultConfig() Config {
	return Config{
		TechnicalWeight:         0.30,
		EQWeight:                0.25,
		BehaviorWeight:          0.25,
		HiringProbabilityWeight: 0.20,
		DefaultPassingScore:     70,
		DefaultGrowthPotential:  85,
		DefaultRetentionScore:   88,
	}
}

// Aggregator merges a candidate's accumulated signals into a single decision
// record. It is pure: no I/O, no mutation of its inputs.
type Aggregator struct {
	cfg Config
}

func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate computes the decision record for the candidate against its
// assigned template (nil when none is assigned).
func (a *Aggregator) Aggregate(c *candidate.Candidate, tpl *candidate.Template, now time.Time) Result {
	score := a.interviewScore(c)

	return Result{
		InterviewScore:  score,
		GrowthPotential: a.growthPotential(c.Signals),
		RetentionScore:  a.retentionScore(c.Signals),
		Passed:          score >= a.threshold(tpl),
		Verdict:         VerdictFor(score),
		EvaluatedAt:     now,
	}
}

// interviewScore is the weighted mean of the present composite signals, with
// weights renormalized over the present components. When no composite signal
// exists the per-answer scores (x10) stand in; when nothing exists at all the
// score is 0.
func (a *Aggregator) interviewScore(c *candidate.Candidate) int {
	s := c.Signals

	var weighted, weights float64
	add := func(value *float64, scale, weight float64) {
		if value == nil {
			return
		}
		weighted += *value * scale * weight
		weights += weight
	}

	add(s.TechnicalScore, 1, a.cfg.TechnicalWeight)
	add(s.EQScore, 10, a.cfg.EQWeight) // 0-10 scale normalized to 100
	add(s.BehaviorScore, 1, a.cfg.BehaviorWeight)
	add(s.HiringProbabilityScore, 1, a.cfg.HiringProbabilityWeight)

	if weights > 0 {
		return clamp(int(math.Round(weighted / weights)))
	}

	if len(c.AnswerScores) > 0 {
		total := 0
		for _, v := range c.AnswerScores {
			total += v
		}
		mean := float64(total) / float64(len(c.AnswerScores))
		return clamp(int(math.Round(mean * 10)))
	}

	return 0
}

func (a *Aggregator) growthPotential(s candidate.Signals) int {
	var parts []float64

	if s.LearningVelocity != nil {
		parts = append(parts, *s.LearningVelocity*10)
	}
	if s.Openness != nil || s.Conscientiousness != nil {
		parts = append(parts, meanOfPresent(s.Openness, s.Conscientiousness))
	}
	if s.Adaptability != nil {
		parts = append(parts, *s.Adaptability)
	}

	if len(parts) == 0 {
		return a.cfg.DefaultGrowthPotential
	}
	return clamp(int(math.Round(mean(parts))))
}

func (a *Aggregator) retentionScore(s candidate.Signals) int {
	var parts []float64

	for _, v := range []*float64{s.EmotionalStability, s.TeamCollaboration, s.CultureFitScore, s.StressTolerance} {
		if v != nil {
			parts = append(parts, *v)
		}
	}

	if len(parts) == 0 {
		return a.cfg.DefaultRetentionScore
	}
	return clamp(int(math.Round(mean(parts))))
}

// threshold is the template's passing score when one is assigned and set,
// otherwise the configured global default. The boundary is inclusive.
func (a *Aggregator) threshold(tpl *candidate.Template) int {
	if tpl != nil && tpl.PassingScore > 0 {
		return tpl.PassingScore
	}
	return a.cfg.DefaultPassingScore
}

// VerdictFor applies the fixed global rubric.
func VerdictFor(score int) Verdict {
	switch {
	case score >= 90:
		return VerdictStrongHire
	case score >= 80:
		return VerdictHire
	case score >= 70:
		return VerdictMaybe
	default:
		return VerdictReject
	}
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func meanOfPresent(values ...*float64) float64 {
	var present []float64
	for _, v := range values {
		if v != nil {
			present = append(present, *v)
		}
	}
	if len(present) == 0 {
		return 0
	}
	return mean(present)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
