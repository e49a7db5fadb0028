package evaluation

// AnswerEvaluation is the normalized assessment of a single answer. Index
// always equals the answer's position in the session and Score is within
// [0, 10].
type AnswerEvaluation struct {
	Index        int      `json:"index"`
	Score        int      `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// OverallEvaluation summarizes the whole session. Score is within [0, 100].
type OverallEvaluation struct {
	Score          int      `json:"score"`
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Improvements   []string `json:"improvements"`
	Recommendation string   `json:"recommendation"`
}

// Evaluation carries exactly one AnswerEvaluation per input answer plus the
// overall assessment. It is always fully populated, whatever the provider
// returned.
type Evaluation struct {
	PerAnswer []AnswerEvaluation `json:"perAnswer"`
	Overall   OverallEvaluation  `json:"overall"`
}

// AnswerScores returns the per-answer scores in session order.
func (e *Evaluation) AnswerScores() []int {
	scores := make([]int, 0, len(e.PerAnswer))
	for _, a := range e.PerAnswer {
		scores = append(scores, a.Score)
	}
	return scores
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
