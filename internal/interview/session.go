package interview

// Difficulty is the declared difficulty of an interview question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Factor returns the score multiplier applied by the heuristic scorer.
// Unknown values are treated as easy.
func (d Difficulty) Factor() float64 {
	switch d {
	case DifficultyMedium:
		return 1.1
	case DifficultyHard:
		return 1.2
	default:
		return 1.0
	}
}

// Question is a single interview question presented to the candidate.
type Question struct {
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
}

// Answer is the candidate's response to one question. AutoSubmitted marks
// answers captured because the question timer expired before submission.
type Answer struct {
	Text          string `json:"text"`
	TimeSpent     int    `json:"timeSpent"`
	AutoSubmitted bool   `json:"isAutoSubmitted"`
}

// QA pairs a question with the answer given for it.
type QA struct {
	Question Question `json:"question"`
	Answer   Answer   `json:"answer"`
}

// Session is the ordered transcript of a completed interview. It is an input
// to the response evaluator and is not persisted by the pipeline itself.
type Session struct {
	CandidateName string `json:"candidateName"`
	AppliedFor    string `json:"appliedFor"`
	Items         []QA   `json:"items"`
}

func (s *Session) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}
