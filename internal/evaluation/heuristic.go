package evaluation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/hiresage/hiresage/internal/interview"
)

// Deterministic fallback scorer. It is user-observable whenever no provider is
// configured or every provider fails, so the policy here is fixed: word-count
// tiers, pattern bonuses, an auto-submit penalty, and a difficulty factor.

var (
	examplePattern   = regexp.MustCompile(`(?i)example|instance|case|scenario|such as`)
	technicalPattern = regexp.MustCompile(`(?i)algorithm|function|method|class|object|array|database`)
)

const noAnswerFeedback = "No answer provided"

// Heuristic evaluates the session without any network access.
func Heuristic(session *interview.Session) *Evaluation {
	count := session.Len()
	perAnswer := make([]AnswerEvaluation, 0, count)
	total := 0

	for i, qa := range session.Items {
		score, feedback := scoreAnswer(qa.Question, qa.Answer)
		perAnswer = append(perAnswer, AnswerEvaluation{
			Index:        i,
			Score:        score,
			Feedback:     feedback,
			Strengths:    answerStrengths(score),
			Improvements: answerImprovements(score),
		})
		total += score
	}

	overallScore := 0
	if count > 0 {
		mean := float64(total) / float64(count)
		overallScore = clampInt(int(math.Round(mean*10)), 0, 100)
	}

	return &Evaluation{
		PerAnswer: perAnswer,
		Overall: OverallEvaluation{
			Score:          overallScore,
			Summary:        fmt.Sprintf("Interview completed with %d/100 performance", overallScore),
			Strengths:      overallStrengths(overallScore),
			Improvements:   overallImprovements(overallScore),
			Recommendation: recommendation(overallScore),
		},
	}
}

func scoreAnswer(q interview.Question, a interview.Answer) (int, string) {
	text := strings.TrimSpace(a.Text)
	if text == "" {
		return 0, noAnswerFeedback
	}

	words := len(strings.Fields(text))
	var score int
	var feedback string
	switch {
	case words < 10:
		score, feedback = 2, "Very brief answer, needs more detail"
	case words < 30:
		score, feedback = 4, "Short answer, could use more explanation"
	case words < 80:
		score, feedback = 6, "Reasonably detailed answer"
	default:
		score, feedback = 7, "Detailed answer provided"
	}

	if examplePattern.MatchString(text) {
		score++
	}
	if technicalPattern.MatchString(text) {
		score++
	}

	if a.AutoSubmitted {
		score -= 2
		if score < 1 {
			score = 1
		}
		feedback += " (time expired)"
	}

	score = clampInt(int(math.Round(float64(score)*q.Difficulty.Factor())), 0, 10)
	return score, feedback
}

func answerStrengths(score int) []string {
	switch {
	case score >= 7:
		return []string{"Good understanding", "Clear explanation"}
	case score >= 4:
		return []string{"Basic understanding"}
	default:
		return nil
	}
}

func answerImprovements(score int) []string {
	switch {
	case score < 5:
		return []string{"Needs more detail", "Practice explaining concepts"}
	case score < 7:
		return []string{"Add more examples", "Improve depth"}
	default:
		return nil
	}
}

func overallStrengths(score int) []string {
	if score >= 65 {
		return []string{"Consistent performance", "Good technical knowledge"}
	}
	return []string{defaultOverallStrength}
}

func overallImprovements(score int) []string {
	if score < 65 {
		return []string{"Improve technical knowledge", "Provide more detailed answers"}
	}
	return []string{defaultImprovement, "Deepen expertise"}
}

// recommendation is a step function of the overall score.
func recommendation(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Average"
	case score >= 50:
		return "Below average"
	default:
		return "Needs improvement"
	}
}
