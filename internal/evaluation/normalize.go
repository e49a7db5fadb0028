package evaluation

import (
	"math"
)

const (
	defaultAnswerScore     = 5
	defaultAnswerFeedback  = "No specific feedback provided"
	defaultOverallSummary  = "Interview evaluation completed"
	defaultRecommendation  = "Review performance"
	defaultOverallStrength = "Participated in interview"
	defaultImprovement     = "Continue learning"
)

// normalize converts a validated provider payload into a complete Evaluation
// for a session of answerCount answers. Every index gets exactly one entry:
// entries the provider omitted or garbled are synthesized with a neutral
// score. Out-of-range scores are clamped, never rejected.
func normalize(payload map[string]any, answerCount int) *Evaluation {
	entries := coerceObjects(payload["perAnswer"])

	byIndex := make(map[int]map[string]any, len(entries))
	for _, entry := range entries {
		idx := coerceFloat(entry["index"])
		if math.IsNaN(idx) {
			continue
		}
		i := int(idx)
		if _, taken := byIndex[i]; !taken {
			byIndex[i] = entry
		}
	}

	perAnswer := make([]AnswerEvaluation, 0, answerCount)
	for i := 0; i < answerCount; i++ {
		normalized := AnswerEvaluation{
			Index:    i,
			Score:    defaultAnswerScore,
			Feedback: defaultAnswerFeedback,
		}

		if entry, ok := byIndex[i]; ok {
			if score := coerceFloat(entry["score"]); !math.IsNaN(score) {
				normalized.Score = clampInt(int(math.Round(score)), 0, 10)
			}
			if feedback := coerceString(entry["feedback"]); feedback != "" {
				normalized.Feedback = feedback
			}
			normalized.Strengths = coerceStrings(entry["strengths"])
			normalized.Improvements = coerceStrings(entry["improvements"])
		}

		perAnswer = append(perAnswer, normalized)
	}

	return &Evaluation{
		PerAnswer: perAnswer,
		Overall:   normalizeOverall(coerceObject(payload["overall"]), perAnswer),
	}
}

func normalizeOverall(overall map[string]any, perAnswer []AnswerEvaluation) OverallEvaluation {
	normalized := OverallEvaluation{
		Score:          derivedOverallScore(perAnswer),
		Summary:        defaultOverallSummary,
		Strengths:      []string{defaultOverallStrength},
		Improvements:   []string{defaultImprovement},
		Recommendation: defaultRecommendation,
	}

	if overall == nil {
		return normalized
	}

	if score := coerceFloat(overall["score"]); !math.IsNaN(score) {
		normalized.Score = clampInt(int(math.Round(score)), 0, 100)
	}
	if summary := coerceString(overall["summary"]); summary != "" {
		normalized.Summary = summary
	}
	if strengths := coerceStrings(overall["strengths"]); len(strengths) > 0 {
		normalized.Strengths = strengths
	}
	if improvements := coerceStrings(overall["improvements"]); len(improvements) > 0 {
		normalized.Improvements = improvements
	}
	if recommendation := coerceString(overall["recommendation"]); recommendation != "" {
		normalized.Recommendation = recommendation
	}

	return normalized
}

// derivedOverallScore is the fallback for providers that omit the overall
// score: round(mean(perAnswer) * 10), clamped to [0, 100].
func derivedOverallScore(perAnswer []AnswerEvaluation) int {
	if len(perAnswer) == 0 {
		return 0
	}
	total := 0
	for _, a := range perAnswer {
		total += a.Score
	}
	mean := float64(total) / float64(len(perAnswer))
	return clampInt(int(math.Round(mean*10)), 0, 100)
}
