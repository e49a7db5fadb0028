package evaluation

import (
	"strings"
	"testing"

	"github.com/hiresage/hiresage/internal/interview"
)

func sessionWithAnswer(difficulty interview.Difficulty, answer interview.Answer) *interview.Session {
	return &interview.Session{
		CandidateName: "Jordan Reyes",
		AppliedFor:    "Backend Engineer",
		Items: []interview.QA{
			{
				Question: interview.Question{Text: "Tell me about concurrency.", Difficulty: difficulty},
				Answer:   answer,
			},
		},
	}
}

// wordsOfLength builds an answer of exactly n words that matches none of the
// bonus patterns.
func wordsOfLength(n int) string {
	return strings.TrimSpace(strings.Repeat("detail ", n))
}

func TestHeuristicVeryBriefAnswer(t *testing.T) {
	session := sessionWithAnswer(interview.DifficultyEasy, interview.Answer{Text: "I do not know this", TimeSpent: 12})

	eval := Heuristic(session)

	if len(eval.PerAnswer) != 1 {
		t.Fatalf("expected one per-answer entry, got %d", len(eval.PerAnswer))
	}
	if eval.PerAnswer[0].Score != 2 {
		t.Fatalf("expected score 2, got %d", eval.PerAnswer[0].Score)
	}
	if eval.PerAnswer[0].Feedback != "Very brief answer, needs more detail" {
		t.Fatalf("unexpected feedback: %q", eval.PerAnswer[0].Feedback)
	}
}

func TestHeuristicAutoSubmittedFloor(t *testing.T) {
	session := sessionWithAnswer(interview.DifficultyEasy, interview.Answer{
		Text:          "I do not know this",
		TimeSpent:     120,
		AutoSubmitted: true,
	})

	eval := Heuristic(session)

	if eval.PerAnswer[0].Score != 1 {
		t.Fatalf("expected floored score 1, got %d", eval.PerAnswer[0].Score)
	}
	if !strings.HasSuffix(eval.PerAnswer[0].Feedback, " (time expired)") {
		t.Fatalf("expected time expired suffix, got %q", eval.PerAnswer[0].Feedback)
	}
}

func TestHeuristicWordTiers(t *testing.T) {
	cases := []struct {
		words int
		score int
	}{
		{5, 2},
		{9, 2},
		{10, 4},
		{29, 4},
		{30, 6},
		{79, 6},
		{80, 7},
		{150, 7},
	}

	for _, tc := range cases {
		session := sessionWithAnswer(interview.DifficultyEasy, interview.Answer{Text: wordsOfLength(tc.words)})
		eval := Heuristic(session)
		if got := eval.PerAnswer[0].Score; got != tc.score {
			t.Fatalf("%d words: expected score %d, got %d", tc.words, tc.score, got)
		}
	}
}

func TestHeuristicPatternBonuses(t *testing.T) {
	text := wordsOfLength(40) + " for example the algorithm handles it"
	session := sessionWithAnswer(interview.DifficultyEasy, interview.Answer{Text: text})

	eval := Heuristic(session)

	if eval.PerAnswer[0].Score != 8 {
		t.Fatalf("expected 6 + both bonuses = 8, got %d", eval.PerAnswer[0].Score)
	}
}

func TestHeuristicDifficultyFactorClampsAtTen(t *testing.T) {
	text := wordsOfLength(90) + " for example the algorithm handles it"
	session := sessionWithAnswer(interview.DifficultyHard, interview.Answer{Text: text})

	eval := Heuristic(session)

	// 7 + 2 bonuses = 9, times 1.2 rounds to 11 and clamps.
	if eval.PerAnswer[0].Score != 10 {
		t.Fatalf("expected clamped score 10, got %d", eval.PerAnswer[0].Score)
	}
}

func TestHeuristicMediumDifficultyRounds(t *testing.T) {
	session := sessionWithAnswer(interview.DifficultyMedium, interview.Answer{Text: wordsOfLength(40)})

	eval := Heuristic(session)

	// 6 * 1.1 = 6.6 rounds to 7.
	if eval.PerAnswer[0].Score != 7 {
		t.Fatalf("expected score 7, got %d", eval.PerAnswer[0].Score)
	}
}

func TestHeuristicEmptyAnswer(t *testing.T) {
	session := sessionWithAnswer(interview.DifficultyHard, interview.Answer{Text: "   ", AutoSubmitted: true})

	eval := Heuristic(session)

	if eval.PerAnswer[0].Score != 0 {
		t.Fatalf("expected score 0 for empty answer, got %d", eval.PerAnswer[0].Score)
	}
	if eval.PerAnswer[0].Feedback != "No answer provided" {
		t.Fatalf("unexpected feedback: %q", eval.PerAnswer[0].Feedback)
	}
	if eval.Overall.Score != 0 {
		t.Fatalf("expected overall 0, got %d", eval.Overall.Score)
	}
	if eval.Overall.Recommendation != "Needs improvement" {
		t.Fatalf("unexpected recommendation: %q", eval.Overall.Recommendation)
	}
}

func TestHeuristicOverallIsMeanTimesTen(t *testing.T) {
	session := &interview.Session{
		Items: []interview.QA{
			{
				Question: interview.Question{Text: "Q1", Difficulty: interview.DifficultyEasy},
				Answer:   interview.Answer{Text: "I do not know this"},
			},
			{
				Question: interview.Question{Text: "Q2", Difficulty: interview.DifficultyEasy},
				Answer:   interview.Answer{Text: wordsOfLength(40)},
			},
		},
	}

	eval := Heuristic(session)

	// Scores 2 and 6, mean 4, overall 40.
	if eval.Overall.Score != 40 {
		t.Fatalf("expected overall 40, got %d", eval.Overall.Score)
	}
	if eval.Overall.Summary != "Interview completed with 40/100 performance" {
		t.Fatalf("unexpected summary: %q", eval.Overall.Summary)
	}
}

func TestHeuristicEmptySession(t *testing.T) {
	eval := Heuristic(&interview.Session{})

	if len(eval.PerAnswer) != 0 {
		t.Fatalf("expected no per-answer entries, got %d", len(eval.PerAnswer))
	}
	if eval.Overall.Score != 0 {
		t.Fatalf("expected overall 0, got %d", eval.Overall.Score)
	}
}

func TestRecommendationSteps(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{95, "Excellent"},
		{80, "Excellent"},
		{79, "Good"},
		{70, "Good"},
		{69, "Average"},
		{60, "Average"},
		{59, "Below average"},
		{50, "Below average"},
		{49, "Needs improvement"},
		{0, "Needs improvement"},
	}

	for _, tc := range cases {
		if got := recommendation(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %q, got %q", tc.score, tc.want, got)
		}
	}
}
