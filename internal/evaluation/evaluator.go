package evaluation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/hiresage/hiresage/internal/interview"
	"github.com/hiresage/hiresage/internal/provider"
	"github.com/hiresage/hiresage/internal/util"
)

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Evaluator turns a finished interview session into per-answer and overall
// evaluations. Providers are tried in priority order; a transport error or
// timeout advances to the next provider, an unusable payload falls through to
// the heuristic scorer. Evaluate never fails: the heuristic is the terminal
// member of the chain.
type Evaluator struct {
	gateways  provider.Chain
	logger    *zap.Logger
	maxLogLen int
}

func New(gateways provider.Chain, logger *zap.Logger, maxLogLength int) *Evaluator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Evaluator{
		gateways:  gateways,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Evaluate assesses the session. The returned evaluation always carries
// exactly one entry per answer with scores inside [0, 10] and an overall
// score inside [0, 100].
func (e *Evaluator) Evaluate(ctx context.Context, session *interview.Session) *Evaluation {
	if session.Len() == 0 {
		return Heuristic(session)
	}

	prompt := buildPrompt(session)

	e.logger.Debug("evaluation request prepared",
		zap.Int("answers", session.Len()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, e.maxLogLen)),
	)

	for _, gw := range e.gateways {
		raw, err := gw.Call(ctx, prompt)
		if err != nil {
			e.logger.Warn("provider call failed, trying next",
				zap.String("provider", gw.Name()),
				zap.Error(err),
			)
			continue
		}

		e.logger.Debug("provider response received",
			zap.String("provider", gw.Name()),
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", util.TruncateForLog(raw, e.maxLogLen)),
		)

		payload, err := parsePayload(raw)
		if err != nil {
			// An unparseable payload is not retried against another
			// provider; the heuristic takes over.
			e.logger.Warn("provider returned unusable payload, falling back to heuristic",
				zap.String("provider", gw.Name()),
				zap.Error(err),
			)
			break
		}

		e.logger.Info("session evaluated by provider", zap.String("provider", gw.Name()))
		return normalize(payload, session.Len())
	}

	e.logger.Info("session evaluated by heuristic scorer")
	return Heuristic(session)
}

func buildPrompt(session *interview.Session) string {
	candidate := strings.TrimSpace(session.CandidateName)
	if candidate == "" {
		candidate = "Candidate"
	}
	position := strings.TrimSpace(session.AppliedFor)
	if position == "" {
		position = "not specified"
	}

	var transcript strings.Builder
	for i, qa := range session.Items {
		answerText := strings.TrimSpace(qa.Answer.Text)
		if answerText == "" {
			answerText = noAnswerFeedback
		}

		fmt.Fprintf(&transcript, "Q%d [%s]: %s\n", i+1, qa.Question.Difficulty, qa.Question.Text)
		fmt.Fprintf(&transcript, "A%d: %s\n", i+1, answerText)
		fmt.Fprintf(&transcript, "Time spent: %ds", qa.Answer.TimeSpent)
		if qa.Answer.AutoSubmitted {
			transcript.WriteString(" (auto-submitted)")
		}
		transcript.WriteString("\n\n")
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{CANDIDATE}}", candidate)
	prompt = strings.ReplaceAll(prompt, "{{POSITION}}", position)
	prompt = strings.ReplaceAll(prompt, "{{TRANSCRIPT}}", strings.TrimSpace(transcript.String()))
	return prompt
}
