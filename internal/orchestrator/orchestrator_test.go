package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hiresage/hiresage/internal/candidate"
	"github.com/hiresage/hiresage/internal/evaluation"
	"github.com/hiresage/hiresage/internal/interview"
	"github.com/hiresage/hiresage/internal/scoring"
)

type fakeLetters struct {
	offers     int
	rejections int
	err        error
}

func (f *fakeLetters) GenerateOffer(c *candidate.Candidate) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.offers++
	return "/letters/offer-" + c.ID + ".txt", nil
}

func (f *fakeLetters) GenerateRejection(c *candidate.Candidate) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rejections++
	return "/letters/rejection-" + c.ID + ".txt", nil
}

type fakeMailer struct {
	offers     []string
	rejections []string
	err        error
}

func (f *fakeMailer) SendOffer(_ context.Context, _ *candidate.Candidate, path string) error {
	if f.err != nil {
		return f.err
	}
	f.offers = append(f.offers, path)
	return nil
}

func (f *fakeMailer) SendRejection(_ context.Context, _ *candidate.Candidate, path string) error {
	if f.err != nil {
		return f.err
	}
	f.rejections = append(f.rejections, path)
	return nil
}

type fakeEvaluator struct {
	eval  *evaluation.Evaluation
	calls int
}

func (f *fakeEvaluator) Evaluate(_ context.Context, _ *interview.Session) *evaluation.Evaluation {
	f.calls++
	return f.eval
}

// flakyStore fails evaluation writes for one candidate, for sweep isolation
// tests.
type flakyStore struct {
	candidate.Store
	failID string
}

func (s *flakyStore) ApplyEvaluation(ctx context.Context, id string, upd candidate.EvaluationUpdate) (*candidate.Candidate, error) {
	if id == s.failID {
		return nil, errors.New("storage write failed")
	}
	return s.Store.ApplyEvaluation(ctx, id, upd)
}

type fixture struct {
	store     *candidate.MemStore
	letters   *fakeLetters
	mailer    *fakeMailer
	evaluator *fakeEvaluator
	orch      *Orchestrator
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()

	f := &fixture{
		store:   candidate.NewMemStore(),
		letters: &fakeLetters{},
		mailer:  &fakeMailer{},
		evaluator: &fakeEvaluator{eval: &evaluation.Evaluation{
			PerAnswer: []evaluation.AnswerEvaluation{
				{Index: 0, Score: 8}, {Index: 1, Score: 6}, {Index: 2, Score: 7},
			},
			Overall: evaluation.OverallEvaluation{Score: 70},
		}},
	}

	deps := Deps{
		Store:      f.store,
		Aggregator: scoring.NewAggregator(scoring.DefaultConfig()),
		Evaluator:  f.evaluator,
		Letters:    f.letters,
		Mailer:     f.mailer,
		Logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	f.orch = New(Config{}, deps)
	return f
}

func (f *fixture) createCandidate(t *testing.T, c *candidate.Candidate) *candidate.Candidate {
	t.Helper()
	created, err := f.store.Create(context.Background(), c)
	require.NoError(t, err)
	return created
}

func signal(v float64) *float64 { return &v }

func TestEvaluatePassedCandidate(t *testing.T) {
	f := newFixture(t)
	c := f.createCandidate(t, &candidate.Candidate{
		Name:    "Ada",
		Signals: candidate.Signals{TechnicalScore: signal(85)},
	})

	result, skipped, err := f.orch.Evaluate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, 85, result.InterviewScore)
	assert.True(t, result.Passed)

	stored, err := f.store.Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.InterviewScore)
	assert.Equal(t, 85, *stored.InterviewScore)
	assert.Equal(t, candidate.StatusCompleted, stored.Status)
	assert.Equal(t, candidate.HireStatusOffered, stored.AIHireStatus)
	assert.True(t, stored.InterviewCompleted)

	assert.Equal(t, 1, f.letters.offers)
	assert.Equal(t, 0, f.letters.rejections)
	require.Len(t, f.mailer.offers, 1)
	assert.Equal(t, "/letters/offer-"+c.ID+".txt", f.mailer.offers[0])
}

func TestEvaluateRejectedCandidate(t *testing.T) {
	f := newFixture(t)
	c := f.createCandidate(t, &candidate.Candidate{
		Name:    "Ada",
		Signals: candidate.Signals{TechnicalScore: signal(40)},
	})

	result, skipped, err := f.orch.Evaluate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.False(t, result.Passed)
	assert.Equal(t, scoring.VerdictReject, result.Verdict)

	stored, _ := f.store.Get(context.Background(), c.ID)
	assert.Equal(t, candidate.HireStatusRejected, stored.AIHireStatus)

	assert.Equal(t, 0, f.letters.offers)
	assert.Equal(t, 1, f.letters.rejections)
	assert.Len(t, f.mailer.rejections, 1)
}

func TestEvaluateAlreadyScoredIsSkipped(t *testing.T) {
	f := newFixture(t)
	c := f.createCandidate(t, &candidate.Candidate{Name: "Ada"})

	_, err := f.store.ApplyEvaluation(context.Background(), c.ID, candidate.EvaluationUpdate{
		InterviewScore: 82,
		Status:         candidate.StatusCompleted,
		AIHireStatus:   candidate.HireStatusOffered,
		EvaluatedAt:    time.Now(),
	})
	require.NoError(t, err)

	before, _ := f.store.Get(context.Background(), c.ID)

	result, skipped, err := f.orch.Evaluate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Nil(t, result)

	// Nothing written, nothing dispatched, no provider usage.
	after, _ := f.store.Get(context.Background(), c.ID)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Equal(t, 0, f.evaluator.calls)
	assert.Equal(t, 0, f.letters.offers+f.letters.rejections)
	assert.Empty(t, f.mailer.offers)
	assert.Empty(t, f.mailer.rejections)
}

func TestEvaluateUnknownCandidate(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.orch.Evaluate(context.Background(), "missing")
	assert.ErrorIs(t, err, candidate.ErrNotFound)
}

func TestEvaluateUsesTemplateThreshold(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.PutTemplate(context.Background(), &candidate.Template{
		ID:           "tpl-backend",
		Name:         "Backend",
		PassingScore: 80,
	}))
	c := f.createCandidate(t, &candidate.Candidate{
		Name:       "Ada",
		TemplateID: "tpl-backend",
		Signals:    candidate.Signals{TechnicalScore: signal(80)},
	})

	result, _, err := f.orch.Evaluate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, result.InterviewScore)
	assert.True(t, result.Passed)
	assert.Equal(t, scoring.VerdictHire, result.Verdict)
}

func TestEvaluateMissingTemplateFallsBackToDefault(t *testing.T) {
	f := newFixture(t)
	c := f.createCandidate(t, &candidate.Candidate{
		Name:       "Ada",
		TemplateID: "tpl-gone",
		Signals:    candidate.Signals{TechnicalScore: signal(75)},
	})

	result, _, err := f.orch.Evaluate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, result.Passed, "default threshold 70 applies when the template is missing")
}

func TestEvaluateLetterFailureSkipsEmail(t *testing.T) {
	f := newFixture(t)
	f.letters.err = errors.New("disk full")
	c := f.createCandidate(t, &candidate.Candidate{
		Name:    "Ada",
		Signals: candidate.Signals{TechnicalScore: signal(85)},
	})

	result, _, err := f.orch.Evaluate(context.Background(), c.ID)
	require.NoError(t, err, "notification failure must not fail the evaluation")
	assert.True(t, result.Passed)
	assert.Empty(t, f.mailer.offers)

	stored, _ := f.store.Get(context.Background(), c.ID)
	require.NotNil(t, stored.InterviewScore, "result stays persisted")
}

func TestEvaluateEmailFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp unreachable")
	c := f.createCandidate(t, &candidate.Candidate{
		Name:    "Ada",
		Signals: candidate.Signals{TechnicalScore: signal(85)},
	})

	_, _, err := f.orch.Evaluate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.letters.offers, "letter is still generated")
}

func TestRecalculateOverwritesScoresOnly(t *testing.T) {
	f := newFixture(t)
	c := f.createCandidate(t, &candidate.Candidate{
		Name:    "Ada",
		Signals: candidate.Signals{TechnicalScore: signal(60)},
	})

	_, _, err := f.orch.Evaluate(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.letters.rejections)

	stored, _ := f.store.Get(context.Background(), c.ID)
	require.Equal(t, candidate.HireStatusRejected, stored.AIHireStatus)

	// Unlike Evaluate, recalculation ignores the existing interview score
	// and re-runs the aggregation, but only the scores are rewritten.
	result, err := f.orch.Recalculate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, result.InterviewScore)

	after, _ := f.store.Get(context.Background(), c.ID)
	assert.Equal(t, result.InterviewScore, *after.InterviewScore)
	assert.Equal(t, candidate.StatusCompleted, after.Status, "status untouched")
	assert.Equal(t, candidate.HireStatusRejected, after.AIHireStatus, "hire status untouched")
	assert.Equal(t, 1, f.letters.offers+f.letters.rejections, "no new notifications")
}

func TestSubmitInterviewRecordsScores(t *testing.T) {
	f := newFixture(t)
	c := f.createCandidate(t, &candidate.Candidate{Name: "Ada"})

	session := &interview.Session{
		CandidateName: "Ada",
		Items: []interview.QA{
			{Question: interview.Question{Text: "Q1"}, Answer: interview.Answer{Text: "a"}},
			{Question: interview.Question{Text: "Q2"}, Answer: interview.Answer{Text: "b"}},
			{Question: interview.Question{Text: "Q3"}, Answer: interview.Answer{Text: "c"}},
		},
	}

	eval, err := f.orch.SubmitInterview(context.Background(), c.ID, session)
	require.NoError(t, err)
	assert.Equal(t, 1, f.evaluator.calls)
	assert.Equal(t, []int{8, 6, 7}, eval.AnswerScores())

	stored, _ := f.store.Get(context.Background(), c.ID)
	assert.True(t, stored.InterviewCompleted)
	assert.Equal(t, candidate.StatusInterview, stored.Status)
	assert.Equal(t, []int{8, 6, 7}, stored.AnswerScores)
}

func TestSubmitInterviewUnknownCandidate(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.SubmitInterview(context.Background(), "missing", &interview.Session{})
	assert.ErrorIs(t, err, candidate.ErrNotFound)
	assert.Equal(t, 0, f.evaluator.calls)
}

func TestProcessPendingEvaluatesAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		c := f.createCandidate(t, &candidate.Candidate{Name: name})
		_, err := f.store.ApplyInterview(ctx, c.ID, candidate.InterviewUpdate{AnswerScores: []int{8}})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	report, err := f.orch.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Pending)
	assert.Equal(t, 3, report.Evaluated)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Errors)

	for _, id := range ids {
		stored, _ := f.store.Get(ctx, id)
		require.NotNil(t, stored.InterviewScore)
		assert.Equal(t, 80, *stored.InterviewScore)
	}
}

func TestProcessPendingIsolatesFailures(t *testing.T) {
	flaky := &flakyStore{}
	f := newFixture(t, func(d *Deps) {
		flaky.Store = d.Store
		d.Store = flaky
	})
	ctx := context.Background()

	good1 := f.createCandidate(t, &candidate.Candidate{Name: "Good1"})
	bad := f.createCandidate(t, &candidate.Candidate{Name: "Bad"})
	good2 := f.createCandidate(t, &candidate.Candidate{Name: "Good2"})
	flaky.failID = bad.ID

	for _, id := range []string{good1.ID, bad.ID, good2.ID} {
		_, err := f.store.ApplyInterview(ctx, id, candidate.InterviewUpdate{AnswerScores: []int{7}})
		require.NoError(t, err)
	}

	report, err := f.orch.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Pending)
	assert.Equal(t, 2, report.Evaluated)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, bad.ID, report.Errors[0].CandidateID)

	for _, id := range []string{good1.ID, good2.ID} {
		stored, _ := f.store.Get(ctx, id)
		require.NotNil(t, stored.InterviewScore, "failure on one candidate must not block others")
	}
}

func TestProcessPendingRejectsOverlap(t *testing.T) {
	f := newFixture(t)

	f.orch.sweepMu.Lock()
	defer f.orch.sweepMu.Unlock()

	_, err := f.orch.ProcessPending(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
}

func TestProcessPendingHonorsCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	c := f.createCandidate(t, &candidate.Candidate{Name: "A"})
	_, err := f.store.ApplyInterview(context.Background(), c.ID, candidate.InterviewUpdate{AnswerScores: []int{7}})
	require.NoError(t, err)

	cancel()

	report, err := f.orch.ProcessPending(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Evaluated)
}
