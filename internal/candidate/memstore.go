package candidate

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store implementation. Records are copied on every
// read and write so callers never share memory with the store.
type MemStore struct {
	mu         sync.RWMutex
	candidates map[string]*Candidate
	templates  map[string]*Template
}

func NewMemStore() *MemStore {
	return &MemStore{
		candidates: make(map[string]*Candidate),
		templates:  make(map[string]*Template),
	}
}

func (s *MemStore) Create(_ context.Context, c *Candidate) (*Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneCandidate(c)
	if strings.TrimSpace(stored.ID) == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = StatusPending
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.candidates[stored.ID] = stored
	return cloneCandidate(stored), nil
}

func (s *MemStore) Get(_ context.Context, id string) (*Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCandidate(c), nil
}

func (s *MemStore) ApplyEvaluation(_ context.Context, id string, upd EvaluationUpdate) (*Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return nil, ErrNotFound
	}

	score := upd.InterviewScore
	growth := upd.GrowthPotential
	retention := upd.RetentionScore
	evaluatedAt := upd.EvaluatedAt

	c.InterviewScore = &score
	c.GrowthPotential = &growth
	c.RetentionScore = &retention
	c.InterviewCompleted = upd.InterviewCompleted
	c.Status = upd.Status
	c.AIHireStatus = upd.AIHireStatus
	c.EvaluatedAt = &evaluatedAt
	c.UpdatedAt = time.Now()

	return cloneCandidate(c), nil
}

func (s *MemStore) ApplyScores(_ context.Context, id string, upd ScoresUpdate) (*Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return nil, ErrNotFound
	}

	score := upd.InterviewScore
	growth := upd.GrowthPotential
	retention := upd.RetentionScore
	evaluatedAt := upd.EvaluatedAt

	c.InterviewScore = &score
	c.GrowthPotential = &growth
	c.RetentionScore = &retention
	c.EvaluatedAt = &evaluatedAt
	c.UpdatedAt = time.Now()

	return cloneCandidate(c), nil
}

func (s *MemStore) ApplyInterview(_ context.Context, id string, upd InterviewUpdate) (*Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return nil, ErrNotFound
	}

	c.AnswerScores = append([]int(nil), upd.AnswerScores...)
	c.InterviewCompleted = true
	c.Status = StatusInterview
	c.UpdatedAt = time.Now()

	return cloneCandidate(c), nil
}

// ListPendingEvaluation returns candidates with a completed interview and no
// interview score yet, ordered by creation time for a stable sweep order.
func (s *MemStore) ListPendingEvaluation(_ context.Context) ([]*Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make([]*Candidate, 0)
	for _, c := range s.candidates {
		if c.InterviewCompleted && c.InterviewScore == nil {
			pending = append(pending, cloneCandidate(c))
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	return pending, nil
}

func (s *MemStore) PutTemplate(_ context.Context, t *Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *t
	s.templates[t.ID] = &clone
	return nil
}

func (s *MemStore) GetTemplate(_ context.Context, id string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func cloneCandidate(c *Candidate) *Candidate {
	clone := *c
	clone.AnswerScores = append([]int(nil), c.AnswerScores...)
	clone.Signals = cloneSignals(c.Signals)
	if c.InterviewScore != nil {
		v := *c.InterviewScore
		clone.InterviewScore = &v
	}
	if c.GrowthPotential != nil {
		v := *c.GrowthPotential
		clone.GrowthPotential = &v
	}
	if c.RetentionScore != nil {
		v := *c.RetentionScore
		clone.RetentionScore = &v
	}
	if c.EvaluatedAt != nil {
		v := *c.EvaluatedAt
		clone.EvaluatedAt = &v
	}
	return &clone
}

func cloneSignals(s Signals) Signals {
	clone := s
	for _, field := range []**float64{
		&clone.TechnicalScore, &clone.EQScore, &clone.BehaviorScore, &clone.HiringProbabilityScore,
		&clone.LearningVelocity, &clone.Openness, &clone.Conscientiousness, &clone.Adaptability,
		&clone.EmotionalStability, &clone.TeamCollaboration, &clone.CultureFitScore, &clone.StressTolerance,
	} {
		if *field != nil {
			v := **field
			*field = &v
		}
	}
	return clone
}
