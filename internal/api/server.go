package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hiresage/hiresage/internal/candidate"
	"github.com/hiresage/hiresage/internal/interview"
	"github.com/hiresage/hiresage/internal/orchestrator"
	"github.com/hiresage/hiresage/internal/scoring"
)

// Server exposes the pipeline's operations over HTTP. It owns no business
// logic: every handler delegates to the store or the orchestrator.
type Server struct {
	store  candidate.Store
	orch   *orchestrator.Orchestrator
	logger *zap.Logger
}

func NewServer(store candidate.Store, orch *orchestrator.Orchestrator, logger *zap.Logger) *Server {
	return &Server{store: store, orch: orch, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/candidates", func(r chi.Router) {
			r.Post("/", s.createCandidate)
			r.Get("/{id}", s.getCandidate)
			r.Post("/{id}/interview", s.submitInterview)
			r.Post("/{id}/evaluate", s.evaluateCandidate)
			r.Post("/{id}/recalculate", s.recalculateCandidate)
		})
		r.Post("/evaluations/process", s.processPending)
	})

	return r
}

func (s *Server) createCandidate(w http.ResponseWriter, r *http.Request) {
	var c candidate.Candidate
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid candidate payload")
		return
	}

	created, err := s.store.Create(r.Context(), &c)
	if err != nil {
		s.serveStoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.serveStoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) submitInterview(w http.ResponseWriter, r *http.Request) {
	var session interview.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid session payload")
		return
	}

	eval, err := s.orch.SubmitInterview(r.Context(), chi.URLParam(r, "id"), &session)
	if err != nil {
		s.serveStoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, eval)
}

type evaluateResponse struct {
	Evaluation *scoring.Result `json:"evaluation,omitempty"`
	Skipped    bool            `json:"skipped"`
}

func (s *Server) evaluateCandidate(w http.ResponseWriter, r *http.Request) {
	result, skipped, err := s.orch.Evaluate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.serveStoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, evaluateResponse{Evaluation: result, Skipped: skipped})
}

func (s *Server) recalculateCandidate(w http.ResponseWriter, r *http.Request) {
	result, err := s.orch.Recalculate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.serveStoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, evaluateResponse{Evaluation: result})
}

func (s *Server) processPending(w http.ResponseWriter, r *http.Request) {
	report, err := s.orch.ProcessPending(r.Context())
	if err != nil {
		if errors.Is(err, orchestrator.ErrSweepInProgress) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.serveStoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) serveStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, candidate.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "candidate not found")
		return
	}

	s.logger.Error("request failed", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("writing response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
