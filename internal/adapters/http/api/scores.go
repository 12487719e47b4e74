package api

import (
	"net/http"

	service "github.com/okian/avalia/internal/app"
	"github.com/okian/avalia/internal/domain/ledger"
)

type scoreValue struct {
	FinalScore *float64 `json:"finalScore"`
}

type sessionRequest struct {
	CPF    string `json:"cpf"`
	Name   string `json:"name"`
	Course string `json:"course"`
}

type sessionResponse struct {
	Mode   string `json:"mode"`
	CPF    string `json:"cpf,omitempty"`
	Name   string `json:"name,omitempty"`
	Course string `json:"course,omitempty"`
	Linked []int  `json:"linked,omitempty"`
}

func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.ListScores(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddScore(w http.ResponseWriter, r *http.Request) {
	var in service.ScoreInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	sc, err := s.deps.AddScore(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in service.ScoreInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	sc, err := s.deps.UpdateScore(r.Context(), id, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleRemoveScore(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.RemoveScore(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScoreProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := intParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in scoreValue
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.FinalScore == nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	sc, err := s.deps.ScoreProject(r.Context(), projectID, *in.FinalScore)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleRemoveMyScore(w http.ResponseWriter, r *http.Request) {
	projectID, err := intParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.RemoveMyScore(r.Context(), projectID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionOf(v ledger.View) sessionResponse {
	resp := sessionResponse{Mode: v.Mode()}
	if ev, ok := v.(ledger.EvaluatorView); ok {
		resp.CPF, resp.Name, resp.Course, resp.Linked = ev.CPF, ev.Name, ev.Course, ev.Linked
	}
	return resp
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionOf(s.deps.View()))
}

func (s *Server) handleSetSession(w http.ResponseWriter, r *http.Request) {
	var in sessionRequest
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.SetEvaluatorContext(r.Context(), in.CPF, in.Name, in.Course); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionOf(s.deps.View()))
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	s.deps.ClearEvaluatorContext(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
