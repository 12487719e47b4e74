package api

import (
	"net/http"

	"github.com/okian/avalia/internal/domain/model"
)

type categoriesResponse struct {
	FilterOptions []string            `json:"filterOptions"`
	Areas         map[string][]string `json:"areas"`
}

// handleCategories serves the choices behind the category combos.
func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	resp := categoriesResponse{FilterOptions: model.FilterOptions(), Areas: make(map[string][]string, len(model.Kinds))}
	for _, k := range model.Kinds {
		resp.Areas[k] = model.Areas(k)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListEvaluators(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.deps.ListEvaluators(q.Get("name"), q.Get("category")))
}

func (s *Server) handleGetEvaluator(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.deps.GetEvaluator(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.Password = ""
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleAddEvaluator(w http.ResponseWriter, r *http.Request) {
	var in model.Evaluator
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.deps.AddEvaluator(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.Password = ""
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEvaluator(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in model.Evaluator
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.deps.UpdateEvaluator(r.Context(), id, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.Password = ""
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleRemoveEvaluator(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.RemoveEvaluator(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.deps.ListProjects(q.Get("name"), q.Get("category")))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.deps.GetProject(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	var in model.Project
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.deps.AddProject(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in model.Project
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.deps.UpdateProject(r.Context(), id, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemoveProject(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.RemoveProject(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
