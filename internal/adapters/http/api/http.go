// Package api exposes the record screens over a local JSON/CSV HTTP surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/avalia/internal/adapters/export"
	"github.com/okian/avalia/internal/adapters/http/swagger"
	"github.com/okian/avalia/internal/adapters/repository"
	service "github.com/okian/avalia/internal/app"
	"github.com/okian/avalia/internal/domain/ledger"
	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/internal/domain/registry"
	"github.com/okian/avalia/internal/domain/validation"
	"github.com/okian/avalia/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider

	Reload(ctx context.Context) error

	ListEvaluators(name, category string) service.EvaluatorList
	GetEvaluator(id int) (model.Evaluator, error)
	AddEvaluator(ctx context.Context, e model.Evaluator) (model.Evaluator, error)
	UpdateEvaluator(ctx context.Context, id int, e model.Evaluator) (model.Evaluator, error)
	RemoveEvaluator(ctx context.Context, id int) error

	ListProjects(name, category string) service.ProjectList
	GetProject(id int) (model.Project, error)
	AddProject(ctx context.Context, p model.Project) (model.Project, error)
	UpdateProject(ctx context.Context, id int, p model.Project) (model.Project, error)
	RemoveProject(ctx context.Context, id int) error

	ListScores(ctx context.Context) (service.ScoreList, error)
	AddScore(ctx context.Context, in service.ScoreInput) (model.Score, error)
	UpdateScore(ctx context.Context, id int, in service.ScoreInput) (model.Score, error)
	RemoveScore(ctx context.Context, id int) error
	ScoreProject(ctx context.Context, projectID int, value float64) (model.Score, error)
	RemoveMyScore(ctx context.Context, projectID int) error

	SetEvaluatorContext(ctx context.Context, cpf, name, course string) error
	ClearEvaluatorContext(ctx context.Context)
	View() ledger.View

	Export(ctx context.Context, entity string, w io.Writer) error
}

// Server wires HTTP routes for the record API.
type Server struct {
	deps   Dependencies
	log    logger.Logger
	health *HealthHandler
	stats  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	return &Server{
		deps:   deps,
		log:    logger.OrNop(log).Named("http"),
		health: NewHealthHandler(),
		stats:  NewStatsHandler(deps),
	}
}

// Router builds the chi router with every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recoverer(s.log))

	r.Get("/healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.stats.HandleStats, "stats"))
	r.Post("/reload", MetricsMiddleware(s.handleReload, "reload"))
	r.Get("/categories", MetricsMiddleware(s.handleCategories, "categories"))
	swagger.Register(r)

	r.Route("/evaluators", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.handleListEvaluators, "evaluators"))
		r.Post("/", MetricsMiddleware(s.handleAddEvaluator, "evaluators"))
		r.Get("/export", MetricsMiddleware(s.exportHandler(export.EntityEvaluators), "evaluators_export"))
		r.Get("/{id}", MetricsMiddleware(s.handleGetEvaluator, "evaluator"))
		r.Put("/{id}", MetricsMiddleware(s.handleUpdateEvaluator, "evaluator"))
		r.Delete("/{id}", MetricsMiddleware(s.handleRemoveEvaluator, "evaluator"))
	})

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.handleListProjects, "projects"))
		r.Post("/", MetricsMiddleware(s.handleAddProject, "projects"))
		r.Get("/export", MetricsMiddleware(s.exportHandler(export.EntityProjects), "projects_export"))
		r.Get("/{id}", MetricsMiddleware(s.handleGetProject, "project"))
		r.Put("/{id}", MetricsMiddleware(s.handleUpdateProject, "project"))
		r.Delete("/{id}", MetricsMiddleware(s.handleRemoveProject, "project"))
	})

	r.Route("/scores", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.handleListScores, "scores"))
		r.Post("/", MetricsMiddleware(s.handleAddScore, "scores"))
		r.Get("/export", MetricsMiddleware(s.exportHandler(export.EntityScores), "scores_export"))
		r.Put("/mine/{projectID}", MetricsMiddleware(s.handleScoreProject, "scores_mine"))
		r.Delete("/mine/{projectID}", MetricsMiddleware(s.handleRemoveMyScore, "scores_mine"))
		r.Put("/{id}", MetricsMiddleware(s.handleUpdateScore, "score"))
		r.Delete("/{id}", MetricsMiddleware(s.handleRemoveScore, "score"))
	})

	r.Get("/session", MetricsMiddleware(s.handleGetSession, "session"))
	r.Put("/session", MetricsMiddleware(s.handleSetSession, "session"))
	r.Delete("/session", MetricsMiddleware(s.handleClearSession, "session"))

	return r
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Reload(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportHandler(entity string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := s.deps.Export(r.Context(), entity, &buf); err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.SuggestedName(entity)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

type errorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var fields validation.Errors
	if errors.As(err, &fields) {
		resp.Fields = fields
	}
	writeJSON(w, status, resp)
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusUnprocessableEntity, "invalid"
	case errors.Is(err, registry.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, service.ErrNoSelection):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrWrongMode):
		return http.StatusConflict, "wrong_mode"
	case errors.Is(err, service.ErrNotLinked):
		return http.StatusForbidden, "not_linked"
	case errors.Is(err, repository.ErrIO), errors.Is(err, export.ErrExport):
		return http.StatusInternalServerError, "io"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	writeError(w, status, code, err)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
	}
	return n, nil
}
