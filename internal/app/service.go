// Package service wires the registries and the score ledger into the
// operations the presentation layer drives: validate, mutate, persist,
// refresh.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/avalia/internal/adapters/export"
	"github.com/okian/avalia/internal/adapters/repository"
	"github.com/okian/avalia/internal/config"
	"github.com/okian/avalia/internal/domain/ledger"
	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/internal/domain/registry"
	"github.com/okian/avalia/pkg/logger"
	"github.com/okian/avalia/pkg/metrics"
)

// Service owns one instance of each store. All methods serialize on mu, so
// the stores only ever see one caller at a time.
type Service struct {
	mu sync.Mutex

	evaluatorsFile string
	projectsFile   string
	scoresFile     string
	linksFile      string

	evaluators *registry.Evaluators
	projects   *registry.Projects
	scores     *ledger.Ledger

	view    ledger.View
	session string

	logger logger.Logger
}

// New constructs a Service with empty stores. Call Start to load them.
func New(opts ...Option) *Service {
	s := &Service{
		evaluatorsFile: config.DefaultEvaluatorsFile,
		projectsFile:   config.DefaultProjectsFile,
		scoresFile:     config.DefaultScoresFile,
		linksFile:      config.DefaultLinksFile,
		view:           ledger.AdminView{},
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.evaluators = registry.NewEvaluators(s.evaluatorsFile, registry.WithLogger(s.logger))
	s.projects = registry.NewProjects(s.projectsFile, registry.WithLogger(s.logger))
	s.scores = ledger.New(s.scoresFile, s.projects, ledger.WithLogger(s.logger))
	s.logger = s.logger.Named("service")
	return s
}

// Start loads every store. A store that fails to load keeps its previous
// contents; the failures are returned joined and the others still load.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.loadAll(ctx)
	s.logger.Info(ctx, "stores loaded",
		logger.Int("evaluators", s.evaluators.Len()),
		logger.Int("projects", s.projects.Len()),
		logger.Int("scores", s.scores.Len()))
	return err
}

// Reload re-reads every store and, in evaluator mode, the link file.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.loadAll(ctx)
	if ev, ok := s.view.(ledger.EvaluatorView); ok {
		if lerr := s.refreshLinks(ctx, ev); lerr != nil {
			err = errors.Join(err, lerr)
		}
	}
	return err
}

func (s *Service) loadAll(ctx context.Context) error {
	return errors.Join(
		s.evaluators.Load(ctx),
		s.projects.Load(ctx),
		s.scores.Load(ctx),
	)
}

// persist saves after a mutation. The in-memory change is kept either way.
func (s *Service) persist(ctx context.Context, store string, save func(context.Context) error) error {
	if err := save(ctx); err != nil {
		s.logger.Error(ctx, "mutation applied but not persisted",
			logger.String("store", store), logger.Error(err))
		return err
	}
	return nil
}

// Evaluators

// EvaluatorList is the evaluator screen contents.
type EvaluatorList struct {
	Columns []string          `json:"columns"`
	Rows    []model.Evaluator `json:"rows"`
	Count   int               `json:"count"`
	Total   int               `json:"total"`
	Label   string            `json:"label"`
}

// ListEvaluators applies the filter and returns the visible evaluators
// with passwords blanked.
func (s *Service) ListEvaluators(name, category string) EvaluatorList {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluators.SetFilter(name, category)
	rows := s.evaluators.Visible()
	for i := range rows {
		rows[i].Password = ""
	}
	return EvaluatorList{
		Columns: append([]string(nil), registry.EvaluatorColumns...),
		Rows:    rows,
		Count:   s.evaluators.VisibleCount(),
		Total:   s.evaluators.Len(),
		Label:   s.evaluators.CountLabel(),
	}
}

// GetEvaluator returns one evaluator by id.
func (s *Service) GetEvaluator(id int) (model.Evaluator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _, err := s.evaluators.FindByID(id)
	return e, err
}

// AddEvaluator validates, appends and persists e.
func (s *Service) AddEvaluator(ctx context.Context, e model.Evaluator) (model.Evaluator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.evaluators.Add(ctx, e)
	if err != nil {
		return model.Evaluator{}, err
	}
	return saved, s.persist(ctx, repository.StoreEvaluators, s.evaluators.Save)
}

// UpdateEvaluator validates e and overwrites the evaluator with id. An
// empty password keeps the stored one.
func (s *Service) UpdateEvaluator(ctx context.Context, id int, e model.Evaluator) (model.Evaluator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, idx, err := s.evaluators.FindByID(id)
	if err != nil {
		return model.Evaluator{}, err
	}
	if e.Password == "" {
		e.Password = current.Password
	}
	saved, err := s.evaluators.Update(ctx, idx, e)
	if err != nil {
		return model.Evaluator{}, err
	}
	return saved, s.persist(ctx, repository.StoreEvaluators, s.evaluators.Save)
}

// RemoveEvaluator deletes the evaluator with id.
func (s *Service) RemoveEvaluator(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx, err := s.evaluators.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.evaluators.Remove(idx); err != nil {
		return err
	}
	s.logger.Info(ctx, "evaluator removed", logger.Int("id", id))
	return s.persist(ctx, repository.StoreEvaluators, s.evaluators.Save)
}

// Projects

// ProjectList is the project screen contents.
type ProjectList struct {
	Columns []string        `json:"columns"`
	Rows    []model.Project `json:"rows"`
	Count   int             `json:"count"`
	Total   int             `json:"total"`
	Label   string          `json:"label"`
}

// ListProjects applies the filter and returns the visible projects.
func (s *Service) ListProjects(name, category string) ProjectList {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects.SetFilter(name, category)
	return ProjectList{
		Columns: append([]string(nil), registry.ProjectColumns...),
		Rows:    s.projects.Visible(),
		Count:   s.projects.VisibleCount(),
		Total:   s.projects.Len(),
		Label:   s.projects.CountLabel(),
	}
}

// GetProject returns one project by id.
func (s *Service) GetProject(id int) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, err := s.projects.FindByID(id)
	return p, err
}

// AddProject validates, appends and persists p.
func (s *Service) AddProject(ctx context.Context, p model.Project) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.projects.Add(ctx, p)
	if err != nil {
		return model.Project{}, err
	}
	return saved, s.persist(ctx, repository.StoreProjects, s.projects.Save)
}

// UpdateProject validates p and overwrites the editable fields of the
// project with id.
func (s *Service) UpdateProject(ctx context.Context, id int, p model.Project) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx, err := s.projects.FindByID(id)
	if err != nil {
		return model.Project{}, err
	}
	saved, err := s.projects.Update(ctx, idx, p)
	if err != nil {
		return model.Project{}, err
	}
	return saved, s.persist(ctx, repository.StoreProjects, s.projects.Save)
}

// RemoveProject deletes the project with id. Scores pointing at it are
// kept and render as not found.
func (s *Service) RemoveProject(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx, err := s.projects.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.projects.Remove(idx); err != nil {
		return err
	}
	s.logger.Info(ctx, "project removed", logger.Int("id", id))
	return s.persist(ctx, repository.StoreProjects, s.projects.Save)
}

// Export

// Export writes entity as CSV to w.
func (s *Service) Export(ctx context.Context, entity string, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.exportLocked(ctx, entity, w)
	if err != nil {
		metrics.RecordExportError(entity)
		return err
	}
	metrics.RecordExport(entity)
	return nil
}

// ExportToFile writes entity as CSV to path.
func (s *Service) ExportToFile(ctx context.Context, entity, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return export.ToFile(ctx, path, entity, s.logger, func(w io.Writer) error {
		return s.exportLocked(ctx, entity, w)
	})
}

func (s *Service) exportLocked(ctx context.Context, entity string, w io.Writer) error {
	switch entity {
	case export.EntityEvaluators:
		return export.WriteEvaluators(w, s.evaluators.All())
	case export.EntityProjects:
		return export.WriteProjects(w, s.projects.All())
	case export.EntityScores:
		return export.WriteScores(w, s.scores.ListForExport(ctx))
	default:
		return fmt.Errorf("%w: unknown entity %q", export.ErrExport, entity)
	}
}

// Stats

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"evaluators":        s.evaluators.Len(),
		"evaluatorsVisible": s.evaluators.VisibleCount(),
		"projects":          s.projects.Len(),
		"projectsVisible":   s.projects.VisibleCount(),
		"scores":            s.scores.Len(),
		"mode":              s.view.Mode(),
		"files": map[string]string{
			"evaluators": s.evaluatorsFile,
			"projects":   s.projectsFile,
			"scores":     s.scoresFile,
			"links":      s.linksFile,
		},
	}
	if ev, ok := s.view.(ledger.EvaluatorView); ok {
		stats["session"] = s.session
		stats["linkedProjects"] = len(ev.Linked)
	}

	metrics.UpdateStoreRecords(repository.StoreEvaluators, s.evaluators.Len())
	metrics.UpdateStoreRecords(repository.StoreProjects, s.projects.Len())
	metrics.UpdateStoreRecords(repository.StoreScores, s.scores.Len())
	return stats
}

func newSessionID() string { return uuid.NewString() }
