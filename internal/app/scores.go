package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/avalia/internal/adapters/repository"
	"github.com/okian/avalia/internal/domain/ledger"
	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/pkg/logger"
	"github.com/okian/avalia/pkg/metrics"
)

// SetEvaluatorContext switches the score screen to the evaluator view for
// cpf, reading the link file. An empty cpf returns to admin mode. When the
// link file cannot be read the previous mode is kept. A missing name or
// course is taken from the registered evaluator with that CPF.
func (s *Service) SetEvaluatorContext(ctx context.Context, cpf, name, course string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		s.clearContextLocked(ctx)
		return nil
	}

	links, err := repository.LoadLinks(ctx, s.linksFile, s.logger)
	if err != nil {
		s.logger.Error(ctx, "cannot read link file", logger.String("path", s.linksFile), logger.Error(err))
		return err
	}

	if e, ok := s.evaluators.FindByCPF(cpf); ok {
		if strings.TrimSpace(name) == "" {
			name = e.Name
		}
		if strings.TrimSpace(course) == "" {
			_, course = model.ParseCategory(e.Category)
		}
	}

	s.view = ledger.NewView(cpf, name, course, repository.ProjectsFor(links, cpf))
	s.session = newSessionID()
	metrics.SetEvaluatorMode(true)
	s.logger.Info(ctx, "evaluator mode",
		logger.String("session", s.session),
		logger.String("cpf", cpf),
		logger.Int("linked", len(s.view.(ledger.EvaluatorView).Linked)))
	return nil
}

// ClearEvaluatorContext returns the score screen to admin mode.
func (s *Service) ClearEvaluatorContext(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearContextLocked(ctx)
}

func (s *Service) clearContextLocked(ctx context.Context) {
	if _, ok := s.view.(ledger.EvaluatorView); ok {
		s.logger.Info(ctx, "admin mode", logger.String("session", s.session))
	}
	s.view = ledger.AdminView{}
	s.session = ""
	metrics.SetEvaluatorMode(false)
}

// View returns the current score screen view.
func (s *Service) View() ledger.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Service) refreshLinks(ctx context.Context, ev ledger.EvaluatorView) error {
	links, err := repository.LoadLinks(ctx, s.linksFile, s.logger)
	if err != nil {
		return err
	}
	ev.Linked = repository.ProjectsFor(links, ev.CPF)
	s.view = ev
	return nil
}

// ScoreList is the score screen contents. Exactly one of Admin and
// Evaluator is set, matching Mode.
type ScoreList struct {
	Mode      string                `json:"mode"`
	Columns   []string              `json:"columns"`
	Admin     []ledger.AdminRow     `json:"admin,omitempty"`
	Evaluator []ledger.EvaluatorRow `json:"evaluator,omitempty"`
	Count     int                   `json:"count"`
	Label     string                `json:"label"`
}

// ListScores lists the ledger through the current view. In evaluator mode
// the link file is re-read first.
func (s *Service) ListScores(ctx context.Context) (ScoreList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := ScoreList{Mode: s.view.Mode(), Columns: s.view.Columns()}
	switch v := s.view.(type) {
	case ledger.EvaluatorView:
		if err := s.refreshLinks(ctx, v); err != nil {
			return ScoreList{}, err
		}
		v = s.view.(ledger.EvaluatorView)
		out.Evaluator = s.scores.ListForEvaluator(ctx, v.CPF, v.Linked)
		out.Count = len(out.Evaluator)
	default:
		out.Admin = s.scores.ListForAdmin(ctx)
		out.Count = len(out.Admin)
	}
	out.Label = s.view.CountLabel(out.Count)
	return out, nil
}

// GetScore returns one score by id.
func (s *Service) GetScore(id int) (model.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scores.FindByID(id)
	if !ok {
		return model.Score{}, fmt.Errorf("%w: id %d", ledger.ErrNotFound, id)
	}
	return sc, nil
}

func (s *Service) evaluatorView() (ledger.EvaluatorView, error) {
	ev, ok := s.view.(ledger.EvaluatorView)
	if !ok {
		return ledger.EvaluatorView{}, fmt.Errorf("%w: evaluator context required", ErrWrongMode)
	}
	return ev, nil
}

func (s *Service) requireAdmin() error {
	if _, ok := s.view.(ledger.AdminView); !ok {
		return fmt.Errorf("%w: admin mode required", ErrWrongMode)
	}
	return nil
}

// checkLinked requires projectID to be linked to the evaluator and to exist.
func (s *Service) checkLinked(ev ledger.EvaluatorView, projectID int) error {
	if !slices.Contains(ev.Linked, projectID) {
		return fmt.Errorf("%w: project %d", ErrNotLinked, projectID)
	}
	if _, ok := s.projects.Lookup(projectID); !ok {
		return fmt.Errorf("%w: project %d", ErrNotLinked, projectID)
	}
	return nil
}

// InitialScore is the value the evaluator score prompt starts from: the
// evaluator's current score for projectID, or the default.
func (s *Service) InitialScore(projectID int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev, ok := s.view.(ledger.EvaluatorView); ok {
		if sc, found := s.scores.FindByEvaluatorAndProject(projectID, ev.CPF); found {
			return sc.FinalScore
		}
	}
	return ledger.DefaultScore
}

// ScoreProject records the current evaluator's score for a linked project,
// creating or updating it.
func (s *Service) ScoreProject(ctx context.Context, projectID int, value float64) (model.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.evaluatorView()
	if err != nil {
		return model.Score{}, err
	}
	if err := s.checkLinked(ev, projectID); err != nil {
		return model.Score{}, err
	}
	sc, err := s.scores.UpsertForEvaluator(ctx, projectID, ev.CPF, ev.Name, value)
	if err != nil {
		return model.Score{}, err
	}
	return sc, s.persist(ctx, repository.StoreScores, s.scores.Save)
}

// RemoveMyScore deletes the current evaluator's score for projectID.
func (s *Service) RemoveMyScore(ctx context.Context, projectID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.evaluatorView()
	if err != nil {
		return err
	}
	if err := s.scores.RemoveForEvaluator(ctx, projectID, ev.CPF); err != nil {
		return err
	}
	return s.persist(ctx, repository.StoreScores, s.scores.Save)
}

// ScoreInput carries the fields of the admin score prompt.
type ScoreInput struct {
	ProjectID     int     `json:"projectId"`
	EvaluatorCPF  string  `json:"evaluatorCpf"`
	EvaluatorName string  `json:"evaluatorName"`
	FinalScore    float64 `json:"finalScore"`
}

// AddScore creates a score in admin mode. No link is required.
func (s *Service) AddScore(ctx context.Context, in ScoreInput) (model.Score, error) {
	return s.writeAdminScore(ctx, 0, in)
}

// UpdateScore overwrites the score with id in admin mode.
func (s *Service) UpdateScore(ctx context.Context, id int, in ScoreInput) (model.Score, error) {
	if id <= 0 {
		return model.Score{}, fmt.Errorf("%w: id %d", ledger.ErrNotFound, id)
	}
	return s.writeAdminScore(ctx, id, in)
}

func (s *Service) writeAdminScore(ctx context.Context, id int, in ScoreInput) (model.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdmin(); err != nil {
		return model.Score{}, err
	}
	sc, err := s.scores.UpsertAdmin(ctx, id, in.ProjectID, in.EvaluatorCPF, in.EvaluatorName, in.FinalScore)
	if err != nil {
		return model.Score{}, err
	}
	return sc, s.persist(ctx, repository.StoreScores, s.scores.Save)
}

// RemoveScore deletes the score with id in admin mode.
func (s *Service) RemoveScore(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.scores.Remove(ctx, id); err != nil {
		return err
	}
	return s.persist(ctx, repository.StoreScores, s.scores.Save)
}
