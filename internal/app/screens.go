package service

import (
	"context"
	"fmt"

	"github.com/okian/avalia/internal/adapters/export"
	"github.com/okian/avalia/internal/domain/ledger"
	"github.com/okian/avalia/internal/domain/model"
)

// Dialog collects a validated record, starting from existing when editing.
// It returns false when the user cancels.
type Dialog[T any] interface {
	Open(ctx context.Context, existing *T) (T, bool)
}

// ScoreDialog collects score input. Fields is the admin prompt sequence;
// Value is the single evaluator prompt.
type ScoreDialog interface {
	Fields(ctx context.Context, initial ScoreInput) (ScoreInput, bool)
	Value(ctx context.Context, initial float64) (float64, bool)
}

// Prompter provides the blocking prompts of the presentation layer.
type Prompter interface {
	Confirm(ctx context.Context, message string) bool
	ChoosePath(ctx context.Context, suggested string) (string, bool)
	Inform(ctx context.Context, message string)
}

// Messages shown by the screen flows.
const (
	MsgSelectEvaluator        = "Selecione um avaliador."
	MsgSelectProject          = "Selecione um projeto."
	MsgSelectScoreToEdit      = "Selecione uma nota para editar."
	MsgSelectScoreToRemove    = "Selecione uma nota para remover."
	MsgSelectProjectToScore   = "Selecione um projeto para avaliar."
	MsgSelectProjectToUnscore = "Selecione um projeto para remover sua nota."
	MsgNoScoreYet             = "Este projeto ainda não possui uma nota sua."
	MsgConfirmRemoveScore     = "Remover nota selecionada?"
	MsgConfirmRemoveMyScore   = "Remover sua nota para este projeto?"
)

// EvaluatorRemovalMessage is the confirmation shown before deleting e.
func EvaluatorRemovalMessage(e model.Evaluator) string {
	return fmt.Sprintf("Avaliador encontrado:\n\nNome: %s\nÁrea/Categoria: %s\nCPF: %s\n\n"+
		"Esta ação não pode ser desfeita.\n\nDeseja realmente excluir?", e.Name, e.Category, e.CPF)
}

// ProjectRemovalMessage is the confirmation shown before deleting p.
func ProjectRemovalMessage(p model.Project) string {
	return fmt.Sprintf("Projeto encontrado:\n\nID: %d\nNome: %s\nResponsável: %s\n\n"+
		"Esta ação não pode ser desfeita.\n\nDeseja realmente excluir?", p.ID, p.Name, p.Responsible)
}

// Screens runs the dialog-driven flows of the three record screens on top
// of a Service. Rows are indices into the currently visible listing. A
// cancelled prompt returns nil and changes nothing.
type Screens struct {
	svc        *Service
	evaluators Dialog[model.Evaluator]
	projects   Dialog[model.Project]
	scores     ScoreDialog
	prompt     Prompter
}

// NewScreens binds the presentation collaborators to svc.
func NewScreens(svc *Service, evaluators Dialog[model.Evaluator], projects Dialog[model.Project], scores ScoreDialog, prompt Prompter) *Screens {
	return &Screens{svc: svc, evaluators: evaluators, projects: projects, scores: scores, prompt: prompt}
}

func (sc *Screens) noSelection(ctx context.Context, message string) error {
	sc.prompt.Inform(ctx, message)
	return ErrNoSelection
}

func (sc *Screens) exportTo(ctx context.Context, entity string) error {
	path, ok := sc.prompt.ChoosePath(ctx, export.SuggestedName(entity))
	if !ok || path == "" {
		return nil
	}
	return sc.svc.ExportToFile(ctx, entity, path)
}

// Evaluator screen

func (sc *Screens) visibleEvaluator(row int) (model.Evaluator, bool) {
	sc.svc.mu.Lock()
	defer sc.svc.mu.Unlock()

	idx, ok := sc.svc.evaluators.SourceIndex(row)
	if !ok {
		return model.Evaluator{}, false
	}
	return sc.svc.evaluators.Get(idx)
}

// NewEvaluator opens an empty dialog and stores the result.
func (sc *Screens) NewEvaluator(ctx context.Context) error {
	e, ok := sc.evaluators.Open(ctx, nil)
	if !ok {
		return nil
	}
	_, err := sc.svc.AddEvaluator(ctx, e)
	return err
}

// EditEvaluator opens the dialog on the evaluator at row.
func (sc *Screens) EditEvaluator(ctx context.Context, row int) error {
	current, ok := sc.visibleEvaluator(row)
	if !ok {
		return sc.noSelection(ctx, MsgSelectEvaluator)
	}
	e, ok := sc.evaluators.Open(ctx, &current)
	if !ok {
		return nil
	}
	_, err := sc.svc.UpdateEvaluator(ctx, current.ID, e)
	return err
}

// RemoveEvaluator deletes the evaluator at row after confirmation.
func (sc *Screens) RemoveEvaluator(ctx context.Context, row int) error {
	current, ok := sc.visibleEvaluator(row)
	if !ok {
		return sc.noSelection(ctx, MsgSelectEvaluator)
	}
	if !sc.prompt.Confirm(ctx, EvaluatorRemovalMessage(current)) {
		return nil
	}
	return sc.svc.RemoveEvaluator(ctx, current.ID)
}

// ExportEvaluators asks for a path and writes the evaluator CSV.
func (sc *Screens) ExportEvaluators(ctx context.Context) error {
	return sc.exportTo(ctx, export.EntityEvaluators)
}

// Project screen

func (sc *Screens) visibleProject(row int) (model.Project, bool) {
	sc.svc.mu.Lock()
	defer sc.svc.mu.Unlock()

	idx, ok := sc.svc.projects.SourceIndex(row)
	if !ok {
		return model.Project{}, false
	}
	return sc.svc.projects.Get(idx)
}

// NewProject opens an empty dialog and stores the result.
func (sc *Screens) NewProject(ctx context.Context) error {
	p, ok := sc.projects.Open(ctx, nil)
	if !ok {
		return nil
	}
	_, err := sc.svc.AddProject(ctx, p)
	return err
}

// EditProject opens the dialog on the project at row.
func (sc *Screens) EditProject(ctx context.Context, row int) error {
	current, ok := sc.visibleProject(row)
	if !ok {
		return sc.noSelection(ctx, MsgSelectProject)
	}
	p, ok := sc.projects.Open(ctx, &current)
	if !ok {
		return nil
	}
	_, err := sc.svc.UpdateProject(ctx, current.ID, p)
	return err
}

// RemoveProject deletes the project at row after confirmation.
func (sc *Screens) RemoveProject(ctx context.Context, row int) error {
	current, ok := sc.visibleProject(row)
	if !ok {
		return sc.noSelection(ctx, MsgSelectProject)
	}
	if !sc.prompt.Confirm(ctx, ProjectRemovalMessage(current)) {
		return nil
	}
	return sc.svc.RemoveProject(ctx, current.ID)
}

// ExportProjects asks for a path and writes the project CSV.
func (sc *Screens) ExportProjects(ctx context.Context) error {
	return sc.exportTo(ctx, export.EntityProjects)
}

// Score screen

// scoreRow resolves row in the current listing to a project id (evaluator
// mode) or a score id (admin mode).
func (sc *Screens) scoreRow(ctx context.Context, row int) (mode string, id int, ok bool, err error) {
	list, err := sc.svc.ListScores(ctx)
	if err != nil {
		return "", 0, false, err
	}
	if row < 0 || row >= list.Count {
		return list.Mode, 0, false, nil
	}
	if list.Mode == ledger.ModeEvaluator {
		return list.Mode, list.Evaluator[row].ProjectID, true, nil
	}
	return list.Mode, list.Admin[row].ScoreID, true, nil
}

// NewScore creates an admin score, or in evaluator mode scores the project
// at row.
func (sc *Screens) NewScore(ctx context.Context, row int) error {
	if sc.svc.View().Mode() == ledger.ModeEvaluator {
		return sc.scoreSelected(ctx, row)
	}
	in, ok := sc.scores.Fields(ctx, ScoreInput{ProjectID: 1, FinalScore: ledger.DefaultScore})
	if !ok {
		return nil
	}
	_, err := sc.svc.AddScore(ctx, in)
	return err
}

// EditScore edits the admin score at row, or in evaluator mode scores the
// project at row.
func (sc *Screens) EditScore(ctx context.Context, row int) error {
	if sc.svc.View().Mode() == ledger.ModeEvaluator {
		return sc.scoreSelected(ctx, row)
	}
	_, id, ok, err := sc.scoreRow(ctx, row)
	if err != nil {
		return err
	}
	if !ok {
		return sc.noSelection(ctx, MsgSelectScoreToEdit)
	}
	current, err := sc.svc.GetScore(id)
	if err != nil {
		return err
	}
	in, ok := sc.scores.Fields(ctx, ScoreInput{
		ProjectID:     current.ProjectID,
		EvaluatorCPF:  current.EvaluatorCPF,
		EvaluatorName: current.EvaluatorName,
		FinalScore:    current.FinalScore,
	})
	if !ok {
		return nil
	}
	_, err = sc.svc.UpdateScore(ctx, id, in)
	return err
}

func (sc *Screens) scoreSelected(ctx context.Context, row int) error {
	_, projectID, ok, err := sc.scoreRow(ctx, row)
	if err != nil {
		return err
	}
	if !ok {
		return sc.noSelection(ctx, MsgSelectProjectToScore)
	}
	value, ok := sc.scores.Value(ctx, sc.svc.InitialScore(projectID))
	if !ok {
		return nil
	}
	_, err = sc.svc.ScoreProject(ctx, projectID, value)
	return err
}

// RemoveScore deletes the score at row after confirmation. In evaluator
// mode it removes the evaluator's own score for the project at row.
func (sc *Screens) RemoveScore(ctx context.Context, row int) error {
	mode, id, ok, err := sc.scoreRow(ctx, row)
	if err != nil {
		return err
	}
	if mode == ledger.ModeEvaluator {
		if !ok {
			return sc.noSelection(ctx, MsgSelectProjectToUnscore)
		}
		ev, _ := sc.svc.View().(ledger.EvaluatorView)
		sc.svc.mu.Lock()
		_, has := sc.svc.scores.FindByEvaluatorAndProject(id, ev.CPF)
		sc.svc.mu.Unlock()
		if !has {
			sc.prompt.Inform(ctx, MsgNoScoreYet)
			return nil
		}
		if !sc.prompt.Confirm(ctx, MsgConfirmRemoveMyScore) {
			return nil
		}
		return sc.svc.RemoveMyScore(ctx, id)
	}

	if !ok {
		return sc.noSelection(ctx, MsgSelectScoreToRemove)
	}
	if !sc.prompt.Confirm(ctx, MsgConfirmRemoveScore) {
		return nil
	}
	return sc.svc.RemoveScore(ctx, id)
}

// ExportScores asks for a path and writes the joined score CSV.
func (sc *Screens) ExportScores(ctx context.Context) error {
	return sc.exportTo(ctx, export.EntityScores)
}
