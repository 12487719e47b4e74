// Package ledger stores evaluator scores and joins them against projects.
//
// Every write copies the referenced project's formId onto the score; the
// copy is allowed to go stale when the project changes afterwards.
package ledger

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/avalia/internal/adapters/repository"
	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/internal/domain/validation"
	"github.com/okian/avalia/pkg/logger"
	"github.com/okian/avalia/pkg/metrics"
)

// Score bounds enforced on every write. Loaded values are not clamped.
const (
	MinScore     = 0.0
	MaxScore     = 10.0
	DefaultScore = 7.0
)

// MaxProjectID is the highest project id the admin prompt accepts.
const MaxProjectID = 999999

// MsgScoreOutOfRange is shown when a score falls outside [MinScore, MaxScore].
const MsgScoreOutOfRange = "Nota final deve estar entre 0 e 10"

// Score write modes, used as metric labels.
const (
	ModeAdmin     = "admin"
	ModeEvaluator = "evaluator"
)

// ProjectLookup resolves the project fields a score joins against.
type ProjectLookup interface {
	Lookup(id int) (model.ProjectSummary, bool)
}

// Ledger is the score table plus its project join.
type Ledger struct {
	table    *repository.Table
	path     string
	projects ProjectLookup
	log      logger.Logger
}

// New returns an empty ledger backed by path.
func New(path string, projects ProjectLookup, opts ...Option) *Ledger {
	g := &Ledger{
		path:     path,
		projects: projects,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.table = repository.NewTable(repository.ScoreSchema(), repository.WithLogger(g.log))
	g.log = g.log.Named(repository.StoreScores)
	return g
}

// Load replaces the scores with the file contents.
func (g *Ledger) Load(ctx context.Context) error { return g.table.Load(ctx, g.path) }

// Save writes every score to the backing file.
func (g *Ledger) Save(ctx context.Context) error { return g.table.Save(ctx, g.path) }

// Path returns the backing file.
func (g *Ledger) Path() string { return g.path }

// Len returns the number of scores.
func (g *Ledger) Len() int { return g.table.Len() }

// NextID returns the id the next score will receive.
func (g *Ledger) NextID() int { return g.table.NextID() }

// ValidScore reports whether v is a finite score within bounds.
func ValidScore(v float64) bool {
	return !math.IsNaN(v) && v >= MinScore && v <= MaxScore
}

// FormatScore renders a score for display with two decimals.
func FormatScore(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func checkScore(v float64) error {
	var errs validation.Errors
	errs.Check(ValidScore(v), "finalScore", MsgScoreOutOfRange)
	if len(errs) > 0 {
		recordFailures(errs)
	}
	return errs.Err()
}

func recordFailures(errs validation.Errors) {
	for _, fe := range errs {
		metrics.RecordValidationFailure("score", fe.Field)
	}
}

// All returns every score in file order.
func (g *Ledger) All() []model.Score {
	out := make([]model.Score, g.table.Len())
	for i := range out {
		out[i] = g.at(i)
	}
	return out
}

// FindByID returns the score with id.
func (g *Ledger) FindByID(id int) (model.Score, bool) {
	i := g.table.IndexOf(id)
	if i < 0 {
		return model.Score{}, false
	}
	return g.at(i), true
}

// FindByEvaluatorAndProject returns the first score cpf gave projectID.
func (g *Ledger) FindByEvaluatorAndProject(projectID int, cpf string) (model.Score, bool) {
	i := g.indexFor(projectID, cpf)
	if i < 0 {
		return model.Score{}, false
	}
	return g.at(i), true
}

func (g *Ledger) indexFor(projectID int, cpf string) int {
	cpf = strings.TrimSpace(cpf)
	for i := 0; i < g.table.Len(); i++ {
		if repository.Atoi(g.table.Field(i, repository.ScoreProjectID)) == projectID &&
			strings.TrimSpace(g.table.Field(i, repository.ScoreEvaluatorCPF)) == cpf {
			return i
		}
	}
	return -1
}

// formIDFor returns the project's current formId, or 0 when it is gone.
func (g *Ledger) formIDFor(projectID int) int {
	if g.projects == nil {
		return 0
	}
	p, ok := g.projects.Lookup(projectID)
	if !ok {
		return 0
	}
	return p.FormID
}

// UpsertForEvaluator creates or updates the single score cpf gives
// projectID. An existing score keeps its id and evaluator name.
func (g *Ledger) UpsertForEvaluator(ctx context.Context, projectID int, cpf, name string, score float64) (model.Score, error) {
	if err := checkScore(score); err != nil {
		return model.Score{}, err
	}
	cpf = strings.TrimSpace(cpf)
	formID := strconv.Itoa(g.formIDFor(projectID))

	i := g.indexFor(projectID, cpf)
	if i < 0 {
		id := g.table.Append(strconv.Itoa(projectID), cpf, strings.TrimSpace(name), formatStored(score), formID)
		i = g.table.IndexOf(id)
	} else {
		if err := g.table.SetField(i, repository.ScoreFinal, formatStored(score)); err != nil {
			return model.Score{}, err
		}
		if err := g.table.SetField(i, repository.ScoreFormID, formID); err != nil {
			return model.Score{}, err
		}
	}

	s := g.at(i)
	metrics.RecordScoreWritten(ModeEvaluator)
	g.log.Info(ctx, "score written",
		logger.String("mode", ModeEvaluator),
		logger.Int("id", s.ID),
		logger.Int("project_id", projectID),
		logger.String("cpf", cpf),
		logger.Int("form_id", s.FormID))
	return s, nil
}

// UpsertAdmin writes a score without checking links. A scoreID of 0
// creates a new score; any other id must exist and is overwritten.
// Duplicate (project, cpf) pairs are allowed here.
func (g *Ledger) UpsertAdmin(ctx context.Context, scoreID, projectID int, cpf, name string, score float64) (model.Score, error) {
	var errs validation.Errors
	errs.Check(projectID >= 1 && projectID <= MaxProjectID, "projectId", "ID do projeto inválido")
	errs.Check(ValidScore(score), "finalScore", MsgScoreOutOfRange)
	if len(errs) > 0 {
		recordFailures(errs)
		return model.Score{}, errs
	}

	fields := []string{
		strconv.Itoa(projectID),
		strings.TrimSpace(cpf),
		strings.TrimSpace(name),
		formatStored(score),
		strconv.Itoa(g.formIDFor(projectID)),
	}

	var i int
	if scoreID == 0 {
		i = g.table.IndexOf(g.table.Append(fields...))
	} else {
		i = g.table.IndexOf(scoreID)
		if i < 0 {
			return model.Score{}, fmt.Errorf("%w: id %d", ErrNotFound, scoreID)
		}
		if err := g.table.UpdateAt(i, fields...); err != nil {
			return model.Score{}, err
		}
	}

	s := g.at(i)
	metrics.RecordScoreWritten(ModeAdmin)
	g.log.Info(ctx, "score written",
		logger.String("mode", ModeAdmin),
		logger.Int("id", s.ID),
		logger.Int("project_id", projectID),
		logger.Int("form_id", s.FormID))
	return s, nil
}

// Remove deletes the score with id.
func (g *Ledger) Remove(ctx context.Context, scoreID int) error {
	i := g.table.IndexOf(scoreID)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, scoreID)
	}
	if err := g.table.RemoveAt(i); err != nil {
		return err
	}
	metrics.RecordScoreRemoved(ModeAdmin)
	g.log.Info(ctx, "score removed", logger.Int("id", scoreID))
	return nil
}

// RemoveForEvaluator deletes the score cpf gave projectID.
func (g *Ledger) RemoveForEvaluator(ctx context.Context, projectID int, cpf string) error {
	i := g.indexFor(projectID, cpf)
	if i < 0 {
		return fmt.Errorf("%w: project %d for %s", ErrNotFound, projectID, strings.TrimSpace(cpf))
	}
	id := repository.RowID(g.table.Row(i))
	if err := g.table.RemoveAt(i); err != nil {
		return err
	}
	metrics.RecordScoreRemoved(ModeEvaluator)
	g.log.Info(ctx, "score removed",
		logger.Int("id", id),
		logger.Int("project_id", projectID),
		logger.String("cpf", strings.TrimSpace(cpf)))
	return nil
}

func (g *Ledger) at(i int) model.Score {
	return model.Score{
		ID:            repository.RowID(g.table.Row(i)),
		ProjectID:     repository.Atoi(g.table.Field(i, repository.ScoreProjectID)),
		EvaluatorCPF:  g.table.Field(i, repository.ScoreEvaluatorCPF),
		EvaluatorName: g.table.Field(i, repository.ScoreEvaluatorName),
		FinalScore:    parseStored(g.table.Field(i, repository.ScoreFinal)),
		FormID:        repository.Atoi(g.table.Field(i, repository.ScoreFormID)),
	}
}

// formatStored writes the shortest representation that parses back exactly.
func formatStored(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func parseStored(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
