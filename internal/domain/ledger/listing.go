package ledger

import (
	"context"
	"fmt"

	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/pkg/logger"
	"github.com/okian/avalia/pkg/metrics"
)

// Evaluation states shown in the evaluator listing.
const (
	StatusEvaluated    = "Avaliado"
	StatusNotEvaluated = "Não avaliado"
)

// NoScore marks a linked project without a score.
const NoScore = "—"

// AdminRow is one score joined with its project name.
type AdminRow struct {
	ScoreID       int     `json:"scoreId"`
	ProjectID     int     `json:"projectId"`
	ProjectName   string  `json:"projectName"`
	EvaluatorCPF  string  `json:"evaluatorCpf"`
	EvaluatorName string  `json:"evaluatorName"`
	FinalScore    float64 `json:"finalScore"`
	Display       string  `json:"display"`
	Missing       bool    `json:"missing,omitempty"`
}

// EvaluatorRow is one linked project and the evaluator's score for it.
type EvaluatorRow struct {
	ProjectID   int     `json:"projectId"`
	ProjectName string  `json:"projectName"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	HasScore    bool    `json:"hasScore"`
	FinalScore  float64 `json:"finalScore,omitempty"`
	Display     string  `json:"display"`
}

// ExportRow is one score fully joined for CSV export.
type ExportRow struct {
	ScoreID         int
	ProjectID       int
	ProjectName     string
	ProjectCategory string
	ProjectStatus   string
	FormID          int
	EvaluatorCPF    string
	EvaluatorName   string
	FinalScore      float64
}

// MissingProjectName is the placeholder for a score whose project is gone.
func MissingProjectName(id int) string {
	return fmt.Sprintf("ID %d (não encontrado)", id)
}

// ListForAdmin returns one row per score in file order.
func (g *Ledger) ListForAdmin(ctx context.Context) []AdminRow {
	scores := g.All()
	rows := make([]AdminRow, 0, len(scores))
	for _, s := range scores {
		row := AdminRow{
			ScoreID:       s.ID,
			ProjectID:     s.ProjectID,
			EvaluatorCPF:  s.EvaluatorCPF,
			EvaluatorName: s.EvaluatorName,
			FinalScore:    s.FinalScore,
			Display:       FormatScore(s.FinalScore),
		}
		if p, ok := g.lookup(s.ProjectID); ok {
			row.ProjectName = p.Name
		} else {
			row.ProjectName = MissingProjectName(s.ProjectID)
			row.Missing = true
			g.gap(ctx, s.ID, s.ProjectID)
		}
		rows = append(rows, row)
	}
	return rows
}

// ListForEvaluator returns one row per linked project that still exists,
// in link order.
func (g *Ledger) ListForEvaluator(ctx context.Context, cpf string, linked []int) []EvaluatorRow {
	rows := make([]EvaluatorRow, 0, len(linked))
	for _, id := range linked {
		p, ok := g.lookup(id)
		if !ok {
			g.log.Debug(ctx, "linked project skipped", logger.Int("project_id", id))
			continue
		}
		row := EvaluatorRow{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Category:    p.Category,
			Status:      StatusNotEvaluated,
			Display:     NoScore,
		}
		if s, ok := g.FindByEvaluatorAndProject(id, cpf); ok {
			row.Status = StatusEvaluated
			row.HasScore = true
			row.FinalScore = s.FinalScore
			row.Display = FormatScore(s.FinalScore)
		}
		rows = append(rows, row)
	}
	return rows
}

// ListForExport joins every score with its project. A stored formId of 0
// falls back to the project's current one.
func (g *Ledger) ListForExport(ctx context.Context) []ExportRow {
	scores := g.All()
	rows := make([]ExportRow, 0, len(scores))
	for _, s := range scores {
		row := ExportRow{
			ScoreID:       s.ID,
			ProjectID:     s.ProjectID,
			FormID:        s.FormID,
			EvaluatorCPF:  s.EvaluatorCPF,
			EvaluatorName: s.EvaluatorName,
			FinalScore:    s.FinalScore,
		}
		if p, ok := g.lookup(s.ProjectID); ok {
			row.ProjectName = p.Name
			row.ProjectCategory = p.Category
			row.ProjectStatus = p.Status
			if row.FormID == 0 {
				row.FormID = p.FormID
			}
		} else {
			row.ProjectName = MissingProjectName(s.ProjectID)
			g.gap(ctx, s.ID, s.ProjectID)
		}
		rows = append(rows, row)
	}
	return rows
}

func (g *Ledger) lookup(id int) (model.ProjectSummary, bool) {
	if g.projects == nil {
		return model.ProjectSummary{}, false
	}
	return g.projects.Lookup(id)
}

func (g *Ledger) gap(ctx context.Context, scoreID, projectID int) {
	metrics.RecordReferentialGap()
	g.log.Debug(ctx, "score references a missing project",
		logger.Int("id", scoreID),
		logger.Int("project_id", projectID))
}
