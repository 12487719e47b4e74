// Package export writes registries and the score ledger as semicolon
// separated CSV with a header row. Values containing ';' are rewritten
// with ',' and nothing is quoted, so exports are not RFC 4180.
package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/okian/avalia/internal/adapters/repository"
	"github.com/okian/avalia/internal/domain/ledger"
	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/pkg/logger"
	"github.com/okian/avalia/pkg/metrics"
)

// Entity names, used for metrics and suggested file names.
const (
	EntityEvaluators = "avaliadores"
	EntityProjects   = "projetos"
	EntityScores     = "notas"
)

// Header rows.
var (
	EvaluatorHeader = []string{"ID", "Nome", "Email", "CPF", "Categoria", "Senha"}
	ProjectHeader   = []string{"ID", "Nome", "Descricao", "Responsavel", "Categoria"}
	ScoreHeader     = []string{
		"IdNota", "IdProjeto", "Projeto", "CategoriaProjeto", "StatusProjeto",
		"IdFicha", "CpfAvaliador", "NomeAvaliador", "NotaFinal",
	}
)

// ErrExport wraps every failure to write an export.
var ErrExport = errors.New("export failed")

// SuggestedName returns the default file name offered for entity.
func SuggestedName(entity string) string { return entity + ".csv" }

type lineWriter struct {
	w   *bufio.Writer
	err error
}

func (lw *lineWriter) line(fields []string) {
	if lw.err != nil {
		return
	}
	_, lw.err = lw.w.WriteString(repository.JoinFields(fields) + "\n")
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}
	return lw.w.Flush()
}

// WriteEvaluators writes every evaluator, password included.
func WriteEvaluators(w io.Writer, evaluators []model.Evaluator) error {
	lw := &lineWriter{w: bufio.NewWriter(w)}
	lw.line(EvaluatorHeader)
	for _, e := range evaluators {
		lw.line([]string{strconv.Itoa(e.ID), e.Name, e.Email, e.CPF, e.Category, e.Password})
	}
	return lw.flush()
}

// WriteProjects writes the editable project columns only.
func WriteProjects(w io.Writer, projects []model.Project) error {
	lw := &lineWriter{w: bufio.NewWriter(w)}
	lw.line(ProjectHeader)
	for _, p := range projects {
		lw.line([]string{strconv.Itoa(p.ID), p.Name, p.Description, p.Responsible, p.Category})
	}
	return lw.flush()
}

// WriteScores writes joined score rows.
func WriteScores(w io.Writer, rows []ledger.ExportRow) error {
	lw := &lineWriter{w: bufio.NewWriter(w)}
	lw.line(ScoreHeader)
	for _, r := range rows {
		lw.line([]string{
			strconv.Itoa(r.ScoreID),
			strconv.Itoa(r.ProjectID),
			r.ProjectName,
			r.ProjectCategory,
			r.ProjectStatus,
			strconv.Itoa(r.FormID),
			r.EvaluatorCPF,
			r.EvaluatorName,
			FormatScore(r.FinalScore),
		})
	}
	return lw.flush()
}

// FormatScore renders a score with up to six significant digits.
func FormatScore(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

// ToFile creates path and fills it with write.
func ToFile(ctx context.Context, path, entity string, log logger.Logger, write func(io.Writer) error) (err error) {
	log = logger.OrNop(log)
	defer func() {
		if err != nil {
			metrics.RecordExportError(entity)
			metrics.RecordErrorByComponent("export", entity)
			log.Error(ctx, "export failed",
				logger.String("entity", entity),
				logger.String("path", path),
				logger.Error(err))
			return
		}
		metrics.RecordExport(entity)
		log.Info(ctx, "export written", logger.String("entity", entity), logger.String("path", path))
	}()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExport, path, err)
	}
	if werr := write(f); werr != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %s: %w", ErrExport, path, werr)
	}
	if cerr := f.Close(); cerr != nil {
		return fmt.Errorf("%w: %s: %w", ErrExport, path, cerr)
	}
	return nil
}
