package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/avalia/internal/adapters/repository"
	"github.com/okian/avalia/internal/domain/filter"
	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/internal/domain/validation"
	"github.com/okian/avalia/pkg/logger"
)

// Validation messages shown next to rejected evaluator fields.
const (
	MsgNameTooShort = "Nome muito curto"
	MsgInvalidEmail = "Email inválido"
	MsgInvalidCPF   = "CPF inválido (11 dígitos)"
)

// EvaluatorColumns are the grid headers; the password is never listed.
var EvaluatorColumns = []string{"ID", "Nome", "Email", "CPF", "Categoria"}

// Evaluators is the evaluator registry.
type Evaluators struct {
	base
}

// NewEvaluators returns an empty registry backed by path.
func NewEvaluators(path string, opts ...Option) *Evaluators {
	return &Evaluators{
		base: newBase(repository.EvaluatorSchema(), path,
			repository.EvaluatorName, repository.EvaluatorCategory, buildOptions(opts)),
	}
}

// NormalizeEvaluator trims the fields the dialog trims. Category and
// password are kept as given.
func NormalizeEvaluator(e model.Evaluator) model.Evaluator {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.TrimSpace(e.Email)
	e.CPF = strings.TrimSpace(e.CPF)
	return e
}

// CheckEvaluator validates name, email and CPF. The category is not checked.
func CheckEvaluator(e model.Evaluator) validation.Errors {
	var errs validation.Errors
	errs.Check(validation.IsValidName(e.Name), "name", MsgNameTooShort)
	errs.Check(validation.IsValidEmail(e.Email), "email", MsgInvalidEmail)
	errs.Check(validation.IsValidCPF(e.CPF), "cpf", MsgInvalidCPF)
	return errs
}

// Add validates e and appends it with a fresh id. The caller persists.
func (r *Evaluators) Add(ctx context.Context, e model.Evaluator) (model.Evaluator, error) {
	e = NormalizeEvaluator(e)
	if errs := CheckEvaluator(e); len(errs) > 0 {
		recordFailures("evaluator", errs)
		return model.Evaluator{}, errs
	}
	e.ID = r.table.Append(e.Name, e.Email, e.CPF, e.Category, e.Password)
	r.view.Refresh()
	r.log.Info(ctx, "evaluator added", logger.Int("id", e.ID), logger.String("cpf", e.CPF))
	return e, nil
}

// Update validates e and overwrites every field of the record at index
// except its id.
func (r *Evaluators) Update(ctx context.Context, index int, e model.Evaluator) (model.Evaluator, error) {
	e = NormalizeEvaluator(e)
	if errs := CheckEvaluator(e); len(errs) > 0 {
		recordFailures("evaluator", errs)
		return model.Evaluator{}, errs
	}
	if err := r.table.UpdateAt(index, e.Name, e.Email, e.CPF, e.Category, e.Password); err != nil {
		return model.Evaluator{}, err
	}
	r.view.Refresh()
	e.ID = repository.RowID(r.table.Row(index))
	r.log.Info(ctx, "evaluator updated", logger.Int("id", e.ID))
	return e, nil
}

// Get returns the evaluator at index.
func (r *Evaluators) Get(index int) (model.Evaluator, bool) {
	row := r.table.Row(index)
	if row == nil {
		return model.Evaluator{}, false
	}
	return evaluatorFromRow(row), true
}

// FindByID returns the evaluator with id and its index.
func (r *Evaluators) FindByID(id int) (model.Evaluator, int, error) {
	i := r.table.IndexOf(id)
	if i < 0 {
		return model.Evaluator{}, -1, fmt.Errorf("%w: evaluator %d", ErrNotFound, id)
	}
	e, _ := r.Get(i)
	return e, i, nil
}

// FindByCPF returns the first evaluator whose CPF digits equal cpf's.
func (r *Evaluators) FindByCPF(cpf string) (model.Evaluator, bool) {
	want := validation.DigitsOnly(cpf)
	if want == "" {
		return model.Evaluator{}, false
	}
	for i := 0; i < r.table.Len(); i++ {
		if validation.DigitsOnly(r.table.Field(i, repository.EvaluatorCPF)) == want {
			return r.Get(i)
		}
	}
	return model.Evaluator{}, false
}

// All returns every evaluator in file order.
func (r *Evaluators) All() []model.Evaluator {
	rows := r.table.Rows()
	out := make([]model.Evaluator, len(rows))
	for i, row := range rows {
		out[i] = evaluatorFromRow(row)
	}
	return out
}

// Visible returns the evaluators passing the filter.
func (r *Evaluators) Visible() []model.Evaluator {
	idx := r.view.Indices()
	out := make([]model.Evaluator, 0, len(idx))
	for _, i := range idx {
		e, _ := r.Get(i)
		out = append(out, e)
	}
	return out
}

// CountLabel renders the footer for the visible count.
func (r *Evaluators) CountLabel() string {
	return filter.Label(r.view.Count(), "registro encontrado", "registros encontrados")
}

func evaluatorFromRow(row []string) model.Evaluator {
	field := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return model.Evaluator{
		ID:       repository.RowID(row),
		Name:     field(repository.EvaluatorName),
		Email:    field(repository.EvaluatorEmail),
		CPF:      field(repository.EvaluatorCPF),
		Category: field(repository.EvaluatorCategory),
		Password: field(repository.EvaluatorPassword),
	}
}
