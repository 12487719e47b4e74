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

// Validation messages shown next to rejected project fields.
const (
	MsgDescriptionTooShort = "Descrição muito curta"
	MsgResponsibleTooShort = "Responsável muito curto"
)

// ProjectColumns are the grid headers.
var ProjectColumns = []string{"ID", "Nome", "Descrição", "Responsável", "Área/Categoria"}

// Projects is the project registry.
type Projects struct {
	base
}

// NewProjects returns an empty registry backed by path.
func NewProjects(path string, opts ...Option) *Projects {
	return &Projects{
		base: newBase(repository.ProjectSchema(), path,
			repository.ProjectName, repository.ProjectCategory, buildOptions(opts)),
	}
}

// NormalizeProject trims the editable text fields.
func NormalizeProject(p model.Project) model.Project {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Responsible = strings.TrimSpace(p.Responsible)
	return p
}

// CheckProject validates name, description and responsible.
func CheckProject(p model.Project) validation.Errors {
	var errs validation.Errors
	errs.Check(validation.IsValidName(p.Name), "name", MsgNameTooShort)
	errs.Check(validation.IsValidDescription(p.Description), "description", MsgDescriptionTooShort)
	errs.Check(validation.IsValidName(p.Responsible), "responsible", MsgResponsibleTooShort)
	return errs
}

// Add validates p and appends it with a fresh id. Status, ficha and formId
// are not written by this path. The caller persists.
func (r *Projects) Add(ctx context.Context, p model.Project) (model.Project, error) {
	p = NormalizeProject(p)
	if errs := CheckProject(p); len(errs) > 0 {
		recordFailures("project", errs)
		return model.Project{}, errs
	}
	id := r.table.Append(p.Name, p.Description, p.Responsible, p.Category)
	r.view.Refresh()
	r.log.Info(ctx, "project added", logger.Int("id", id), logger.String("name", p.Name))
	saved, _ := r.Get(r.table.Len() - 1)
	return saved, nil
}

// Update validates p and overwrites the editable fields of the record at
// index. Trailing status, ficha and formId survive.
func (r *Projects) Update(ctx context.Context, index int, p model.Project) (model.Project, error) {
	p = NormalizeProject(p)
	if errs := CheckProject(p); len(errs) > 0 {
		recordFailures("project", errs)
		return model.Project{}, errs
	}
	if err := r.table.UpdateAt(index, p.Name, p.Description, p.Responsible, p.Category); err != nil {
		return model.Project{}, err
	}
	r.view.Refresh()
	saved, _ := r.Get(index)
	r.log.Info(ctx, "project updated", logger.Int("id", saved.ID))
	return saved, nil
}

// Get returns the project at index.
func (r *Projects) Get(index int) (model.Project, bool) {
	row := r.table.Row(index)
	if row == nil {
		return model.Project{}, false
	}
	return projectFromRow(row), true
}

// FindByID returns the project with id and its index.
func (r *Projects) FindByID(id int) (model.Project, int, error) {
	i := r.table.IndexOf(id)
	if i < 0 {
		return model.Project{}, -1, fmt.Errorf("%w: project %d", ErrNotFound, id)
	}
	p, _ := r.Get(i)
	return p, i, nil
}

// Lookup returns the fields the score ledger joins on.
func (r *Projects) Lookup(id int) (model.ProjectSummary, bool) {
	i := r.table.IndexOf(id)
	if i < 0 {
		return model.ProjectSummary{}, false
	}
	p, _ := r.Get(i)
	return model.ProjectSummary{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Status:   p.Status,
		FormID:   p.FormID,
	}, true
}

// All returns every project in file order.
func (r *Projects) All() []model.Project {
	rows := r.table.Rows()
	out := make([]model.Project, len(rows))
	for i, row := range rows {
		out[i] = projectFromRow(row)
	}
	return out
}

// Visible returns the projects passing the filter.
func (r *Projects) Visible() []model.Project {
	idx := r.view.Indices()
	out := make([]model.Project, 0, len(idx))
	for _, i := range idx {
		p, _ := r.Get(i)
		out = append(out, p)
	}
	return out
}

// CountLabel renders the footer for the visible count.
func (r *Projects) CountLabel() string {
	return filter.Label(r.view.Count(), "projeto encontrado", "projetos encontrados")
}

func projectFromRow(row []string) model.Project {
	field := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return model.Project{
		ID:          repository.RowID(row),
		Name:        field(repository.ProjectName),
		Description: field(repository.ProjectDescription),
		Responsible: field(repository.ProjectResponsible),
		Category:    field(repository.ProjectCategory),
		Status:      field(repository.ProjectStatus),
		Ficha:       field(repository.ProjectFicha),
		FormID:      repository.Atoi(field(repository.ProjectFormID)),
	}
}
