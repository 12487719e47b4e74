package ledger

import (
	"strings"

	"github.com/okian/avalia/internal/domain/filter"
)

// Column headers per view.
var (
	AdminColumns     = []string{"ID Nota", "ID Projeto", "Projeto", "CPF Avaliador", "Avaliador", "Nota Final"}
	EvaluatorColumns = []string{"ID Projeto", "Projeto", "Curso/Categoria", "Situação", "Nota Final"}
)

// View selects how the score screen lists the ledger. It is either
// AdminView or EvaluatorView.
type View interface {
	Mode() string
	Columns() []string
	CountLabel(n int) string
	view()
}

// AdminView lists every score.
type AdminView struct{}

// EvaluatorView lists the projects linked to one evaluator.
type EvaluatorView struct {
	CPF    string
	Name   string
	Course string
	Linked []int
}

// NewView returns EvaluatorView when cpf is set and AdminView otherwise.
func NewView(cpf, name, course string, linked []int) View {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		return AdminView{}
	}
	return EvaluatorView{
		CPF:    cpf,
		Name:   strings.TrimSpace(name),
		Course: strings.TrimSpace(course),
		Linked: append([]int(nil), linked...),
	}
}

func (AdminView) Mode() string      { return ModeAdmin }
func (AdminView) Columns() []string { return append([]string(nil), AdminColumns...) }
func (AdminView) CountLabel(n int) string {
	return filter.Label(n, "nota registrada", "notas registradas")
}
func (AdminView) view() {}

func (EvaluatorView) Mode() string      { return ModeEvaluator }
func (EvaluatorView) Columns() []string { return append([]string(nil), EvaluatorColumns...) }
func (EvaluatorView) CountLabel(n int) string {
	return filter.Label(n, "projeto vinculado", "projetos vinculados")
}
func (EvaluatorView) view() {}
