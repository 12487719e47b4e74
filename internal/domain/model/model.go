// Package model contains domain models passed between layers.
package model

// Evaluator is a person allowed to score projects.
type Evaluator struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	CPF      string `json:"cpf"`
	Category string `json:"category"`
	Password string `json:"password,omitempty"` // stored and exported, never listed
}

// Project is an entry under evaluation. Status, Ficha and FormID are
// carried through persistence but not edited by the project screen.
type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Responsible string `json:"responsible"`
	Category    string `json:"category"`
	Status      string `json:"status,omitempty"`
	Ficha       string `json:"ficha,omitempty"`
	FormID      int    `json:"formId,omitempty"`
}

// ProjectSummary is the slice of a project the score ledger joins against.
type ProjectSummary struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"`
	FormID   int    `json:"formId"`
}

// Score links a project to an evaluator's final mark.
type Score struct {
	ID            int     `json:"id"`
	ProjectID     int     `json:"projectId"`
	EvaluatorCPF  string  `json:"evaluatorCpf"`
	EvaluatorName string  `json:"evaluatorName"`
	FinalScore    float64 `json:"finalScore"`
	FormID        int     `json:"formId"` // copied from the project on every write
}

// Link assigns a project to an evaluator.
type Link struct {
	ProjectID    int
	EvaluatorCPF string
}
