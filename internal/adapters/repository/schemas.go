package repository

// Store names used in logs and metrics.
const (
	StoreEvaluators = "avaliadores"
	StoreProjects   = "projetos"
	StoreScores     = "notas"
)

// Evaluator columns.
const (
	EvaluatorID = iota
	EvaluatorName
	EvaluatorEmail
	EvaluatorCPF
	EvaluatorCategory
	EvaluatorPassword
)

// Project columns. Status, Ficha and FormID are only present in files
// written by other tools and are passed through untouched.
const (
	ProjectID = iota
	ProjectName
	ProjectDescription
	ProjectResponsible
	ProjectCategory
	ProjectStatus
	ProjectFicha
	ProjectFormID
)

// Score columns.
const (
	ScoreID = iota
	ScoreProjectID
	ScoreEvaluatorCPF
	ScoreEvaluatorName
	ScoreFinal
	ScoreFormID
)

// EvaluatorSchema is id;name;email;cpf;category;password. Password may be absent.
func EvaluatorSchema() Schema {
	return Schema{
		Name:      StoreEvaluators,
		Fields:    []string{"id", "name", "email", "cpf", "category", "password"},
		MinFields: 5,
	}
}

// ProjectSchema is id;name;description;responsible;category with optional
// trailing status;ficha;formId. Category may be absent in old files.
func ProjectSchema() Schema {
	return Schema{
		Name:      StoreProjects,
		Fields:    []string{"id", "name", "description", "responsible", "category"},
		MinFields: 4,
	}
}

// ScoreSchema is scoreId;projectId;evaluatorCpf;evaluatorName;finalScore;formId.
// FormID defaults to 0.
func ScoreSchema() Schema {
	return Schema{
		Name:      StoreScores,
		Fields:    []string{"id", "projectId", "evaluatorCpf", "evaluatorName", "finalScore", "formId"},
		MinFields: 5,
		Defaults:  map[int]string{ScoreFormID: "0"},
	}
}
