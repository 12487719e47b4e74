// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional .env file, an optional YAML file and env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

// Default file names kept for compatibility with existing data directories.
const (
	DefaultEvaluatorsFile = "avaliadores.txt"
	DefaultProjectsFile   = "projetos.txt"
	DefaultScoresFile     = "notas.txt"
	DefaultLinksFile      = "vinculos_projetos.csv"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the local HTTP listen address.
	Addr string `koanf:"addr"`

	// EvaluatorsFile is the semicolon-delimited evaluators store.
	EvaluatorsFile string `koanf:"evaluators_file"`

	// ProjectsFile is the semicolon-delimited projects store.
	ProjectsFile string `koanf:"projects_file"`

	// ScoresFile is the semicolon-delimited scores store.
	ScoresFile string `koanf:"scores_file"`

	// LinksFile lists projectId;evaluatorCpf assignments (read-only).
	LinksFile string `koanf:"links_file"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           "127.0.0.1:9080",
		EvaluatorsFile: DefaultEvaluatorsFile,
		ProjectsFile:   DefaultProjectsFile,
		ScoresFile:     DefaultScoresFile,
		LinksFile:      DefaultLinksFile,
	}
}
