package service

import (
	"github.com/okian/avalia/internal/config"
	"github.com/okian/avalia/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEvaluatorsFile sets the evaluator store path.
func WithEvaluatorsFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.evaluatorsFile = path
		}
	}
}

// WithProjectsFile sets the project store path.
func WithProjectsFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.projectsFile = path
		}
	}
}

// WithScoresFile sets the score store path.
func WithScoresFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.scoresFile = path
		}
	}
}

// WithLinksFile sets the evaluator-project link file path.
func WithLinksFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.linksFile = path
		}
	}
}

// WithConfig applies every file path from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		WithEvaluatorsFile(cfg.EvaluatorsFile)(s)
		WithProjectsFile(cfg.ProjectsFile)(s)
		WithScoresFile(cfg.ScoresFile)(s)
		WithLinksFile(cfg.LinksFile)(s)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
