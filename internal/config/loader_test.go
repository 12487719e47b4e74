package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/avalia/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "127.0.0.1:9080")
				convey.So(cfg.ScoresFile, convey.ShouldEqual, "notas.txt")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("AVALIA_ADDR", ":8080")
			t.Setenv("AVALIA_SCORES_FILE", "/data/notas.txt")
			t.Setenv("AVALIA_LOG_JSON", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScoresFile, convey.ShouldEqual, "/data/notas.txt")
				convey.So(cfg.LogJSON, convey.ShouldBeTrue)
				convey.So(cfg.ProjectsFile, convey.ShouldEqual, "projetos.txt")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
evaluators_file: "dados/avaliadores.txt"
projects_file: "dados/projetos.txt"
`
			tmpFile := createTempFile(t, "avalia-*.yaml", yamlContent)
			t.Setenv("AVALIA_CONFIG", tmpFile)
			t.Setenv("AVALIA_ADDR", ":8081")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")                           // Overridden by env
				convey.So(cfg.EvaluatorsFile, convey.ShouldEqual, "dados/avaliadores.txt") // From file
				convey.So(cfg.ProjectsFile, convey.ShouldEqual, "dados/projetos.txt")      // From file
				convey.So(cfg.LinksFile, convey.ShouldEqual, "vinculos_projetos.csv")      // From defaults
			})
		})

		convey.Convey("When a .env file is present", func() {
			dotenv := createTempFile(t, "avalia-*.env", "AVALIA_LINKS_FILE=vinculos_2025.csv\n")
			t.Setenv("AVALIA_DOTENV", dotenv)
			t.Cleanup(func() { _ = os.Unsetenv("AVALIA_LINKS_FILE") })

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LinksFile, convey.ShouldEqual, "vinculos_2025.csv")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempFile(t, "avalia-*.yaml", `invalid: yaml: content: [`)
			t.Setenv("AVALIA_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("AVALIA_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty store path", func() {
			t.Setenv("AVALIA_PROJECTS_FILE", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "projects_file must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			t.Setenv("AVALIA_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"AVALIA_CONFIG",
		"AVALIA_DOTENV",
		"AVALIA_ADDR",
		"AVALIA_LOG_LEVEL",
		"AVALIA_LOG_JSON",
		"AVALIA_EVALUATORS_FILE",
		"AVALIA_PROJECTS_FILE",
		"AVALIA_SCORES_FILE",
		"AVALIA_LINKS_FILE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
	// Point the dotenv lookup at a file that never exists so a stray ./.env
	// in the package directory cannot leak into the defaults.
	t.Setenv("AVALIA_DOTENV", filepath.Join(t.TempDir(), "absent.env"))
}

func createTempFile(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpFile.Name()
}
