package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/avalia/internal/adapters/export"
	"github.com/okian/avalia/internal/adapters/repository"
	service "github.com/okian/avalia/internal/app"
	"github.com/okian/avalia/internal/domain/ledger"
	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/internal/domain/registry"
	"github.com/okian/avalia/internal/domain/validation"
)

const cpfX = "11144477735"

type files struct {
	dir, evaluators, projects, scores, links string
}

func newFiles(t *testing.T) files {
	dir := t.TempDir()
	return files{
		dir:        dir,
		evaluators: filepath.Join(dir, "avaliadores.txt"),
		projects:   filepath.Join(dir, "projetos.txt"),
		scores:     filepath.Join(dir, "notas.txt"),
		links:      filepath.Join(dir, "vinculos_projetos.csv"),
	}
}

func newService(f files) *service.Service {
	return service.New(
		service.WithEvaluatorsFile(f.evaluators),
		service.WithProjectsFile(f.projects),
		service.WithScoresFile(f.scores),
		service.WithLinksFile(f.links),
	)
}

func robot() model.Project {
	return model.Project{
		Name:        "Robô",
		Description: "Braço robótico",
		Responsible: "Ana Lima",
		Category:    model.Category(model.KindTecnico, "Automação Industrial"),
	}
}

func read(path string) string {
	b, _ := os.ReadFile(path)
	return string(b)
}

func TestService_EndToEnd(t *testing.T) {
	Convey("Given an empty projects file", t, func() {
		ctx := context.Background()
		f := newFiles(t)
		So(os.WriteFile(f.projects, nil, 0o600), ShouldBeNil)

		svc := newService(f)
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.ListProjects("", "").Total, ShouldEqual, 0)

		Convey("Adding a project persists it", func() {
			p, err := svc.AddProject(ctx, robot())
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, 1)
			So(read(f.projects), ShouldEqual, "1;Robô;Braço robótico;Ana Lima;Técnico - Automação Industrial\n")

			Convey("A reload reproduces it", func() {
				So(svc.Reload(ctx), ShouldBeNil)
				list := svc.ListProjects("", "")
				So(list.Rows, ShouldHaveLength, 1)
				So(list.Rows[0], ShouldResemble, p)
				So(list.Label, ShouldEqual, "1 projeto encontrado")
			})

			Convey("The CSV export matches the stored values", func() {
				var buf bytes.Buffer
				So(svc.Export(ctx, export.EntityProjects, &buf), ShouldBeNil)
				So(buf.String(), ShouldEqual,
					"ID;Nome;Descricao;Responsavel;Categoria\n"+
						"1;Robô;Braço robótico;Ana Lima;Técnico - Automação Industrial\n")
			})
		})

		Convey("Invalid projects are not stored", func() {
			_, err := svc.AddProject(ctx, model.Project{Name: "R"})
			So(errors.Is(err, validation.ErrInvalid), ShouldBeTrue)
			So(read(f.projects), ShouldBeEmpty)
		})

		Convey("Unknown ids are reported as not found", func() {
			_, err := svc.UpdateProject(ctx, 3, robot())
			So(errors.Is(err, registry.ErrNotFound), ShouldBeTrue)
			So(errors.Is(svc.RemoveEvaluator(ctx, 3), registry.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Evaluators(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		f := newFiles(t)
		svc := newService(f)
		So(svc.Start(ctx), ShouldBeNil)

		e, err := svc.AddEvaluator(ctx, model.Evaluator{
			Name: "Ana Souza", Email: "ana@escola.edu.br", CPF: cpfX,
			Category: model.Category(model.KindGraduacao, "Engenharia Civil"), Password: "segredo",
		})
		So(err, ShouldBeNil)

		Convey("Listings hide the password but the file keeps it", func() {
			list := svc.ListEvaluators("ana", "graduação")
			So(list.Count, ShouldEqual, 1)
			So(list.Rows[0].Password, ShouldBeEmpty)
			So(list.Columns, ShouldNotContain, "Senha")
			So(read(f.evaluators), ShouldContainSubstring, ";segredo\n")

			got, err := svc.GetEvaluator(e.ID)
			So(err, ShouldBeNil)
			So(got.Password, ShouldEqual, "segredo")
		})

		Convey("Filters that match nothing show zero", func() {
			So(svc.ListEvaluators("", "Técnico").Label, ShouldEqual, "0 registros encontrados")
		})

		Convey("The Todos category option shows everyone", func() {
			list := svc.ListEvaluators("", model.FilterAll)
			So(list.Count, ShouldEqual, 1)
			So(list.Label, ShouldEqual, "1 registro encontrado")
		})

		Convey("Editing with a blank password keeps the stored one", func() {
			listed := svc.ListEvaluators("", "").Rows[0]
			listed.Email = "ana.souza@escola.edu.br"

			saved, err := svc.UpdateEvaluator(ctx, e.ID, listed)
			So(err, ShouldBeNil)
			So(saved.Password, ShouldEqual, "segredo")
			So(read(f.evaluators), ShouldEqual,
				"1;Ana Souza;ana.souza@escola.edu.br;"+cpfX+";Graduação - Engenharia Civil;segredo\n")

			Convey("and a new password replaces it", func() {
				listed.Password = "outra"
				_, err := svc.UpdateEvaluator(ctx, e.ID, listed)
				So(err, ShouldBeNil)
				So(read(f.evaluators), ShouldEndWith, ";outra\n")
			})
		})

		Convey("The evaluator context fills name and course from the registry", func() {
			So(svc.SetEvaluatorContext(ctx, "111.444.777-35", "", ""), ShouldBeNil)
			ev, ok := svc.View().(ledger.EvaluatorView)
			So(ok, ShouldBeTrue)
			So(ev.Name, ShouldEqual, "Ana Souza")
			So(ev.Course, ShouldEqual, "Engenharia Civil")

			So(svc.SetEvaluatorContext(ctx, cpfX, "Ana", "Informática"), ShouldBeNil)
			ev = svc.View().(ledger.EvaluatorView)
			So(ev.Name, ShouldEqual, "Ana")
			So(ev.Course, ShouldEqual, "Informática")
		})

		Convey("Removing persists", func() {
			So(svc.RemoveEvaluator(ctx, e.ID), ShouldBeNil)
			So(read(f.evaluators), ShouldBeEmpty)
		})
	})
}

func TestService_SaveFailureKeepsMemory(t *testing.T) {
	Convey("Given a store path that cannot be written", t, func() {
		ctx := context.Background()
		f := newFiles(t)
		f.projects = f.dir
		svc := newService(f)

		Convey("The mutation is kept and the error surfaces", func() {
			_, err := svc.AddProject(ctx, robot())
			So(errors.Is(err, repository.ErrIO), ShouldBeTrue)
			So(svc.ListProjects("", "").Total, ShouldEqual, 1)
		})
	})
}

func TestService_Scores(t *testing.T) {
	Convey("Given project 5 with formId 42 linked to X", t, func() {
		ctx := context.Background()
		f := newFiles(t)
		So(os.WriteFile(f.projects, []byte("5;Robô;Braço robótico;Ana Lima;Técnico - Eletrônica;Ativo;F;42\n"), 0o600), ShouldBeNil)
		So(os.WriteFile(f.links, []byte("5;"+cpfX+"\n9;"+cpfX+"\n"), 0o600), ShouldBeNil)

		svc := newService(f)
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.View().Mode(), ShouldEqual, ledger.ModeAdmin)

		Convey("Admin mode lists every score", func() {
			_, err := svc.AddScore(ctx, service.ScoreInput{ProjectID: 5, EvaluatorCPF: cpfX, EvaluatorName: "Ana", FinalScore: 9})
			So(err, ShouldBeNil)
			_, err = svc.AddScore(ctx, service.ScoreInput{ProjectID: 8, EvaluatorCPF: cpfX, EvaluatorName: "Ana", FinalScore: 4})
			So(err, ShouldBeNil)

			list, err := svc.ListScores(ctx)
			So(err, ShouldBeNil)
			So(list.Label, ShouldEqual, "2 notas registradas")
			So(list.Admin[1].ProjectName, ShouldEqual, "ID 8 (não encontrado)")
			So(read(f.scores), ShouldEqual, "1;5;11144477735;Ana;9;42\n2;8;11144477735;Ana;4;0\n")

			Convey("Evaluator-only operations are refused", func() {
				_, err := svc.ScoreProject(ctx, 5, 8)
				So(errors.Is(err, service.ErrWrongMode), ShouldBeTrue)
			})
		})

		Convey("Evaluator mode lists linked projects only", func() {
			So(svc.SetEvaluatorContext(ctx, cpfX, "Ana", "Informática"), ShouldBeNil)

			list, err := svc.ListScores(ctx)
			So(err, ShouldBeNil)
			So(list.Mode, ShouldEqual, ledger.ModeEvaluator)
			So(list.Evaluator, ShouldHaveLength, 1)
			So(list.Evaluator[0].Status, ShouldEqual, ledger.StatusNotEvaluated)
			So(list.Evaluator[0].Display, ShouldEqual, "—")
			So(list.Label, ShouldEqual, "1 projeto vinculado")
			So(svc.InitialScore(5), ShouldEqual, ledger.DefaultScore)

			sc, err := svc.ScoreProject(ctx, 5, 8.5)
			So(err, ShouldBeNil)
			So(sc.FormID, ShouldEqual, 42)
			So(sc.EvaluatorName, ShouldEqual, "Ana")
			So(svc.InitialScore(5), ShouldEqual, 8.5)

			list, _ = svc.ListScores(ctx)
			So(list.Evaluator[0].Status, ShouldEqual, ledger.StatusEvaluated)
			So(list.Evaluator[0].Display, ShouldEqual, "8.50")

			Convey("Unlinked projects are refused", func() {
				_, err := svc.ScoreProject(ctx, 9, 5)
				So(errors.Is(err, service.ErrNotLinked), ShouldBeTrue)
			})

			Convey("Admin operations are refused", func() {
				So(errors.Is(svc.RemoveScore(ctx, sc.ID), service.ErrWrongMode), ShouldBeTrue)
			})

			Convey("Removing the own score works once", func() {
				So(svc.RemoveMyScore(ctx, 5), ShouldBeNil)
				So(errors.Is(svc.RemoveMyScore(ctx, 5), ledger.ErrNotFound), ShouldBeTrue)
			})

			Convey("Clearing the context returns to admin mode", func() {
				svc.ClearEvaluatorContext(ctx)
				So(svc.View().Mode(), ShouldEqual, ledger.ModeAdmin)
				So(svc.GetStats()["mode"], ShouldEqual, ledger.ModeAdmin)
			})
		})

		Convey("A missing link file gives an empty evaluator listing", func() {
			So(os.Remove(f.links), ShouldBeNil)
			So(svc.SetEvaluatorContext(ctx, cpfX, "Ana", ""), ShouldBeNil)
			list, err := svc.ListScores(ctx)
			So(err, ShouldBeNil)
			So(list.Count, ShouldEqual, 0)
			So(list.Label, ShouldEqual, "0 projetos vinculados")
		})

		Convey("An empty CPF keeps admin mode", func() {
			So(svc.SetEvaluatorContext(ctx, "  ", "Ana", ""), ShouldBeNil)
			So(svc.View().Mode(), ShouldEqual, ledger.ModeAdmin)
		})

		Convey("The score export joins the project", func() {
			_, _ = svc.AddScore(ctx, service.ScoreInput{ProjectID: 5, EvaluatorCPF: cpfX, EvaluatorName: "Ana", FinalScore: 7.25})
			path := filepath.Join(f.dir, "notas.csv")
			So(svc.ExportToFile(ctx, export.EntityScores, path), ShouldBeNil)
			So(read(path), ShouldEqual,
				"IdNota;IdProjeto;Projeto;CategoriaProjeto;StatusProjeto;IdFicha;CpfAvaliador;NomeAvaliador;NotaFinal\n"+
					"1;5;Robô;Técnico - Eletrônica;Ativo;42;11144477735;Ana;7.25\n")
		})
	})
}
