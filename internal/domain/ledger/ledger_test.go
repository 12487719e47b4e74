package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/internal/domain/validation"
)

type fakeProjects map[int]model.ProjectSummary

func (f fakeProjects) Lookup(id int) (model.ProjectSummary, bool) {
	p, ok := f[id]
	return p, ok
}

const cpfX = "11144477735"

func TestLedgerDenormalization(t *testing.T) {
	Convey("Given project 5 with formId 42", t, func() {
		ctx := context.Background()
		projects := fakeProjects{5: {ID: 5, Name: "Robô", Category: "Técnico - Eletrônica", Status: "Ativo", FormID: 42}}
		g := New(filepath.Join(t.TempDir(), "notas.txt"), projects)

		Convey("A new evaluator score copies the formId", func() {
			s, err := g.UpsertForEvaluator(ctx, 5, cpfX, "Ana", 8.5)
			So(err, ShouldBeNil)
			So(s.ID, ShouldEqual, 1)
			So(s.FormID, ShouldEqual, 42)

			Convey("After the project is deleted an edit falls back to 0", func() {
				delete(projects, 5)
				s, err := g.UpsertForEvaluator(ctx, 5, cpfX, "Ana", 9)
				So(err, ShouldBeNil)
				So(s.ID, ShouldEqual, 1)
				So(s.FinalScore, ShouldEqual, 9.0)
				So(s.FormID, ShouldEqual, 0)
				So(g.Len(), ShouldEqual, 1)
			})

			Convey("A stale formId is refreshed on the next write", func() {
				projects[5] = model.ProjectSummary{ID: 5, Name: "Robô", FormID: 43}
				s, _ := g.FindByID(1)
				So(s.FormID, ShouldEqual, 42)

				s, err := g.UpsertForEvaluator(ctx, 5, cpfX, "Ana", 7)
				So(err, ShouldBeNil)
				So(s.FormID, ShouldEqual, 43)
			})
		})

		Convey("Editing a five-column score in place writes score and formId", func() {
			path := g.Path()
			So(os.WriteFile(path, []byte("3;5;"+cpfX+";Ana;8\n"), 0o600), ShouldBeNil)
			So(g.Load(ctx), ShouldBeNil)

			s, err := g.UpsertForEvaluator(ctx, 5, cpfX, "Ana", 9.5)
			So(err, ShouldBeNil)
			So(s.ID, ShouldEqual, 3)
			So(s.FormID, ShouldEqual, 42)

			So(g.Save(ctx), ShouldBeNil)
			b, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "3;5;"+cpfX+";Ana;9.5;42\n")
		})

		Convey("Admin writes also copy the formId", func() {
			s, err := g.UpsertAdmin(ctx, 0, 5, " 52998224725 ", " Bia ", 6.25)
			So(err, ShouldBeNil)
			So(s.FormID, ShouldEqual, 42)
			So(s.EvaluatorCPF, ShouldEqual, "52998224725")
			So(s.EvaluatorName, ShouldEqual, "Bia")

			s, err = g.UpsertAdmin(ctx, s.ID, 6, "52998224725", "Bia", 6.25)
			So(err, ShouldBeNil)
			So(s.ProjectID, ShouldEqual, 6)
			So(s.FormID, ShouldEqual, 0)
		})
	})
}

func TestLedgerWrites(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "notas.txt")
		g := New(path, fakeProjects{1: {ID: 1, Name: "Robô"}})

		Convey("Admin duplicates are allowed", func() {
			_, err := g.UpsertAdmin(ctx, 0, 1, cpfX, "Ana", 5)
			So(err, ShouldBeNil)
			_, err = g.UpsertAdmin(ctx, 0, 1, cpfX, "Ana", 6)
			So(err, ShouldBeNil)
			So(g.Len(), ShouldEqual, 2)

			s, ok := g.FindByEvaluatorAndProject(1, cpfX)
			So(ok, ShouldBeTrue)
			So(s.ID, ShouldEqual, 1)
		})

		Convey("Editing an unknown admin score fails", func() {
			_, err := g.UpsertAdmin(ctx, 9, 1, cpfX, "Ana", 5)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Out of range values are rejected", func() {
			_, err := g.UpsertForEvaluator(ctx, 1, cpfX, "Ana", 10.5)
			So(errors.Is(err, validation.ErrInvalid), ShouldBeTrue)
			_, err = g.UpsertAdmin(ctx, 0, 0, cpfX, "Ana", -1)
			var errs validation.Errors
			So(errors.As(err, &errs), ShouldBeTrue)
			So(errs.Has("projectId"), ShouldBeTrue)
			So(errs.Has("finalScore"), ShouldBeTrue)
			So(g.Len(), ShouldEqual, 0)
		})

		Convey("Removal reports missing scores", func() {
			So(errors.Is(g.Remove(ctx, 3), ErrNotFound), ShouldBeTrue)
			So(errors.Is(g.RemoveForEvaluator(ctx, 1, cpfX), ErrNotFound), ShouldBeTrue)

			_, _ = g.UpsertForEvaluator(ctx, 1, cpfX, "Ana", 5)
			So(g.RemoveForEvaluator(ctx, 1, " "+cpfX), ShouldBeNil)
			So(g.Len(), ShouldEqual, 0)
		})

		Convey("Scores survive a save and load", func() {
			_, _ = g.UpsertForEvaluator(ctx, 1, cpfX, "Ana", 8.125)
			So(g.Save(ctx), ShouldBeNil)

			b, _ := os.ReadFile(path)
			So(string(b), ShouldEqual, "1;1;11144477735;Ana;8.125;0\n")

			again := New(path, nil)
			So(again.Load(ctx), ShouldBeNil)
			So(again.All(), ShouldResemble, g.All())
			So(again.NextID(), ShouldEqual, 2)
		})

		Convey("Old five-column lines load with formId 0 and unclamped scores", func() {
			So(os.WriteFile(path, []byte("4;1;"+cpfX+";Ana;12\n"), 0o600), ShouldBeNil)
			So(g.Load(ctx), ShouldBeNil)
			s, ok := g.FindByID(4)
			So(ok, ShouldBeTrue)
			So(s.FinalScore, ShouldEqual, 12.0)
			So(s.FormID, ShouldEqual, 0)
		})
	})
}

func TestLedgerListings(t *testing.T) {
	Convey("Given linked project 5 and no scores", t, func() {
		ctx := context.Background()
		projects := fakeProjects{5: {ID: 5, Name: "Robô", Category: "Técnico - Eletrônica", FormID: 42}}
		g := New(filepath.Join(t.TempDir(), "notas.txt"), projects)

		Convey("The evaluator listing shows it as not evaluated", func() {
			rows := g.ListForEvaluator(ctx, cpfX, []int{5, 8})
			So(rows, ShouldHaveLength, 1)
			So(rows[0].Status, ShouldEqual, StatusNotEvaluated)
			So(rows[0].Display, ShouldEqual, NoScore)

			Convey("and as evaluated once scored", func() {
				_, err := g.UpsertForEvaluator(ctx, 5, cpfX, "Ana", 8.5)
				So(err, ShouldBeNil)
				rows := g.ListForEvaluator(ctx, cpfX, []int{5})
				So(rows[0].Status, ShouldEqual, StatusEvaluated)
				So(rows[0].Display, ShouldEqual, "8.50")
				So(rows[0].HasScore, ShouldBeTrue)
			})
		})

		Convey("The admin listing marks missing projects", func() {
			_, _ = g.UpsertAdmin(ctx, 0, 5, cpfX, "Ana", 9)
			_, _ = g.UpsertAdmin(ctx, 0, 77, cpfX, "Ana", 3)

			rows := g.ListForAdmin(ctx)
			So(rows, ShouldHaveLength, 2)
			So(rows[0].ProjectName, ShouldEqual, "Robô")
			So(rows[1].ProjectName, ShouldEqual, "ID 77 (não encontrado)")
			So(rows[1].Missing, ShouldBeTrue)
			So(rows[1].Display, ShouldEqual, "3.00")
		})

		Convey("The export listing falls back to the project's formId", func() {
			So(os.WriteFile(g.Path(), []byte("1;5;"+cpfX+";Ana;9\n"), 0o600), ShouldBeNil)
			So(g.Load(ctx), ShouldBeNil)

			rows := g.ListForExport(ctx)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].FormID, ShouldEqual, 42)
			So(rows[0].ProjectCategory, ShouldEqual, "Técnico - Eletrônica")
		})
	})
}

func TestViews(t *testing.T) {
	Convey("Given the score screen views", t, func() {
		Convey("No CPF means admin mode", func() {
			v := NewView("  ", "Ana", "", nil)
			So(v.Mode(), ShouldEqual, ModeAdmin)
			So(v.Columns(), ShouldResemble, AdminColumns)
			So(v.CountLabel(1), ShouldEqual, "1 nota registrada")
			So(v.CountLabel(3), ShouldEqual, "3 notas registradas")
		})

		Convey("A CPF selects the evaluator view", func() {
			v := NewView(cpfX, "Ana", "Informática", []int{5})
			ev, ok := v.(EvaluatorView)
			So(ok, ShouldBeTrue)
			So(ev.Linked, ShouldResemble, []int{5})
			So(v.Columns(), ShouldResemble, EvaluatorColumns)
			So(v.CountLabel(0), ShouldEqual, "0 projetos vinculados")
			So(v.CountLabel(1), ShouldEqual, "1 projeto vinculado")
		})
	})
}
