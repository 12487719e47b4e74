package swagger_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/avalia/internal/adapters/http/api"
	"github.com/okian/avalia/internal/adapters/http/swagger"
	service "github.com/okian/avalia/internal/app"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a router with the docs routes", t, func() {
		r := chi.NewRouter()
		swagger.Register(r)

		convey.Convey("Then it serves the OpenAPI document", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
			convey.So(w.Body.Len(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("And it serves the ReDoc page", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody))

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
		})

		convey.Convey("And a nil router panics", func() {
			convey.So(func() { swagger.Register(nil) }, convey.ShouldPanic)
		})
	})
}

func TestOpenAPICoversRoutes(t *testing.T) {
	convey.Convey("Given the embedded document and the API router", t, func() {
		doc, err := yaml.Parser().Unmarshal(swagger.OpenAPI)
		convey.So(err, convey.ShouldBeNil)
		paths, ok := doc["paths"].(map[string]interface{})
		convey.So(ok, convey.ShouldBeTrue)

		dir := t.TempDir()
		svc := service.New(
			service.WithEvaluatorsFile(filepath.Join(dir, "avaliadores.txt")),
			service.WithProjectsFile(filepath.Join(dir, "projetos.txt")),
			service.WithScoresFile(filepath.Join(dir, "notas.txt")),
			service.WithLinksFile(filepath.Join(dir, "vinculos_projetos.csv")),
		)
		router, ok := api.NewServer(svc, nil).Router().(chi.Routes)
		convey.So(ok, convey.ShouldBeTrue)

		convey.Convey("Then every API route is documented with its method", func() {
			err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
				route = strings.TrimSuffix(route, "/")
				if route == "/openapi.yaml" || route == "/api-docs" {
					return nil
				}
				item, found := paths[route].(map[string]interface{})
				convey.So(found, convey.ShouldBeTrue)
				convey.So(item, convey.ShouldContainKey, strings.ToLower(method))
				return nil
			})
			convey.So(err, convey.ShouldBeNil)
		})
	})
}
