package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a router with the docs registered", t, func() {
		r := mux.NewRouter()
		Register(context.Background(), r)

		convey.Convey("Then it serves /openapi.yaml", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
			convey.So(w.Body.Len(), convey.ShouldEqual, len(OpenAPI))
		})

		convey.Convey("And it serves /api-docs", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/openapi.yaml")
		})

		convey.Convey("And other methods are not allowed", func() {
			req := httptest.NewRequest(http.MethodPost, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded document", t, func() {
		var doc struct {
			OpenAPI string                    `yaml:"openapi"`
			Paths   map[string]map[string]any `yaml:"paths"`
		}
		convey.So(yaml.Unmarshal(OpenAPI, &doc), convey.ShouldBeNil)

		convey.Convey("Then it documents every route", func() {
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			routes := map[string][]string{
				"/register":                 {"post"},
				"/login":                    {"post"},
				"/api/user":                 {"get"},
				"/api/logout":               {"post"},
				"/api/level":                {"post"},
				"/api/levels":               {"get"},
				"/api/level/{id}":           {"get", "delete"},
				"/api/level/{id}/subscribe": {"post", "delete"},
				"/api/highscore":            {"post"},
				"/api/highscore/{id}":       {"get"},
				"/healthz":                  {"get"},
				"/metrics":                  {"get"},
			}
			for path, methods := range routes {
				convey.So(doc.Paths, convey.ShouldContainKey, path)
				for _, m := range methods {
					convey.So(doc.Paths[path], convey.ShouldContainKey, m)
				}
			}
		})
	})
}

func TestSwaggerHandlerWithNilRouter(t *testing.T) {
	convey.Convey("Given a nil router", t, func() {
		convey.So(func() { Register(context.Background(), nil) }, convey.ShouldPanic)
	})
}
