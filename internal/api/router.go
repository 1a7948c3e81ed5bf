package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/videos", app.ListVideosHandler)
		r.Get("/runs", app.ListRunsHandler)
		r.Get("/runs/{runID}", app.GetRunHandler)
		r.Get("/runs/{runID}/windows", app.ListWindowsHandler)
		r.Get("/runs/{runID}/casefiles", app.ListCasefilesHandler)
		r.Get("/runs/{runID}/casefiles/flat", app.ListFlatCasefilesHandler)
	})

	return r
}
