package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/machwatch/curator/internal/database"
)

// App bundles the repositories the serving API reads from. The API is
// read-only: pipeline runs are the single writer.
type App struct {
	VideoRepo    *database.VideoRepository
	RunRepo      *database.RunRepository
	WindowRepo   *database.WindowRepository
	CasefileRepo *database.CasefileRepository
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (app *App) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := app.VideoRepo.List(r.Context())
	if err != nil {
		writeError(w, "Failed to list videos", err)
		return
	}
	writeJSON(w, videos)
}

func (app *App) ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := app.RunRepo.List(r.Context())
	if err != nil {
		writeError(w, "Failed to list runs", err)
		return
	}
	writeJSON(w, runs)
}

func (app *App) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, err := app.RunRepo.GetByID(r.Context(), runID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		writeError(w, "Failed to get run", err)
		return
	}
	writeJSON(w, run)
}

func (app *App) ListWindowsHandler(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	windows, err := app.WindowRepo.GetByRunID(r.Context(), runID)
	if err != nil {
		writeError(w, "Failed to list windows", err)
		return
	}
	writeJSON(w, windows)
}

func (app *App) ListCasefilesHandler(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	casefiles, err := app.CasefileRepo.GetByRunID(r.Context(), runID)
	if err != nil {
		writeError(w, "Failed to list casefiles", err)
		return
	}
	writeJSON(w, casefiles)
}

// ListFlatCasefilesHandler serves the scalar-column projection for
// consumers that want one row per casefile with no nested JSON.
func (app *App) ListFlatCasefilesHandler(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	flat, err := app.CasefileRepo.GetFlatByRunID(r.Context(), runID)
	if err != nil {
		writeError(w, "Failed to flatten casefiles", err)
		return
	}
	writeJSON(w, flat)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, message string, err error) {
	log.Printf("%s: %v", message, err)
	http.Error(w, message, http.StatusInternalServerError)
}
