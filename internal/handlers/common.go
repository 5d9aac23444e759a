// Package handlers implements the local web interface started by
// `palma serve`: an upload form that drives the detection workflow, job
// status endpoints the page polls, and a read-only annotation listing.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/config"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/detect"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/models"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/session"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/storage"
)

type Handler struct {
	cfg         *config.Config
	jobStore    *storage.JobStore
	tokens      *session.Store
	workflow    *detect.Workflow
	annotations *annotations.Gateway
}

// New wires the serve-mode handlers. The workflow and gateway share the CLI's
// token store, so a `palma login` session carries over to the web interface.
func New(cfg *config.Config, tokens *session.Store, workflow *detect.Workflow, gw *annotations.Gateway) *Handler {
	return &Handler{
		cfg:         cfg,
		jobStore:    storage.New(),
		tokens:      tokens,
		workflow:    workflow,
		annotations: gw,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) getJobOrError(w http.ResponseWriter, jobID string) (*models.JobRecord, bool) {
	job, exists := h.jobStore.Get(jobID)
	if !exists {
		h.writeError(w, "Job not found", http.StatusNotFound)
		return nil, false
	}
	return job, true
}
