package handlers

import (
	"net/http"
	"strings"
)

// HandleJobs lists all jobs started in this serve session.
func (h *Handler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, h.jobStore.GetAll())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleJobDetail returns the current snapshot of one job.
func (h *Handler) HandleJobDetail(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")

	job, ok := h.getJobOrError(w, jobID)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, job)
	case http.MethodDelete:
		h.jobStore.Delete(jobID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
