package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/api"
)

// HandleAnnotations lists the saved annotations of the logged-in session.
// Requires a prior `palma login`; the stored bearer token is reused.
func (h *Handler) HandleAnnotations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list, err := h.annotations.List(r.Context())
	if err != nil {
		h.writeAnnotationError(w, err)
		return
	}
	h.writeJSON(w, list)
}

// HandleAnnotationDetail fetches or deletes one saved annotation.
func (h *Handler) HandleAnnotationDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/annotations/")
	if id == "" {
		h.writeError(w, "Annotation id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		ann, err := h.annotations.Get(r.Context(), id)
		if err != nil {
			h.writeAnnotationError(w, err)
			return
		}
		h.writeJSON(w, ann)
	case http.MethodDelete:
		if err := h.annotations.Delete(r.Context(), id); err != nil {
			h.writeAnnotationError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) writeAnnotationError(w http.ResponseWriter, err error) {
	if errors.Is(err, api.ErrNotAuthenticated) {
		h.writeError(w, "Not logged in: run `palma login` first", http.StatusUnauthorized)
		return
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		h.writeError(w, err.Error(), apiErr.StatusCode)
		return
	}
	h.writeError(w, err.Error(), http.StatusBadGateway)
}
