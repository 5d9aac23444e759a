package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/detect"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/models"
)

const maxUploadBytes = 10 * 1024 * 1024

// HandleUpload accepts a multipart image upload, validates it, and starts an
// asynchronous detection job. The page polls the job endpoint for progress.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(fileData) >= maxUploadBytes {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	// Same pre-network check the CLI applies: only images are accepted and a
	// rejected job never starts.
	if err := detect.ValidateImage(fileData); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID := uuid.NewString()
	record := &models.JobRecord{
		ID:        jobID,
		FileName:  header.Filename,
		Status:    detect.StatusIdle,
		CreatedAt: time.Now().UTC(),
	}
	h.jobStore.Set(jobID, record)

	go h.runJob(jobID, header.Filename, fileData)

	h.writeJSON(w, map[string]any{
		"job_id":  jobID,
		"message": "Upload accepted, processing started",
	})
}

// runJob executes the workflow and publishes fresh record snapshots as the
// job advances. Stored records are never mutated after publication, so
// readers need no locking beyond the store's own.
func (h *Handler) runJob(jobID, fileName string, data []byte) {
	job := detect.NewJob(fileName, data)

	publish := func() {
		record := &models.JobRecord{
			ID:         jobID,
			FileName:   fileName,
			Status:     job.Status,
			Progress:   job.Progress(),
			UploadedID: job.UploadedID,
			Result:     job.Result,
			CreatedAt:  time.Now().UTC(),
		}
		if job.Err != nil {
			record.Error = job.Err.Error()
		}
		h.jobStore.Set(jobID, record)
	}

	workflow := h.workflow.WithProgress(func(int) { publish() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	_ = workflow.Run(ctx, job)
	publish()
}
