package models

import (
	"time"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/detect"
)

// JobRecord is the serve-mode view of one upload-and-detect job.
type JobRecord struct {
	ID         string         `json:"id"`
	FileName   string         `json:"file_name"`
	Status     detect.Status  `json:"status"`
	Progress   int            `json:"progress"`
	UploadedID string         `json:"uploaded_id,omitempty"`
	Error      string         `json:"error,omitempty"`
	Result     *detect.Result `json:"result,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
