package detect

import (
	"sync"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
)

// Status is the lifecycle state of an upload-and-detect job.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusUploading  Status = "uploading"
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Result is the detection backend's payload for a finished image.
type Result struct {
	Success        bool                       `json:"success"`
	AnnotatedImage annotations.AnnotatedImage `json:"annotated_image"`
	Results        annotations.Results        `json:"results"`
}

// Job is one user-initiated upload-and-detect cycle. A Job is created per
// selected file and driven through its states by the Workflow only.
type Job struct {
	FileName   string
	Data       []byte
	UploadedID string
	Status     Status
	Result     *Result
	Err        error
	Saved      bool

	mu       sync.Mutex
	progress int
}

// NewJob creates an idle job for the given file contents.
func NewJob(fileName string, data []byte) *Job {
	return &Job{
		FileName: fileName,
		Data:     data,
		Status:   StatusIdle,
	}
}

// Progress reports the synthetic upload progress, 0 to 100.
func (j *Job) Progress() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

func (j *Job) setProgress(p int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress = p
}

// stepProgress advances progress by step without exceeding cap, and returns
// the new value.
func (j *Job) stepProgress(step, cap int) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.progress < cap {
		j.progress += step
		if j.progress > cap {
			j.progress = cap
		}
	}
	return j.progress
}
