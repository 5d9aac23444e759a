// Package detect drives the upload-then-poll workflow against the detection
// backend: send an image, wait for the annotated result, optionally save it
// as an annotation. Steps run strictly in sequence; poll attempts never
// overlap.
package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/api"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/session"
)

// ErrTimeout is returned when the poll attempt budget is exhausted without a
// definitive result.
var ErrTimeout = errors.New("timed out waiting for results")

// errNotReady marks a poll response that is well-formed but carries no final
// result yet.
var errNotReady = errors.New("results not ready yet")

// Workflow runs upload-and-detect jobs against the backend.
type Workflow struct {
	client   *api.Client
	interval time.Duration
	attempts int

	// OnProgress, when set, receives synthetic upload progress updates.
	OnProgress func(percent int)
}

// NewWorkflow creates a Workflow polling at the given interval with the
// given attempt budget.
func NewWorkflow(client *api.Client, interval time.Duration, attempts int) *Workflow {
	return &Workflow{
		client:   client,
		interval: interval,
		attempts: attempts,
	}
}

// WithProgress returns a copy of the workflow that reports synthetic upload
// progress to fn.
func (w *Workflow) WithProgress(fn func(percent int)) *Workflow {
	c := *w
	c.OnProgress = fn
	return &c
}

// Run takes an idle job through upload and polling until it is completed or
// failed. The returned error is also recorded on the job.
func (w *Workflow) Run(ctx context.Context, job *Job) error {
	if job.Status != StatusIdle {
		return fmt.Errorf("job for %s already started (status %s)", job.FileName, job.Status)
	}

	// Reject non-images before any network call; the job stays idle.
	if err := ValidateImage(job.Data); err != nil {
		job.Err = err
		return err
	}

	if err := w.upload(ctx, job); err != nil {
		job.Status = StatusFailed
		job.Err = err
		return err
	}

	job.Status = StatusProcessing
	if err := w.poll(ctx, job); err != nil {
		job.Status = StatusFailed
		job.Err = err
		return err
	}

	job.Status = StatusCompleted
	return nil
}

// ValidateImage checks that data looks like an image by sniffed content type.
func ValidateImage(data []byte) error {
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("unsupported file type %q: please provide an image file (.jpg, .png, .webp)", contentType)
	}
	return nil
}

type uploadResponse struct {
	ID string `json:"id"`
}

func (w *Workflow) upload(ctx context.Context, job *Job) error {
	job.Status = StatusUploading
	job.setProgress(0)

	// Synthetic stepped progress, capped at 90 while the request is in
	// flight. Purely cosmetic; it does not track real transfer bytes.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				p := job.stepProgress(5, 90)
				if w.OnProgress != nil {
					w.OnProgress(p)
				}
			}
		}
	}()

	var resp uploadResponse
	err := w.client.PostMultipart(ctx, "/Images/upload", "file", job.FileName, job.Data, &resp)
	close(stop)
	<-done

	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if resp.ID == "" {
		return errors.New("upload failed: backend returned no image id")
	}

	job.UploadedID = resp.ID
	job.setProgress(100)
	if w.OnProgress != nil {
		w.OnProgress(100)
	}
	job.Status = StatusUploaded
	slog.Info("Image uploaded", "file", job.FileName, "id", resp.ID)
	return nil
}

func (w *Workflow) poll(ctx context.Context, job *Job) error {
	path := "/Images/" + url.PathEscape(job.UploadedID) + "/results"

	var lastErr error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		result, err := w.fetchResult(ctx, path)
		switch {
		case err == nil:
			job.Result = result
			slog.Info("Detection results ready", "id", job.UploadedID, "attempts", attempt)
			return nil
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			// Not ready yet, or a transient failure; keep polling.
			lastErr = err
			slog.Debug("Results not available yet", "id", job.UploadedID, "attempt", attempt, "err", err)
		}

		if attempt < w.attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.interval):
			}
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w (last error: %v)", ErrTimeout, lastErr)
	}
	return ErrTimeout
}

// fetchResult performs one poll attempt. A non-2xx status or a response
// without a definitive success flag and image payload yields an error so the
// loop treats it as "not ready yet".
func (w *Workflow) fetchResult(ctx context.Context, path string) (*Result, error) {
	var result Result
	if err := w.client.DoJSON(ctx, http.MethodGet, path, nil, &result, false); err != nil {
		return nil, err
	}
	if !result.Success || result.AnnotatedImage.Data == "" {
		return nil, errNotReady
	}
	return &result, nil
}

// Save persists a completed job's result as an annotation. It requires a
// stored bearer token (checked by the gateway before any network call) and
// refuses repeat saves of the same job.
func (w *Workflow) Save(ctx context.Context, job *Job, user *session.User, gw *annotations.Gateway) (*annotations.Annotation, error) {
	if job.Status != StatusCompleted || job.Result == nil {
		return nil, fmt.Errorf("cannot save job in status %s: results are not available", job.Status)
	}
	if job.Saved {
		return nil, errors.New("this result has already been saved")
	}

	req := &annotations.UploadRequest{
		AnnotatedImage: job.Result.AnnotatedImage,
		Results:        job.Result.Results,
		Success:        job.Result.Success,
		Metadata: annotations.Metadata{
			OriginalFileName: job.FileName,
			UploadDate:       time.Now().UTC(),
		},
	}
	if user != nil {
		req.UserID = user.ID
	}

	saved, err := gw.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	job.Saved = true
	return saved, nil
}
