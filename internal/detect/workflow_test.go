package detect

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/api"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/session"
)

const testBase = "https://api.test.local"

var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

func newTestWorkflow(t *testing.T, attempts int) (*Workflow, *session.Store) {
	t.Helper()
	tokens := session.New(filepath.Join(t.TempDir(), "token"))
	client := api.NewClient(testBase, tokens)
	httpmock.ActivateNonDefault(client.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewWorkflow(client, 0, attempts), tokens
}

func completedResult() map[string]any {
	return map[string]any{
		"success":         true,
		"annotated_image": map[string]any{"data": "aGVsbG8=", "format": "png"},
		"results": map[string]any{
			"counts":  map[string]int{"Mature(Healthy)": 2, "young": 1},
			"summary": map[string]int{"total_palms": 3, "total_mature": 2, "total_young": 1},
		},
	}
}

func TestValidateImage(t *testing.T) {
	if err := ValidateImage(pngHeader); err != nil {
		t.Errorf("Expected PNG header to validate, got %v", err)
	}
	if err := ValidateImage([]byte("id,class\n1,young\n")); err == nil {
		t.Error("Expected text content to be rejected")
	}
}

func TestRunRejectsNonImageBeforeNetwork(t *testing.T) {
	workflow, _ := newTestWorkflow(t, 3)
	job := NewJob("notes.txt", []byte("just some text"))

	err := workflow.Run(context.Background(), job)
	require.Error(t, err)
	assert.Equal(t, StatusIdle, job.Status, "a rejected file should leave the job idle")
	assert.Equal(t, err, job.Err)
	assert.Zero(t, httpmock.GetTotalCallCount(), "validation failures must not reach the network")
}

func TestRunRefusesStartedJob(t *testing.T) {
	workflow, _ := newTestWorkflow(t, 3)
	job := NewJob("grove.png", pngHeader)
	job.Status = StatusCompleted

	err := workflow.Run(context.Background(), job)
	assert.Error(t, err)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestRunCompletesAfterRepeatedPolls(t *testing.T) {
	workflow, _ := newTestWorkflow(t, 20)
	job := NewJob("grove.png", pngHeader)

	httpmock.RegisterResponder(http.MethodPost, testBase+"/Images/upload",
		httpmock.NewJsonResponderOrPanic(200, map[string]string{"id": "img-1"}))

	// Not ready for the first two attempts, complete on the third.
	polls := 0
	httpmock.RegisterResponder(http.MethodGet, testBase+"/Images/img-1/results",
		func(req *http.Request) (*http.Response, error) {
			polls++
			if polls < 3 {
				return httpmock.NewJsonResponse(200, map[string]any{"success": false})
			}
			return httpmock.NewJsonResponse(200, completedResult())
		})

	require.NoError(t, workflow.Run(context.Background(), job))
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, "img-1", job.UploadedID)
	assert.Equal(t, 3, polls, "polling should stop at the first complete result")
	require.NotNil(t, job.Result)
	assert.Equal(t, 3, job.Result.Results.Summary.TotalPalms)
	assert.Equal(t, 100, job.Progress())
}

func TestRunTimesOutAfterAttemptBudget(t *testing.T) {
	workflow, _ := newTestWorkflow(t, 20)
	job := NewJob("grove.png", pngHeader)

	httpmock.RegisterResponder(http.MethodPost, testBase+"/Images/upload",
		httpmock.NewJsonResponderOrPanic(200, map[string]string{"id": "img-1"}))
	httpmock.RegisterResponder(http.MethodGet, testBase+"/Images/img-1/results",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{"success": false}))

	err := workflow.Run(context.Background(), job)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, StatusFailed, job.Status)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 20, info["GET "+testBase+"/Images/img-1/results"],
		"the attempt budget bounds the number of poll requests exactly")
}

func TestRunFailsWhenUploadReturnsNoID(t *testing.T) {
	workflow, _ := newTestWorkflow(t, 3)
	job := NewJob("grove.png", pngHeader)

	httpmock.RegisterResponder(http.MethodPost, testBase+"/Images/upload",
		httpmock.NewJsonResponderOrPanic(200, map[string]string{}))

	err := workflow.Run(context.Background(), job)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Zero(t, httpmock.GetCallCountInfo()["GET "+testBase+"/Images/img-1/results"])
}

func TestRunReportsProgress(t *testing.T) {
	base, _ := newTestWorkflow(t, 3)

	var last int
	workflow := base.WithProgress(func(p int) { last = p })
	job := NewJob("grove.png", pngHeader)

	httpmock.RegisterResponder(http.MethodPost, testBase+"/Images/upload",
		httpmock.NewJsonResponderOrPanic(200, map[string]string{"id": "img-1"}))
	httpmock.RegisterResponder(http.MethodGet, testBase+"/Images/img-1/results",
		httpmock.NewJsonResponderOrPanic(200, completedResult()))

	require.NoError(t, workflow.Run(context.Background(), job))
	assert.Equal(t, 100, last, "progress should finish at 100")
	assert.Nil(t, base.OnProgress, "WithProgress must not mutate the original workflow")
}

func TestSaveWithoutTokenMakesNoNetworkCall(t *testing.T) {
	workflow, _ := newTestWorkflow(t, 3)
	gw := annotations.NewGateway(api.NewClient(testBase, session.New(filepath.Join(t.TempDir(), "token"))))

	job := NewJob("grove.png", pngHeader)
	job.Status = StatusCompleted
	job.Result = &Result{Success: true, AnnotatedImage: annotations.AnnotatedImage{Data: "aGVsbG8=", Format: "png"}}

	_, err := workflow.Save(context.Background(), job, nil, gw)
	assert.ErrorIs(t, err, api.ErrNotAuthenticated)
	assert.False(t, job.Saved)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestSaveRefusesRepeatAndIncompleteJobs(t *testing.T) {
	workflow, tokens := newTestWorkflow(t, 3)
	require.NoError(t, tokens.SetToken("tok", false))
	gw := annotations.NewGateway(api.NewClient(testBase, tokens))

	// Not completed yet.
	pending := NewJob("grove.png", pngHeader)
	pending.Status = StatusProcessing
	_, err := workflow.Save(context.Background(), pending, nil, gw)
	assert.Error(t, err)

	// Already saved.
	done := NewJob("grove.png", pngHeader)
	done.Status = StatusCompleted
	done.Result = &Result{Success: true}
	done.Saved = true
	_, err = workflow.Save(context.Background(), done, nil, gw)
	assert.Error(t, err)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestSaveSendsUserAndMetadata(t *testing.T) {
	workflow, tokens := newTestWorkflow(t, 3)
	require.NoError(t, tokens.SetToken("tok", false))

	client := api.NewClient(testBase, tokens)
	httpmock.ActivateNonDefault(client.HTTPClient())
	gw := annotations.NewGateway(client)

	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/Annotations/upload",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{"id": "a-1"}))

	job := NewJob("grove.png", pngHeader)
	job.Status = StatusCompleted
	job.Result = &Result{Success: true, AnnotatedImage: annotations.AnnotatedImage{Data: "aGVsbG8=", Format: "png"}}

	saved, err := workflow.Save(context.Background(), job, &session.User{ID: "u-1"}, gw)
	require.NoError(t, err)
	assert.Equal(t, "a-1", saved.ID)
	assert.True(t, job.Saved)
}
