// Package annotations is the client for the saved-annotation CRUD endpoints.
// Every operation requires a bearer token and fails fast without one.
package annotations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/api"
)

// Gateway wraps the /api/Annotations endpoints.
type Gateway struct {
	client *api.Client
}

// NewGateway creates a Gateway on top of the shared API client.
func NewGateway(client *api.Client) *Gateway {
	return &Gateway{client: client}
}

// List returns all annotations saved by the current user.
func (g *Gateway) List(ctx context.Context) ([]Annotation, error) {
	var out []Annotation
	if err := g.client.DoJSON(ctx, http.MethodGet, "/api/Annotations", nil, &out, true); err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	return out, nil
}

// Get fetches a single annotation by id.
func (g *Gateway) Get(ctx context.Context, id string) (*Annotation, error) {
	var out Annotation
	if err := g.client.DoJSON(ctx, http.MethodGet, "/api/Annotations/"+url.PathEscape(id), nil, &out, true); err != nil {
		return nil, fmt.Errorf("failed to get annotation %s: %w", id, err)
	}
	return &out, nil
}

// Create persists a completed detection result as a new annotation.
func (g *Gateway) Create(ctx context.Context, req *UploadRequest) (*Annotation, error) {
	var out Annotation
	if err := g.client.DoJSON(ctx, http.MethodPost, "/api/Annotations/upload", req, &out, true); err != nil {
		return nil, fmt.Errorf("failed to upload annotation: %w", err)
	}
	return &out, nil
}

// Update replaces the mutable fields of an annotation.
func (g *Gateway) Update(ctx context.Context, id string, req *UpdateRequest) (*Annotation, error) {
	var out Annotation
	if err := g.client.DoJSON(ctx, http.MethodPut, "/api/Annotations/"+url.PathEscape(id), req, &out, true); err != nil {
		return nil, fmt.Errorf("failed to update annotation %s: %w", id, err)
	}
	return &out, nil
}

// Delete removes an annotation.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	if err := g.client.DoJSON(ctx, http.MethodDelete, "/api/Annotations/"+url.PathEscape(id), nil, nil, true); err != nil {
		return fmt.Errorf("failed to delete annotation %s: %w", id, err)
	}
	return nil
}
