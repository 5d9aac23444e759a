// Package auth is the client for the authentication endpoints: login,
// registration, logout, current-user lookup and profile updates.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/api"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/session"
)

// Ordered field-name synonyms accepted from the current-user endpoint.
// Different backend deployments spell these differently; the first present
// key wins.
var (
	idKeys       = []string{"id", "userId", "sub"}
	usernameKeys = []string{"username", "preferred_username", "name", "fullName"}
	fullNameKeys = []string{"fullName", "name"}
)

// Gateway wraps the authentication endpoints and keeps the session store in
// sync with their outcomes.
type Gateway struct {
	client *api.Client
	tokens *session.Store
}

// NewGateway creates a Gateway bound to the shared API client and token
// store.
func NewGateway(client *api.Client, tokens *session.Store) *Gateway {
	return &Gateway{client: client, tokens: tokens}
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type loginResponse struct {
	Message string        `json:"message"`
	Success bool          `json:"success"`
	Token   string        `json:"token"`
	User    *session.User `json:"user"`
}

// Login posts credentials and, on success, stores the issued token
// (durably when remember is set) and resolves the current user. Returns the
// authenticated user only when a token was issued and accepted.
func (g *Gateway) Login(ctx context.Context, identifier, password string, remember bool) (*session.User, error) {
	if err := ValidateLogin(identifier, password); err != nil {
		return nil, err
	}

	req := loginRequest{Email: identifier, Password: password, RememberMe: remember}
	var resp loginResponse
	if err := g.client.DoJSON(ctx, http.MethodPost, "/auth/login", req, &resp, false); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if resp.Token == "" || !(resp.Success || resp.Message == "Login successful") {
		if resp.Message != "" {
			return nil, fmt.Errorf("login failed: %s", resp.Message)
		}
		return nil, errors.New("login failed")
	}

	if err := g.tokens.SetToken(resp.Token, remember); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	user, err := g.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Token endpoint did not recognize the fresh token; fall back to
		// whatever profile the login response carried.
		user = resp.User
	}
	g.tokens.SetUser(user)
	return user, nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register validates the input syntactically and posts the registration
// payload. Success is whatever the backend's flag states.
func (g *Gateway) Register(ctx context.Context, username, email, password, confirm string) error {
	if err := ValidateRegistration(username, email, password, confirm); err != nil {
		return err
	}

	req := registerRequest{Username: username, Email: email, Password: password}
	var resp registerResponse
	if err := g.client.DoJSON(ctx, http.MethodPost, "/auth/register", req, &resp, false); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if !resp.Success {
		if resp.Message != "" {
			return fmt.Errorf("registration failed: %s", resp.Message)
		}
		return errors.New("registration failed")
	}
	return nil
}

// Logout notifies the backend (best effort) and clears both token slots.
// The local session is cleared regardless of the network outcome.
func (g *Gateway) Logout(ctx context.Context) error {
	if g.tokens.Token() != "" {
		if err := g.client.DoJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, true); err != nil {
			slog.Warn("Logout notification failed, clearing session anyway", "err", err)
		}
	}
	return g.tokens.Clear()
}

// CurrentUser fetches the authenticated user's profile. It returns nil
// without error when no token is stored or when the backend answers 401/403;
// any other failure is treated as a soft failure (logged, nil returned).
func (g *Gateway) CurrentUser(ctx context.Context) (*session.User, error) {
	if g.client.Token() == "" {
		return nil, nil
	}

	var raw map[string]any
	err := g.client.DoJSON(ctx, http.MethodGet, "/UserManagement/details", nil, &raw, true)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
				return nil, nil
			}
			slog.Error("Failed to fetch current user", "status", apiErr.StatusCode)
			return nil, nil
		}
		slog.Error("Failed to fetch current user", "err", err)
		return nil, nil
	}

	user := &session.User{
		ID:       firstString(raw, idKeys...),
		Username: firstString(raw, usernameKeys...),
		Email:    firstString(raw, "email"),
		FullName: firstString(raw, fullNameKeys...),
		Role:     firstString(raw, "role"),
	}
	if user.Role == "" {
		user.Role = "user"
	}
	g.tokens.SetUser(user)
	return user, nil
}

type updateProfileRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// UpdateProfile submits a profile change and refetches the profile so the
// cached copy reflects the backend's view.
func (g *Gateway) UpdateProfile(ctx context.Context, username, fullName string) (*session.User, error) {
	req := updateProfileRequest{Username: username, FullName: fullName}
	if err := g.client.DoJSON(ctx, http.MethodPut, "/users/update", req, nil, true); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user, err := g.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("profile updated but user lookup failed")
	}
	return user, nil
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
