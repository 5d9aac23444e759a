// Package session holds the bearer token and cached user profile for the
// current client session. The token lives in one of two slots: a durable file
// slot used when the user asks to be remembered across restarts, and an
// ephemeral in-process slot that is lost when the program exits.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the cached profile of the authenticated user.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role"`
}

// Store manages the bearer token slots and the cached profile.
// Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	tokenFile string
	ephemeral string
	user      *User
}

// New creates a Store whose durable slot is the given file path.
func New(tokenFile string) *Store {
	return &Store{tokenFile: tokenFile}
}

// SetToken stores the token. With persist it goes to the durable file slot,
// otherwise to the ephemeral slot. The token contents are never validated
// here; only backend responses decide validity.
func (s *Store) SetToken(token string, persist bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !persist {
		s.ephemeral = token
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.tokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.tokenFile, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Token returns the durable-slot token if present, else the ephemeral-slot
// token, else the empty string.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.tokenFile)
	if err == nil {
		if tok := strings.TrimSpace(string(data)); tok != "" {
			return tok
		}
	}
	return s.ephemeral
}

// Clear removes the token from both slots and drops the cached profile.
// Always clears everything it can, even if the file removal fails.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ephemeral = ""
	s.user = nil

	err := os.Remove(s.tokenFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// SetUser caches the current user profile.
func (s *Store) SetUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// User returns the cached profile, or nil when none is cached.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// ExpiresAt reports the token's exp claim when the token is a JWT.
// The claim is read without signature verification and is for display only.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
