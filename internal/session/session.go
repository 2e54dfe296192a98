// Package session manages the authenticated user: login, registration, token
// persistence, and access-token refresh. Logout is purely local.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/selahproject/selah/internal/api"
)

const sessionFileName = "session.json"

// refreshLeeway is how close to expiry the access token may get before
// EnsureFresh refreshes it.
const refreshLeeway = 60 * time.Second

// ErrNotAuthenticated is returned when an operation needs a logged-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

type persisted struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh"`
	User    *api.User `json:"user,omitempty"`
}

// Session holds the token pair and user snapshot, persisted across runs.
// Safe for concurrent use.
type Session struct {
	mu   sync.RWMutex
	auth api.Authenticator
	path string

	access  string
	refresh string
	user    *api.User
}

// Open loads any persisted session from dir. A corrupted session file is
// discarded; the user simply logs in again. The authenticator may be attached
// later with SetAuthenticator when client construction needs the session's
// token source first.
func Open(dir string) *Session {
	s := &Session{path: filepath.Join(dir, sessionFileName)}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("session: load failed: %v", err)
		}
		return s
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("session: discarding unreadable session: %v", err)
		return s
	}
	s.access, s.refresh, s.user = p.Access, p.Refresh, p.User
	return s
}

// SetAuthenticator attaches the auth API client.
func (s *Session) SetAuthenticator(auth api.Authenticator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = auth
}

// Token returns the current access token. Used as the API client's token
// source.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// Authenticated reports whether a token pair is present.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != "" && s.refresh != ""
}

// User returns a copy of the signed-in user, if any.
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Login validates the credentials, exchanges them for tokens, and persists
// the session. Auth failures never touch local annotation data.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if err := ValidateLogin(email, password); err != nil {
		return err
	}
	s.mu.RLock()
	auth := s.auth
	s.mu.RUnlock()
	if auth == nil {
		return fmt.Errorf("login: no authenticator configured")
	}
	resp, err := auth.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.store(resp)
	return nil
}

// Register validates the form, creates the account, and persists the session.
func (s *Session) Register(ctx context.Context, email, firstName, password string) error {
	if err := ValidateRegister(email, firstName, password); err != nil {
		return err
	}
	s.mu.RLock()
	auth := s.auth
	s.mu.RUnlock()
	if auth == nil {
		return fmt.Errorf("register: no authenticator configured")
	}
	resp, err := auth.Register(ctx, email, firstName, password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	s.store(resp)
	return nil
}

func (s *Session) store(resp *api.LoginResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = resp.Access
	s.refresh = resp.Refresh
	user := resp.User
	s.user = &user
	s.saveLocked()
}

// Logout clears the persisted tokens and user. Purely local: no remote call.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access, s.refresh, s.user = "", "", nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Printf("session: remove failed: %v", err)
	}
}

// EnsureFresh refreshes the access token when it is expired or about to
// expire. No-op when not authenticated or when the token is still good.
func (s *Session) EnsureFresh(ctx context.Context) error {
	s.mu.RLock()
	access, refresh, auth := s.access, s.refresh, s.auth
	s.mu.RUnlock()
	if access == "" || refresh == "" {
		return ErrNotAuthenticated
	}
	if !expiringSoon(access) {
		return nil
	}
	if auth == nil {
		return fmt.Errorf("refresh: no authenticator configured")
	}
	resp, err := auth.Refresh(ctx, refresh)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = resp.Access
	s.saveLocked()
	return nil
}

// expiringSoon inspects the token's exp claim without verifying the
// signature; verification is the server's job, the client only schedules
// refreshes. Unreadable tokens count as expiring so a refresh is attempted.
func expiringSoon(access string) bool {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(access, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) < refreshLeeway
}

func (s *Session) saveLocked() {
	p := persisted{Access: s.access, Refresh: s.refresh, User: s.user}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		log.Printf("session: encode failed: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Printf("session: save failed: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		log.Printf("session: save failed: %v", err)
	}
}
