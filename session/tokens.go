// Package session holds who is signed in and how to sign them out, for each
// backend the list page can run against.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"clementus360/taskboard/types"
)

var ErrNoRefreshToken = errors.New("refresh token required")

// Authenticator is the part of the REST client a token session needs.
type Authenticator interface {
	RefreshToken(ctx context.Context, refresh string) (types.RefreshResponse, error)
	Logout(ctx context.Context, refresh string) error
}

// Tokens is a REST session: the user from the login response plus its
// access/refresh token pair. It satisfies api.Credentials.
type Tokens struct {
	mu      sync.RWMutex
	auth    Authenticator
	user    types.User
	access  string
	refresh string
	ended   bool
}

// NewTokens starts a session from a login or register response.
func NewTokens(auth Authenticator, resp types.AuthResponse) *Tokens {
	return &Tokens{
		auth:    auth,
		user:    resp.User,
		access:  resp.Access,
		refresh: resp.Refresh,
	}
}

// Bind sets the client used for refresh and logout. The authenticated client
// is usually built from the session itself, so it is attached afterwards.
func (t *Tokens) Bind(auth Authenticator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.auth = auth
}

func (t *Tokens) CurrentUser() (types.User, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.ended {
		return types.User{}, false
	}
	return t.user, true
}

func (t *Tokens) AccessToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.access
}

// Refresh swaps the access token for a new one. A rotated refresh token
// replaces the old one.
func (t *Tokens) Refresh(ctx context.Context) error {
	t.mu.RLock()
	refresh, auth := t.refresh, t.auth
	t.mu.RUnlock()

	if refresh == "" {
		return ErrNoRefreshToken
	}
	if auth == nil {
		return errors.New("session is not bound to a client")
	}

	resp, err := auth.RefreshToken(ctx, refresh)
	if err != nil {
		return fmt.Errorf("failed to refresh access token: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.access = resp.Access
	if resp.Refresh != "" {
		t.refresh = resp.Refresh
	}
	return nil
}

// Logout invalidates the refresh token on the service and forgets the
// session. The local session ends even if the service call fails.
func (t *Tokens) Logout(ctx context.Context) error {
	t.mu.Lock()
	refresh, auth := t.refresh, t.auth
	t.ended = true
	t.mu.Unlock()

	if refresh == "" {
		return ErrNoRefreshToken
	}
	if auth == nil {
		return nil
	}
	if err := auth.Logout(ctx, refresh); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	t.mu.Lock()
	t.access, t.refresh = "", ""
	t.mu.Unlock()
	return nil
}
