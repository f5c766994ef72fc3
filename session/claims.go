package session

import (
	"context"
	"sync"

	"clementus360/taskboard/types"
)

// Claims is a session whose identity is already known locally, either from
// a verified token's claims or from a local account. There is nothing to
// revoke remotely, so logging out only forgets the user.
type Claims struct {
	mu    sync.RWMutex
	user  types.User
	token string
	ended bool
}

func NewClaims(user types.User, token string) *Claims {
	return &Claims{user: user, token: token}
}

func (c *Claims) CurrentUser() (types.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ended {
		return types.User{}, false
	}
	return c.user, true
}

func (c *Claims) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Claims) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
	c.token = ""
	return nil
}
