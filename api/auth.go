package api

import (
	"context"
	"net/http"

	"clementus360/taskboard/types"
)

func (c *Client) Login(ctx context.Context, req types.LoginRequest) (types.AuthResponse, error) {
	body := map[string]string{"username": req.Username, "password": req.Password}

	var resp types.AuthResponse
	err := c.anonymous().do(ctx, http.MethodPost, "/api/auth/login/", nil, body, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, req types.RegisterRequest) (types.AuthResponse, error) {
	var resp types.AuthResponse
	err := c.anonymous().do(ctx, http.MethodPost, "/api/auth/register/", nil, req, &resp)
	return resp, err
}

// Logout invalidates refresh on the service. The call is authenticated with
// the client's credentials.
func (c *Client) Logout(ctx context.Context, refresh string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout/", nil, map[string]string{"refresh": refresh}, nil)
}

// RefreshToken exchanges a refresh token for a new access token. Services
// that rotate refresh tokens also return a new refresh token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (types.RefreshResponse, error) {
	var resp types.RefreshResponse
	err := c.anonymous().do(ctx, http.MethodPost, "/api/auth/token/refresh/", nil, map[string]string{"refresh": refresh}, &resp)
	return resp, err
}

func (c *Client) anonymous() *Client {
	if c.creds == nil {
		return c
	}
	return c.WithCredentials(nil)
}
