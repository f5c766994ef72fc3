package backend

import (
	"context"
	"fmt"

	"clementus360/taskboard/config"
	"clementus360/taskboard/session"
	"clementus360/taskboard/supabase"
	"clementus360/taskboard/types"
)

// Supabase signs in with an access token issued by Supabase Auth. Queries
// run as that user.
type Supabase struct {
	settings config.Settings
}

func NewSupabase(settings config.Settings) *Supabase {
	return &Supabase{settings: settings}
}

func (b *Supabase) Login(ctx context.Context, req types.LoginRequest) (Account, error) {
	if req.AccessToken == "" {
		return Account{}, fmt.Errorf("%w: access_token is required", ErrInvalidCredentials)
	}

	client, claims, err := supabase.ClientForToken(b.settings, req.AccessToken)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return Account{
		Service: supabase.NewTaskStore(client, claims.Subject),
		Session: session.NewClaims(claims.User(), req.AccessToken),
	}, nil
}

// Register is handled by Supabase Auth itself.
func (b *Supabase) Register(ctx context.Context, req types.RegisterRequest) (Account, error) {
	return Account{}, fmt.Errorf("register: %w", ErrUnsupported)
}
