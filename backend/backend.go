// Package backend signs users in against the configured task service and
// hands back the service and session a list page runs on.
package backend

import (
	"context"
	"errors"
	"fmt"

	"clementus360/taskboard/config"
	"clementus360/taskboard/listpage"
	"clementus360/taskboard/types"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnsupported        = errors.New("not supported by this backend")
)

// Account is what a successful sign-in produces.
type Account struct {
	Service listpage.Service
	Session listpage.Session
}

type Backend interface {
	Login(ctx context.Context, req types.LoginRequest) (Account, error)
	Register(ctx context.Context, req types.RegisterRequest) (Account, error)
}

// New builds the backend selected by settings.
func New(settings config.Settings, log logrus.FieldLogger) (Backend, error) {
	switch settings.Backend {
	case config.BackendREST:
		return NewREST(settings.APIURL, log)
	case config.BackendSupabase:
		return NewSupabase(settings), nil
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", settings.Backend)
	}
}
