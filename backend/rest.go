package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"clementus360/taskboard/api"
	"clementus360/taskboard/form"
	"clementus360/taskboard/session"
	"clementus360/taskboard/types"

	"github.com/sirupsen/logrus"
)

// REST signs in against the task service's auth endpoints.
type REST struct {
	client *api.Client
}

func NewREST(apiURL string, log logrus.FieldLogger) (*REST, error) {
	client, err := api.NewClient(apiURL, api.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &REST{client: client}, nil
}

func (b *REST) Login(ctx context.Context, req types.LoginRequest) (Account, error) {
	resp, err := b.client.Login(ctx, req)
	if err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && (httpErr.Status == http.StatusUnauthorized || httpErr.Status == http.StatusBadRequest) {
			return Account{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, httpErr.Message)
		}
		return Account{}, fmt.Errorf("login failed: %w", err)
	}
	return b.account(resp), nil
}

// Register creates the account and signs in with it. Field errors from the
// service come back as a *form.ValidationError.
func (b *REST) Register(ctx context.Context, req types.RegisterRequest) (Account, error) {
	resp, err := b.client.Register(ctx, req)
	if err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusBadRequest && len(httpErr.Fields) > 0 {
			verr := &form.ValidationError{Fields: make(map[string]string, len(httpErr.Fields))}
			for field, msgs := range httpErr.Fields {
				verr.Fields[field] = strings.Join(msgs, " ")
			}
			return Account{}, verr
		}
		return Account{}, fmt.Errorf("registration failed: %w", err)
	}
	return b.account(resp), nil
}

func (b *REST) account(resp types.AuthResponse) Account {
	tokens := session.NewTokens(nil, resp)
	authed := b.client.WithCredentials(tokens)
	tokens.Bind(authed)
	return Account{Service: authed, Session: tokens}
}
