// Package listpage is the engine behind the task list page: the filter and
// pagination state, the loader that keeps the displayed tasks in step with
// the collection service, the confirmation gate that guards every mutation,
// and the edit session for the create/update form.
//
// A Page is a single logical thread of control. Every exported method takes
// the page lock, mutates state, and may start remote calls on goroutines.
// Those goroutines never touch state directly; they re-acquire the lock to
// apply their settled result.
package listpage

import (
	"context"
	"errors"

	"clementus360/taskboard/types"
)

// Service is the remote task collection.
type Service interface {
	List(ctx context.Context, q types.ListQuery) (types.ListResponse, error)
	Create(ctx context.Context, fields types.TaskFields) (types.Task, error)
	Update(ctx context.Context, id int64, fields types.TaskFields) (types.Task, error)
	Delete(ctx context.Context, id int64) error
	// ToggleCompletion flips completion server-side. The returned task is
	// authoritative for the new state.
	ToggleCompletion(ctx context.Context, id int64) (types.Task, error)
}

// Session is the authenticated user the page is shown to.
type Session interface {
	CurrentUser() (types.User, bool)
	Logout(ctx context.Context) error
}

var (
	ErrBusy              = errors.New("another change is still in progress")
	ErrGateBusy          = errors.New("confirmation is executing")
	ErrInvalidTransition = errors.New("invalid confirmation transition")
	ErrTaskNotFound      = errors.New("task is not on the current page")
	ErrNoEditSession     = errors.New("no task is being edited")
	ErrPageSize          = errors.New("page size not allowed")
	ErrUnknownField      = errors.New("unknown filter field")
	ErrFieldShape        = errors.New("filter value has the wrong type")
)
