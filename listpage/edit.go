package listpage

import (
	"context"
	"time"

	"clementus360/taskboard/form"
	"clementus360/taskboard/types"
)

type EditMode string

const (
	ModeCreate EditMode = "create"
	ModeUpdate EditMode = "update"
)

// EditSession is the state of the open create/update form.
type EditSession struct {
	target *types.Task
	form   form.TaskForm
	busy   bool
	errors map[string]string
}

// OpenEditSession starts a create session when task is nil, otherwise an
// update session pre-filled from task with its due date read in loc.
func OpenEditSession(task *types.Task, loc *time.Location) *EditSession {
	if task == nil {
		return &EditSession{form: form.NewTaskForm()}
	}
	t := *task
	return &EditSession{target: &t, form: form.FromTask(t, loc)}
}

func (s *EditSession) Mode() EditMode {
	if s.target == nil {
		return ModeCreate
	}
	return ModeUpdate
}

// TaskID is the id being updated, or 0 in create mode.
func (s *EditSession) TaskID() int64 {
	if s.target == nil {
		return 0
	}
	return s.target.ID
}

func (s *EditSession) Form() form.TaskForm       { return s.form }
func (s *EditSession) Busy() bool                { return s.busy }
func (s *EditSession) Errors() map[string]string { return s.errors }

// dispatch sends the fields to create or update depending on the mode.
func (s *EditSession) dispatch(ctx context.Context, svc Service, fields types.TaskFields) (types.Task, error) {
	if s.target == nil {
		return svc.Create(ctx, fields)
	}
	return svc.Update(ctx, s.target.ID, fields)
}
