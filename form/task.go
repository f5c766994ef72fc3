// Package form holds the client-side forms: field validation and the
// conversion between what the user edits and what the service accepts.
package form

import (
	"fmt"
	"strings"
	"time"

	"clementus360/taskboard/types"
)

const (
	dateLayout   = "2006-01-02"
	MaxTitleLen  = 200
	endOfDayHour = 23
)

// TaskForm is the editable shape of a task. Dates are edited at day
// granularity.
type TaskForm struct {
	Title       string         `json:"title" validate:"required,notblank,max=200"`
	Description string         `json:"description"`
	Priority    types.Priority `json:"priority" validate:"required,priority"`
	Status      types.Status   `json:"status" validate:"required,status"`
	DueDate     string         `json:"due_date" validate:"omitempty,datestr,notpast"`
	Tags        string         `json:"tags"`
}

// NewTaskForm returns the create-mode defaults.
func NewTaskForm() TaskForm {
	return TaskForm{
		Priority: types.PriorityMedium,
		Status:   types.StatusPending,
	}
}

// FromTask pre-fills the form from an existing task, truncating the due date
// to its date in loc, the zone Fields expands it back in. Empty enums fall
// back to the create defaults.
func FromTask(t types.Task, loc *time.Location) TaskForm {
	f := NewTaskForm()
	f.Title = t.Title
	f.Description = t.Description
	f.Tags = t.Tags
	if t.Priority != "" {
		f.Priority = t.Priority
	}
	if t.Status != "" {
		f.Status = t.Status
	}
	if t.DueDate != nil {
		if loc == nil {
			loc = time.Local
		}
		f.DueDate = t.DueDate.In(loc).Format(dateLayout)
	}
	return f
}

// Fields converts the form into the service payload. A due date is expanded
// to the last second of that day in loc.
func (f TaskForm) Fields(loc *time.Location) (types.TaskFields, error) {
	fields := types.TaskFields{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Priority:    f.Priority,
		Status:      f.Status,
		Tags:        f.Tags,
	}

	if f.DueDate != "" {
		due, err := EndOfDay(f.DueDate, loc)
		if err != nil {
			return types.TaskFields{}, err
		}
		fields.DueDate = &due
	}
	return fields, nil
}

// EndOfDay parses a YYYY-MM-DD date and returns 23:59:59 of that day.
func EndOfDay(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), endOfDayHour, 59, 59, 0, loc), nil
}
