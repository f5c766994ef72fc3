package listpage

import (
	"fmt"

	"clementus360/taskboard/types"
)

// Field names a criterion editable from the filter panel. The names match the
// request parameters.
type Field string

const (
	FieldSearch      Field = "search"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldOrdering    Field = "ordering"
	FieldDueDateFrom Field = "due_date_from"
	FieldDueDateTo   Field = "due_date_to"
	FieldOverdue     Field = "overdue"
)

// Filters holds the draft criteria being edited and the applied criteria
// that produced (or is producing) the displayed list.
type Filters struct {
	draft   types.Criteria
	applied types.Criteria
}

func NewFilters() Filters {
	return Filters{draft: types.DefaultCriteria(), applied: types.DefaultCriteria()}
}

func (f Filters) Draft() types.Criteria   { return f.draft }
func (f Filters) Applied() types.Criteria { return f.applied }

// SetDraftField changes one draft criterion. Only the value's type is
// checked; the service decides which values it accepts.
func (f *Filters) SetDraftField(field Field, value any) error {
	next := f.draft

	switch field {
	case FieldSearch, FieldDueDateFrom, FieldDueDateTo:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants a string, got %T", ErrFieldShape, field, value)
		}
		switch field {
		case FieldSearch:
			next.Search = s
		case FieldDueDateFrom:
			next.DueDateFrom = s
		default:
			next.DueDateTo = s
		}
	case FieldStatus:
		switch v := value.(type) {
		case types.Status:
			next.Status = v
		case string:
			next.Status = types.Status(v)
		default:
			return fmt.Errorf("%w: %s wants a status, got %T", ErrFieldShape, field, value)
		}
	case FieldPriority:
		switch v := value.(type) {
		case types.Priority:
			next.Priority = v
		case string:
			next.Priority = types.Priority(v)
		default:
			return fmt.Errorf("%w: %s wants a priority, got %T", ErrFieldShape, field, value)
		}
	case FieldOrdering:
		switch v := value.(type) {
		case types.Ordering:
			next.Ordering = v
		case string:
			next.Ordering = types.Ordering(v)
		default:
			return fmt.Errorf("%w: %s wants an ordering, got %T", ErrFieldShape, field, value)
		}
	case FieldOverdue:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s wants a bool, got %T", ErrFieldShape, field, value)
		}
		next.OverdueOnly = b
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	f.draft = next
	return nil
}

// Apply freezes the draft as the applied criteria and returns it.
func (f *Filters) Apply() types.Criteria {
	f.applied = f.draft
	return f.applied
}

// Clear resets both snapshots to the default criteria.
func (f *Filters) Clear() {
	f.draft = types.DefaultCriteria()
	f.applied = types.DefaultCriteria()
}

// HasActiveFilters reports whether the draft narrows or reorders the list.
func (f Filters) HasActiveFilters() bool {
	return f.draft != types.DefaultCriteria()
}
