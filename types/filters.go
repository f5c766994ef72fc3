package types

// Ordering is the sort key understood by the collection service.
// A leading "-" means descending.
type Ordering string

const (
	OrderCreatedDesc  Ordering = "-created_at"
	OrderCreatedAsc   Ordering = "created_at"
	OrderTitleAsc     Ordering = "title"
	OrderTitleDesc    Ordering = "-title"
	OrderDueAsc       Ordering = "due_date"
	OrderDueDesc      Ordering = "-due_date"
	OrderPriorityAsc  Ordering = "priority"
	OrderPriorityDesc Ordering = "-priority"
)

var Orderings = []Ordering{
	OrderCreatedDesc, OrderCreatedAsc,
	OrderTitleAsc, OrderTitleDesc,
	OrderDueAsc, OrderDueDesc,
	OrderPriorityAsc, OrderPriorityDesc,
}

// Field returns the column name without the direction prefix.
func (o Ordering) Field() string {
	if len(o) > 0 && o[0] == '-' {
		return string(o[1:])
	}
	return string(o)
}

func (o Ordering) Descending() bool {
	return len(o) > 0 && o[0] == '-'
}

// Criteria is one snapshot of the list filters. It is a plain value: copying
// it is how a draft becomes the applied snapshot.
type Criteria struct {
	Search      string   `json:"search" url:"search,omitempty"`
	Status      Status   `json:"status" url:"status,omitempty"`
	Priority    Priority `json:"priority" url:"priority,omitempty"`
	Ordering    Ordering `json:"ordering" url:"ordering,omitempty"`
	DueDateFrom string   `json:"due_date_from" url:"due_date_from,omitempty"` // YYYY-MM-DD
	DueDateTo   string   `json:"due_date_to" url:"due_date_to,omitempty"`     // YYYY-MM-DD
	OverdueOnly bool     `json:"overdue" url:"overdue,omitempty"`
}

// DefaultCriteria is what "clear filters" resets to.
func DefaultCriteria() Criteria {
	return Criteria{Ordering: OrderCreatedDesc}
}

// ListQuery is the full request sent by list: pagination plus criteria.
type ListQuery struct {
	Page     int `json:"page" url:"page,omitempty"`
	PageSize int `json:"page_size" url:"page_size,omitempty"`
	Criteria
}
