package listpage

import (
	"clementus360/taskboard/form"
	"clementus360/taskboard/types"
)

// View is a point-in-time copy of everything the list page renders.
type View struct {
	User             *types.User    `json:"user,omitempty"`
	Tasks            []types.Task   `json:"tasks"`
	Loading          bool           `json:"loading"`
	Draft            types.Criteria `json:"draft"`
	Applied          types.Criteria `json:"applied"`
	HasActiveFilters bool           `json:"has_active_filters"`
	Pagination       PaginationView `json:"pagination"`
	Gate             GateView       `json:"gate"`
	Editor           *EditorView    `json:"editor,omitempty"`
}

type PaginationView struct {
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	TotalItems   int   `json:"total_items"`
	TotalPages   int   `json:"total_pages"`
	PageSizes    []int `json:"page_sizes"`
	VisiblePages []int `json:"visible_pages"`
	From         int   `json:"from"`
	To           int   `json:"to"`
}

type GateView struct {
	Phase       Phase  `json:"phase"`
	Kind        Kind   `json:"kind,omitempty"`
	Title       string `json:"title,omitempty"`
	Message     string `json:"message,omitempty"`
	ConfirmText string `json:"confirm_text,omitempty"`
	CancelText  string `json:"cancel_text,omitempty"`
	ShowCancel  bool   `json:"show_cancel"`
	Busy        bool   `json:"busy"`
}

type EditorView struct {
	Mode   EditMode          `json:"mode"`
	TaskID int64             `json:"task_id,omitempty"`
	Form   form.TaskForm     `json:"form"`
	Busy   bool              `json:"busy"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Snapshot copies the page state for rendering.
func (p *Page) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	from, to := p.pager.Range()
	v := View{
		Tasks:            p.loader.Tasks(),
		Loading:          p.loader.Loading(),
		Draft:            p.filters.Draft(),
		Applied:          p.filters.Applied(),
		HasActiveFilters: p.filters.HasActiveFilters(),
		Pagination: PaginationView{
			Page:         p.pager.Page(),
			PageSize:     p.pager.PageSize(),
			TotalItems:   p.pager.TotalItems(),
			TotalPages:   p.pager.TotalPages(),
			PageSizes:    p.pager.Sizes(),
			VisiblePages: p.pager.VisiblePages(),
			From:         from,
			To:           to,
		},
		Gate: gateView(p.gate),
	}

	if user, ok := p.User(); ok {
		v.User = &user
	}
	if p.edit != nil {
		v.Editor = &EditorView{
			Mode:   p.edit.Mode(),
			TaskID: p.edit.TaskID(),
			Form:   p.edit.Form(),
			Busy:   p.edit.Busy(),
			Errors: p.edit.Errors(),
		}
	}
	return v
}

func gateView(g Gate) GateView {
	view := GateView{Phase: g.Phase(), Busy: g.Busy()}

	var req Request
	switch s := g.State().(type) {
	case AwaitingConfirmation:
		req = s.Request
		view.ShowCancel = true
	case Executing:
		// Every control is disabled until the action settles.
		req = s.Request
	case Outcome:
		req = s.Request
	default:
		return view
	}

	view.Kind = req.Kind
	view.Title = req.Title
	view.Message = req.Message
	view.ConfirmText = req.ConfirmText
	view.CancelText = req.CancelText
	if view.ConfirmText == "" {
		view.ConfirmText = "OK"
	}
	return view
}
