package handlers

import (
	"net/http"

	"clementus360/taskboard/listpage"
)

type draftBody struct {
	Field listpage.Field `json:"field"`
	Value any            `json:"value"`
}

type pageBody struct {
	Page int `json:"page"`
}

type pageSizeBody struct {
	PageSize int `json:"page_size"`
}

func (s *Server) ViewHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error { return nil })
}

// SetDraftHandler edits one draft filter. Nothing is sent to the service
// until the filters are applied.
func (s *Server) SetDraftHandler(w http.ResponseWriter, r *http.Request) {
	var body draftBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	s.action(w, r, func(p *listpage.Page) error {
		return p.SetDraftField(body.Field, body.Value)
	})
}

func (s *Server) ApplyFiltersHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error {
		p.ApplyFilters()
		return nil
	})
}

func (s *Server) ClearFiltersHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error {
		p.ClearFilters()
		return nil
	})
}

func (s *Server) ToggleOverdueHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error {
		p.ToggleOverdue()
		return nil
	})
}

func (s *Server) GoToPageHandler(w http.ResponseWriter, r *http.Request) {
	var body pageBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	s.action(w, r, func(p *listpage.Page) error {
		p.GoToPage(body.Page)
		return nil
	})
}

func (s *Server) PageSizeHandler(w http.ResponseWriter, r *http.Request) {
	var body pageSizeBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	s.action(w, r, func(p *listpage.Page) error {
		return p.SetPageSize(body.PageSize)
	})
}

func (s *Server) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error {
		p.Load()
		return nil
	})
}
