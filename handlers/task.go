package handlers

import (
	"net/http"

	"clementus360/taskboard/form"
	"clementus360/taskboard/listpage"
)

// DeleteTaskHandler opens the delete confirmation. The task is deleted only
// once the gate is confirmed.
func (s *Server) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	s.action(w, r, func(p *listpage.Page) error {
		return p.RequestDelete(id)
	})
}

func (s *Server) ToggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	s.action(w, r, func(p *listpage.Page) error {
		return p.RequestToggle(id)
	})
}

func (s *Server) OpenCreateHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error {
		return p.OpenCreate()
	})
}

func (s *Server) OpenEditHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	s.action(w, r, func(p *listpage.Page) error {
		return p.OpenEdit(id)
	})
}

// SaveEditHandler submits the open form. Field problems answer 422 with a
// message per field.
func (s *Server) SaveEditHandler(w http.ResponseWriter, r *http.Request) {
	var values form.TaskForm
	if err := decodeJSON(r, &values); err != nil {
		s.log.WithError(err).Warn("Failed to decode task form")
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	s.action(w, r, func(p *listpage.Page) error {
		return p.SaveEdit(values)
	})
}

func (s *Server) CloseEditHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error {
		return p.CloseEdit()
	})
}

func (s *Server) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error {
		return p.Confirm()
	})
}

func (s *Server) CancelHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error {
		return p.Cancel()
	})
}

func (s *Server) DismissHandler(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, func(p *listpage.Page) error {
		return p.Dismiss()
	})
}
