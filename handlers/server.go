// Package handlers is the HTTP view server: each signed-in browser session
// owns one task list page and drives it through small JSON actions. Every
// action answers with a snapshot of the page.
package handlers

import (
	"net/http"
	"time"

	"clementus360/taskboard/backend"
	"clementus360/taskboard/config"
	"clementus360/taskboard/form"
	"clementus360/taskboard/listpage"
	"clementus360/taskboard/middleware"

	"github.com/sirupsen/logrus"
)

type Server struct {
	backend    backend.Backend
	workspaces *Workspaces
	pageOpts   listpage.Options
	validator  *form.Validator
	log        logrus.FieldLogger
}

// NewServer serves list pages built with opts for accounts from b.
func NewServer(b backend.Backend, opts listpage.Options, log logrus.FieldLogger) *Server {
	if opts.Validator == nil {
		opts.Validator = form.NewValidator(nil)
	}
	if opts.Logger == nil {
		opts.Logger = log
	}
	return &Server{
		backend:    b,
		workspaces: NewWorkspaces(),
		pageOpts:   opts,
		validator:  opts.Validator,
		log:        log.WithField("component", "handlers"),
	}
}

func (s *Server) Workspaces() *Workspaces {
	return s.workspaces
}

// HasWorkspace is the lookup RequireSession uses.
func (s *Server) HasWorkspace(id string) bool {
	return s.workspaces.Exists(id)
}

// PruneEvery drops idle workspaces on a timer until stop is closed.
func (s *Server) PruneEvery(interval, maxIdle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.workspaces.Prune(maxIdle); n > 0 {
				s.log.WithFields(logrus.Fields{"removed": n, "open": s.workspaces.Len()}).Info("Pruned idle workspaces")
			}
		case <-stop:
			return
		}
	}
}

// workspace resolves the caller's workspace, writing a 401 if it is gone.
func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (*Workspace, bool) {
	id, ok := middleware.SessionID(r.Context())
	if !ok {
		writeError(w, "Not signed in", http.StatusUnauthorized)
		return nil, false
	}
	ws, ok := s.workspaces.Get(id)
	if !ok {
		writeError(w, "Session expired, please sign in again", http.StatusUnauthorized)
		return nil, false
	}
	return ws, true
}

// action runs fn against the caller's page and answers with the view.
func (s *Server) action(w http.ResponseWriter, r *http.Request, fn func(p *listpage.Page) error) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	if err := fn(ws.Page); err != nil {
		s.log.WithError(err).WithField("path", r.URL.Path).Debug("Action refused")
		writeActionError(w, err)
		return
	}
	s.respond(w, r, ws.Page, http.StatusOK)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, page *listpage.Page, status int) {
	if waitRequested(r) {
		page.Wait()
	}
	view := page.Snapshot()
	writeJSON(w, status, ViewResponse{Success: true, View: &view})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
