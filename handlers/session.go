package handlers

import (
	"net/http"

	"clementus360/taskboard/backend"
	"clementus360/taskboard/listpage"
	"clementus360/taskboard/types"

	"github.com/sirupsen/logrus"
)

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.log.WithError(err).Warn("Invalid login body")
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	acct, err := s.backend.Login(r.Context(), req)
	if err != nil {
		s.log.WithError(err).WithField("username", req.Username).Warn("Login failed")
		writeActionError(w, err)
		return
	}
	s.open(w, r, acct, http.StatusOK)
}

func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.log.WithError(err).Warn("Invalid register body")
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := s.validator.Register(req); err != nil {
		writeActionError(w, err)
		return
	}

	acct, err := s.backend.Register(r.Context(), req)
	if err != nil {
		s.log.WithError(err).Warn("Registration failed")
		writeActionError(w, err)
		return
	}
	s.open(w, r, acct, http.StatusCreated)
}

// LogoutHandler ends the session remotely and drops the workspace. The
// workspace is dropped even when the service call fails.
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	err := ws.Page.Logout(r.Context())
	s.workspaces.Remove(ws.ID)
	s.clearSessionCookie(w)

	if err != nil {
		writeError(w, "Signed out here, but the server could not end the session", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, types.ErrorResponse{Success: true})
}

// open builds a list page for a signed-in account, starts its first load
// and hands the browser the workspace cookie.
func (s *Server) open(w http.ResponseWriter, r *http.Request, acct backend.Account, status int) {
	page, err := listpage.New(acct.Service, acct.Session, s.pageOpts)
	if err != nil {
		writeActionError(w, err)
		return
	}
	page.Load()

	ws := s.workspaces.Add(page)
	s.setSessionCookie(w, r, ws.ID)

	user, _ := page.User()
	s.log.WithFields(logrus.Fields{"workspace": ws.ID, "username": user.Username}).Info("Workspace opened")
	s.respond(w, r, page, status)
}
