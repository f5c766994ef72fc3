package routes

import (
	"net/http"

	"clementus360/taskboard/handlers"
)

// RegisterAuthRoutes registers sign in, sign up and sign out
func RegisterAuthRoutes(mux *http.ServeMux, srv *handlers.Server, protected func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /auth/login", srv.LoginHandler)
	mux.HandleFunc("POST /auth/register", srv.RegisterHandler)
	mux.Handle("POST /auth/logout", guarded(protected, srv.LogoutHandler))
}
