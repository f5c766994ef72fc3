package routes

import (
	"net/http"

	"clementus360/taskboard/config"
	"clementus360/taskboard/handlers"
	"clementus360/taskboard/middleware"
)

// RegisterAllRoutes registers all application routes. Everything except
// signing in needs a live workspace cookie.
func RegisterAllRoutes(mux *http.ServeMux, srv *handlers.Server) {
	protected := middleware.RequireSession(config.SessionCookieName, srv.HasWorkspace)

	RegisterAuthRoutes(mux, srv, protected)
	RegisterListRoutes(mux, srv, protected)
	RegisterTaskRoutes(mux, srv, protected)
	RegisterGateRoutes(mux, srv, protected)
}

func guarded(protected func(http.Handler) http.Handler, fn http.HandlerFunc) http.Handler {
	return protected(fn)
}
