package routes

import (
	"net/http"

	"clementus360/taskboard/handlers"
)

// RegisterGateRoutes registers the confirmation dialog buttons
func RegisterGateRoutes(mux *http.ServeMux, srv *handlers.Server, protected func(http.Handler) http.Handler) {
	mux.Handle("POST /gate/confirm", guarded(protected, srv.ConfirmHandler))
	mux.Handle("POST /gate/cancel", guarded(protected, srv.CancelHandler))
	mux.Handle("POST /gate/dismiss", guarded(protected, srv.DismissHandler))
}
