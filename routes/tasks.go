package routes

import (
	"net/http"

	"clementus360/taskboard/handlers"
)

// RegisterTaskRoutes registers per-task actions and the task editor
func RegisterTaskRoutes(mux *http.ServeMux, srv *handlers.Server, protected func(http.Handler) http.Handler) {
	mux.Handle("POST /tasks/{id}/delete", guarded(protected, srv.DeleteTaskHandler))
	mux.Handle("POST /tasks/{id}/toggle", guarded(protected, srv.ToggleTaskHandler))

	mux.Handle("POST /editor", guarded(protected, srv.OpenCreateHandler))
	mux.Handle("POST /editor/{id}", guarded(protected, srv.OpenEditHandler))
	mux.Handle("PUT /editor", guarded(protected, srv.SaveEditHandler))
	mux.Handle("DELETE /editor", guarded(protected, srv.CloseEditHandler))
}
