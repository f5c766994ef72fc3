package routes

import (
	"net/http"

	"clementus360/taskboard/handlers"
)

// RegisterListRoutes registers the filter panel and pagination actions
func RegisterListRoutes(mux *http.ServeMux, srv *handlers.Server, protected func(http.Handler) http.Handler) {
	mux.Handle("GET /view", guarded(protected, srv.ViewHandler))
	mux.Handle("POST /reload", guarded(protected, srv.ReloadHandler))

	// Filters
	mux.Handle("PATCH /filters/draft", guarded(protected, srv.SetDraftHandler))
	mux.Handle("POST /filters/apply", guarded(protected, srv.ApplyFiltersHandler))
	mux.Handle("POST /filters/clear", guarded(protected, srv.ClearFiltersHandler))
	mux.Handle("POST /filters/overdue", guarded(protected, srv.ToggleOverdueHandler))

	// Pagination
	mux.Handle("POST /pages", guarded(protected, srv.GoToPageHandler))
	mux.Handle("POST /pages/size", guarded(protected, srv.PageSizeHandler))
}
