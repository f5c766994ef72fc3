package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"clementus360/taskboard/backend"
	"clementus360/taskboard/config"
	"clementus360/taskboard/form"
	"clementus360/taskboard/listpage"
	"clementus360/taskboard/types"
)

// ViewResponse answers every list page action.
type ViewResponse struct {
	Success bool           `json:"success"`
	View    *listpage.View `json:"view,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		config.Logger.WithError(err).Warn("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	resp := types.ErrorResponse{
		Success:      false,
		ErrorMessage: message,
	}
	writeJSON(w, status, resp)
}

// writeActionError maps engine and backend errors onto status codes.
func writeActionError(w http.ResponseWriter, err error) {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, types.ErrorResponse{
			Success:      false,
			ErrorMessage: "Please correct the highlighted fields",
			Fields:       verr.Fields,
		})
	case errors.Is(err, listpage.ErrBusy),
		errors.Is(err, listpage.ErrGateBusy),
		errors.Is(err, listpage.ErrInvalidTransition):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, listpage.ErrTaskNotFound),
		errors.Is(err, listpage.ErrNoEditSession):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, listpage.ErrPageSize),
		errors.Is(err, listpage.ErrUnknownField),
		errors.Is(err, listpage.ErrFieldShape):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, backend.ErrInvalidCredentials):
		writeError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, backend.ErrUnsupported):
		writeError(w, err.Error(), http.StatusNotImplemented)
	default:
		config.Logger.WithError(err).Error("Request failed")
		writeError(w, "Something went wrong", http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// waitRequested reports whether the caller asked to see the view after the
// remote calls it started have settled.
func waitRequested(r *http.Request) bool {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return wait
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
