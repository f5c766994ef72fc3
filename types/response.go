package types

// ErrorResponse is the body of every failed view server request.
type ErrorResponse struct {
	Success      bool              `json:"success"`
	ErrorMessage string            `json:"error,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"` // per-field validation messages
}
