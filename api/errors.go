package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// HTTPError is a non-2xx answer from the service.
type HTTPError struct {
	Status  int
	Message string
	// Fields holds per-field validation messages when the service sent them.
	Fields map[string][]string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task service returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("task service returned %d: %s", e.Status, e.Message)
}

// errorBody covers the shapes the service uses for errors: DRF's
// {"detail"}, the auth endpoints' {"message", "errors", "error"}, and a bare
// serializer error map.
type errorBody struct {
	Detail  string              `json:"detail"`
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

const maxErrorBody = 64 << 10

func newHTTPError(resp *http.Response) *HTTPError {
	e := &HTTPError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return e
	}

	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Detail != "":
			e.Message = body.Detail
		case body.Message != "":
			e.Message = body.Message
		case body.Error != "":
			e.Message = body.Error
		}
		e.Fields = body.Errors
	}
	if e.Fields == nil {
		var fields map[string][]string
		if json.Unmarshal(data, &fields) == nil && len(fields) > 0 {
			e.Fields = fields
		}
	}
	if e.Message == "" && len(e.Fields) > 0 {
		e.Message = summarize(e.Fields)
	}
	return e
}

func summarize(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(fields[k], " "))
	}
	return strings.Join(parts, "; ")
}
