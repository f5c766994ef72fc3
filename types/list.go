package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ListResponse is what the collection service returns for a list call.
// Older deployments answer with a bare array, paginated ones with an
// envelope of {results, count}.
type ListResponse struct {
	Results   []Task `json:"results"`
	Count     int    `json:"count"`
	Enveloped bool   `json:"-"`
}

func (r *ListResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ListResponse{Results: []Task{}}
		return nil
	}

	if trimmed[0] == '[' {
		var tasks []Task
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return fmt.Errorf("failed to decode task list: %w", err)
		}
		*r = ListResponse{Results: tasks, Count: len(tasks)}
		return nil
	}

	var envelope struct {
		Results []Task `json:"results"`
		Count   *int   `json:"count"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return fmt.Errorf("failed to decode task page: %w", err)
	}
	if envelope.Results == nil {
		envelope.Results = []Task{}
	}

	*r = ListResponse{Results: envelope.Results, Enveloped: true}
	if envelope.Count != nil {
		r.Count = *envelope.Count
	} else {
		r.Count = len(envelope.Results)
	}
	return nil
}
