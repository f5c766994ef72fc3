package api

import (
	"context"
	"fmt"
	"net/http"

	"clementus360/taskboard/types"

	"github.com/google/go-querystring/query"
)

const tasksPath = "/api/tasks/"

func taskPath(id int64, suffix string) string {
	return fmt.Sprintf("%s%d/%s", tasksPath, id, suffix)
}

// List fetches one page of tasks. Empty criteria are left out of the query.
func (c *Client) List(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
	values, err := query.Values(q)
	if err != nil {
		return types.ListResponse{}, fmt.Errorf("failed to encode list query: %w", err)
	}

	var resp types.ListResponse
	if err := c.do(ctx, http.MethodGet, tasksPath, values, nil, &resp); err != nil {
		return types.ListResponse{}, err
	}
	return resp, nil
}

func (c *Client) Get(ctx context.Context, id int64) (types.Task, error) {
	var task types.Task
	err := c.do(ctx, http.MethodGet, taskPath(id, ""), nil, nil, &task)
	return task, err
}

func (c *Client) Create(ctx context.Context, fields types.TaskFields) (types.Task, error) {
	var task types.Task
	err := c.do(ctx, http.MethodPost, tasksPath, nil, fields, &task)
	return task, err
}

// Update replaces every editable field of the task.
func (c *Client) Update(ctx context.Context, id int64, fields types.TaskFields) (types.Task, error) {
	var task types.Task
	err := c.do(ctx, http.MethodPut, taskPath(id, ""), nil, fields, &task)
	return task, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id, ""), nil, nil, nil)
}

// ToggleCompletion asks the service to flip the task between completed and
// pending. The returned task reflects the service's decision.
func (c *Client) ToggleCompletion(ctx context.Context, id int64) (types.Task, error) {
	var task types.Task
	err := c.do(ctx, http.MethodPatch, taskPath(id, "toggle/"), nil, nil, &task)
	return task, err
}
