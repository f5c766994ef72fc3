package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clementus360/taskboard/types"

	"github.com/supabase-community/postgrest-go"
)

const tasksTable = "tasks"

var ErrNotFound = errors.New("task not found")

// Querier is satisfied by both *supabase.Client and *postgrest.Client.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

// TaskStore serves the task list from the Supabase "tasks" table, scoped to
// one user. The table has the task columns plus user_id; is_overdue and
// days_until_due are computed here since PostgREST has no computed columns
// for them.
type TaskStore struct {
	client Querier
	userID string
	now    func() time.Time
}

func NewTaskStore(client Querier, userID string) *TaskStore {
	return &TaskStore{client: client, userID: userID, now: time.Now}
}

// taskRow is the insert/update payload.
type taskRow struct {
	types.TaskFields
	UserID      string     `json:"user_id"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *TaskStore) List(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
	_ = ctx // postgrest-go has no context support

	query := s.client.From(tasksTable).
		Select("*", "exact", false).
		Eq("user_id", s.userID)

	c := q.Criteria
	if c.Status != "" {
		query = query.Eq("status", string(c.Status))
	}
	if c.Priority != "" {
		query = query.Eq("priority", string(c.Priority))
	}
	if term := sanitizeSearch(c.Search); term != "" {
		pattern := "*" + term + "*"
		query = query.Or(fmt.Sprintf("title.ilike.%s,description.ilike.%s,tags.ilike.%s", pattern, pattern, pattern), "")
	}
	if c.DueDateFrom != "" {
		query = query.Gte("due_date", c.DueDateFrom)
	}
	if c.DueDateTo != "" {
		if to, err := time.Parse("2006-01-02", c.DueDateTo); err == nil {
			query = query.Lt("due_date", to.AddDate(0, 0, 1).Format("2006-01-02"))
		}
	}
	if c.OverdueOnly {
		query = query.Lt("due_date", s.now().UTC().Format(time.RFC3339)).
			Eq("is_completed", "false")
	}

	ordering := c.Ordering
	if ordering == "" {
		ordering = types.OrderCreatedDesc
	}
	query = query.
		Order(ordering.Field(), &postgrest.OrderOpts{Ascending: !ordering.Descending(), NullsFirst: false}).
		Order("id", &postgrest.OrderOpts{Ascending: true})

	if q.PageSize > 0 {
		from := (max(q.Page, 1) - 1) * q.PageSize
		query = query.Range(from, from+q.PageSize-1, "")
	}

	resp, count, err := query.Execute()
	if err != nil {
		return types.ListResponse{}, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	var tasks []types.Task
	if err := json.Unmarshal(resp, &tasks); err != nil {
		return types.ListResponse{}, fmt.Errorf("failed to decode task data: %w", err)
	}
	for i := range tasks {
		tasks[i] = s.decorate(tasks[i])
	}
	if tasks == nil {
		tasks = []types.Task{}
	}
	return types.ListResponse{Results: tasks, Count: int(count), Enveloped: true}, nil
}

func (s *TaskStore) Get(ctx context.Context, id int64) (types.Task, error) {
	_ = ctx

	resp, _, err := s.client.From(tasksTable).
		Select("*", "", false).
		Eq("id", strconv.FormatInt(id, 10)).
		Eq("user_id", s.userID).
		Execute()
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to fetch task %d: %w", id, err)
	}
	return s.single(resp, id)
}

func (s *TaskStore) Create(ctx context.Context, fields types.TaskFields) (types.Task, error) {
	_ = ctx

	row := s.row(fields, nil)
	resp, _, err := s.client.From(tasksTable).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return s.single(resp, 0)
}

func (s *TaskStore) Update(ctx context.Context, id int64, fields types.TaskFields) (types.Task, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return types.Task{}, err
	}
	return s.write(id, s.row(fields, &current))
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	_ = ctx

	resp, _, err := s.client.From(tasksTable).
		Delete("representation", "").
		Eq("id", strconv.FormatInt(id, 10)).
		Eq("user_id", s.userID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	_, err = s.single(resp, id)
	return err
}

// ToggleCompletion completes an open task or reopens a completed one.
func (s *TaskStore) ToggleCompletion(ctx context.Context, id int64) (types.Task, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return types.Task{}, err
	}

	fields := types.TaskFields{
		Title:       current.Title,
		Description: current.Description,
		Priority:    current.Priority,
		DueDate:     current.DueDate,
		Tags:        current.Tags,
		Status:      types.StatusCompleted,
	}
	if current.IsCompleted {
		fields.Status = types.StatusPending
	}
	return s.write(id, s.row(fields, &current))
}

func (s *TaskStore) write(id int64, row taskRow) (types.Task, error) {
	resp, _, err := s.client.From(tasksTable).
		Update(row, "representation", "").
		Eq("id", strconv.FormatInt(id, 10)).
		Eq("user_id", s.userID).
		Execute()
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return s.single(resp, id)
}

// row builds the stored shape, keeping is_completed and completed_at in step
// with the status.
func (s *TaskStore) row(fields types.TaskFields, current *types.Task) taskRow {
	now := s.now().UTC()
	if fields.Priority == "" {
		fields.Priority = types.PriorityMedium
	}
	if fields.Status == "" {
		fields.Status = types.StatusPending
	}

	row := taskRow{TaskFields: fields, UserID: s.userID, UpdatedAt: now}
	if fields.Status == types.StatusCompleted {
		row.IsCompleted = true
		row.CompletedAt = &now
		if current != nil && current.CompletedAt != nil {
			row.CompletedAt = current.CompletedAt
		}
	}
	return row
}

func (s *TaskStore) single(resp []byte, id int64) (types.Task, error) {
	var tasks []types.Task
	if err := json.Unmarshal(resp, &tasks); err != nil {
		return types.Task{}, fmt.Errorf("failed to decode task data: %w", err)
	}
	if len(tasks) == 0 {
		return types.Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s.decorate(tasks[0]), nil
}

func (s *TaskStore) decorate(t types.Task) types.Task {
	now := s.now()
	t.IsOverdue = t.DueDate != nil && !t.IsCompleted && now.After(*t.DueDate)
	t.DaysUntilDue = nil
	if t.DueDate != nil {
		days := int(t.DueDate.Sub(now).Hours() / 24)
		t.DaysUntilDue = &days
	}
	return t
}

// sanitizeSearch drops the characters that would break out of a PostgREST
// or=() filter.
func sanitizeSearch(term string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '*', '"', '\\':
			return -1
		}
		return r
	}, term))
}
