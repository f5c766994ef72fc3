// Package memstore is an in-memory task collection. It behaves like the
// remote service (filtering, ordering, pagination, server-computed overdue
// flag, toggle endpoint) and backs the "memory" backend and tests.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"clementus360/taskboard/types"
)

var ErrNotFound = errors.New("task not found")

const dateLayout = "2006-01-02"

type Store struct {
	mu     sync.RWMutex
	tasks  map[int64]types.Task
	nextID int64
	now    func() time.Time
	bare   bool
}

type Option func(*Store)

// WithClock overrides time.Now for created_at and overdue computation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithBareList makes List answer like an unpaginated service: every match
// in one response with no count envelope.
func WithBareList() Option {
	return func(s *Store) { s.bare = true }
}

func New(opts ...Option) *Store {
	s := &Store{
		tasks: make(map[int64]types.Task),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed inserts tasks as-is, assigning ids to those without one.
func (s *Store) Seed(tasks ...types.Task) []types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == 0 {
			s.nextID++
			t.ID = s.nextID
		} else if t.ID > s.nextID {
			s.nextID = t.ID
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		t.UpdatedAt = t.CreatedAt
		t.IsCompleted = t.Status == types.StatusCompleted
		s.tasks[t.ID] = t
		out = append(out, s.decorate(t))
	}
	return out
}

func (s *Store) List(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]types.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		t = s.decorate(t)
		if s.matches(t, q.Criteria) {
			matches = append(matches, t)
		}
	}
	sortTasks(matches, q.Ordering)

	if s.bare {
		return types.ListResponse{Results: matches, Count: len(matches)}, nil
	}

	resp := types.ListResponse{Count: len(matches), Enveloped: true, Results: []types.Task{}}
	page, size := max(q.Page, 1), q.PageSize
	if size <= 0 {
		resp.Results = matches
		return resp, nil
	}
	start := (page - 1) * size
	if start < len(matches) {
		resp.Results = matches[start:min(start+size, len(matches))]
	}
	return resp, nil
}

func (s *Store) Get(ctx context.Context, id int64) (types.Task, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return types.Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s.decorate(t), nil
}

func (s *Store) Create(ctx context.Context, fields types.TaskFields) (types.Task, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now()
	t := types.Task{ID: s.nextID, CreatedAt: now}
	s.apply(&t, fields, now)
	s.tasks[t.ID] = t
	return s.decorate(t), nil
}

func (s *Store) Update(ctx context.Context, id int64, fields types.TaskFields) (types.Task, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return types.Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	s.apply(&t, fields, s.now())
	s.tasks[id] = t
	return s.decorate(t), nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	delete(s.tasks, id)
	return nil
}

// ToggleCompletion completes an open task or reopens a completed one.
func (s *Store) ToggleCompletion(ctx context.Context, id int64) (types.Task, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return types.Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	now := s.now()
	if t.IsCompleted {
		setStatus(&t, types.StatusPending, now)
	} else {
		setStatus(&t, types.StatusCompleted, now)
	}
	t.UpdatedAt = now
	s.tasks[id] = t
	return s.decorate(t), nil
}

func (s *Store) apply(t *types.Task, f types.TaskFields, now time.Time) {
	t.Title = f.Title
	t.Description = f.Description
	t.Priority = f.Priority
	if t.Priority == "" {
		t.Priority = types.PriorityMedium
	}
	t.DueDate = f.DueDate
	t.Tags = normalizeTags(f.Tags)
	status := f.Status
	if status == "" {
		status = types.StatusPending
	}
	setStatus(t, status, now)
	t.UpdatedAt = now
}

// setStatus keeps is_completed and completed_at in step with status.
func setStatus(t *types.Task, status types.Status, now time.Time) {
	t.Status = status
	switch {
	case status == types.StatusCompleted && !t.IsCompleted:
		t.IsCompleted = true
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	case status != types.StatusCompleted && t.IsCompleted:
		t.IsCompleted = false
		t.CompletedAt = nil
	}
}

// decorate fills in the computed fields.
func (s *Store) decorate(t types.Task) types.Task {
	now := s.now()
	t.IsOverdue = t.DueDate != nil && !t.IsCompleted && now.After(*t.DueDate)
	t.DaysUntilDue = nil
	if t.DueDate != nil {
		days := int(t.DueDate.Sub(now).Hours() / 24)
		t.DaysUntilDue = &days
	}
	return t
}

func (s *Store) matches(t types.Task, c types.Criteria) bool {
	if c.Status != "" && t.Status != c.Status {
		return false
	}
	if c.Priority != "" && t.Priority != c.Priority {
		return false
	}
	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(t.Tags), needle) {
			return false
		}
	}
	if c.OverdueOnly && !t.IsOverdue {
		return false
	}
	if c.DueDateFrom != "" || c.DueDateTo != "" {
		if t.DueDate == nil {
			return false
		}
		loc := t.DueDate.Location()
		if from, err := time.ParseInLocation(dateLayout, c.DueDateFrom, loc); err == nil && t.DueDate.Before(from) {
			return false
		}
		if to, err := time.ParseInLocation(dateLayout, c.DueDateTo, loc); err == nil && !t.DueDate.Before(to.AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

func sortTasks(tasks []types.Task, ordering types.Ordering) {
	if ordering == "" {
		ordering = types.OrderCreatedDesc
	}
	desc := ordering.Descending()

	less := func(a, b types.Task) int {
		switch ordering.Field() {
		case "title":
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case "priority":
			return a.Priority.Rank() - b.Priority.Rank()
		case "due_date":
			return compareDue(a.DueDate, b.DueDate, desc)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		c := less(tasks[i], tasks[j])
		if c == 0 {
			return tasks[i].ID < tasks[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareDue sorts tasks without a due date last in either direction.
func compareDue(a, b *time.Time, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if desc {
			return -1
		}
		return 1
	case b == nil:
		if desc {
			return 1
		}
		return -1
	}
	return a.Compare(*b)
}

func normalizeTags(tags string) string {
	parts := strings.Split(tags, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
