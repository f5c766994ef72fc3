package listpage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clementus360/taskboard/form"
	"clementus360/taskboard/memstore"
	"clementus360/taskboard/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(tasks []types.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestPage_InitialLoad(t *testing.T) {
	p, svc, _ := loaded(t, 25)

	v := p.Snapshot()
	assert.False(t, v.Loading)
	assert.Len(t, v.Tasks, 10)
	assert.Equal(t, "task 25", v.Tasks[0].Title)
	assert.Equal(t, 25, v.Pagination.TotalItems)
	assert.Equal(t, 3, v.Pagination.TotalPages)
	assert.Equal(t, 1, v.Pagination.From)
	assert.Equal(t, 10, v.Pagination.To)
	require.NotNil(t, v.User)
	assert.Equal(t, "Ana", v.User.FirstName)

	q := svc.lastList()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, types.OrderCreatedDesc, q.Ordering)
}

func TestPage_ApplyFiltersCopiesDraftAndResetsPage(t *testing.T) {
	p, svc, _ := loaded(t, 25)

	p.GoToPage(3)
	p.Wait()
	require.Equal(t, 3, p.Snapshot().Pagination.Page)

	before := svc.listCount()
	require.NoError(t, p.SetDraftField(FieldSearch, "task 1"))
	require.NoError(t, p.SetDraftField(FieldOrdering, "title"))

	// Editing the draft sends nothing.
	assert.Equal(t, before, svc.listCount())
	assert.Equal(t, types.DefaultCriteria(), p.Snapshot().Applied)
	assert.True(t, p.Snapshot().HasActiveFilters)

	p.ApplyFilters()
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, v.Draft, v.Applied)
	assert.Equal(t, 1, v.Pagination.Page)

	q := svc.lastList()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, "task 1", q.Search)
	assert.Equal(t, types.OrderTitleAsc, q.Ordering)
	// task 1, task 10..19
	assert.Equal(t, 11, v.Pagination.TotalItems)
	assert.Equal(t, "task 1", v.Tasks[0].Title)
}

func TestPage_ClearFiltersResetsBothSnapshots(t *testing.T) {
	p, svc, _ := loaded(t, 5)

	require.NoError(t, p.SetDraftField(FieldStatus, types.StatusCompleted))
	p.ApplyFilters()
	p.Wait()
	assert.Empty(t, p.Snapshot().Tasks)

	p.ClearFilters()
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, types.DefaultCriteria(), v.Draft)
	assert.Equal(t, types.DefaultCriteria(), v.Applied)
	assert.False(t, v.HasActiveFilters)
	assert.Len(t, v.Tasks, 5)
	assert.Equal(t, types.Status(""), svc.lastList().Status)
}

func TestPage_ToggleOverdueAppliesImmediately(t *testing.T) {
	p, svc, _ := loaded(t, 3)

	p.ToggleOverdue()
	p.Wait()

	v := p.Snapshot()
	assert.True(t, v.Applied.OverdueOnly)
	assert.True(t, svc.lastList().OverdueOnly)
	assert.Equal(t, v.Draft, v.Applied)
}

// Scenario: applied {status: pending, ordering: -created_at}, page 1 of
// size 10, server answers {results: [A, B], count: 2}.
func TestPage_EnvelopedResponseScenario(t *testing.T) {
	taskA := types.Task{ID: 1, Title: "A", Status: types.StatusPending}
	taskB := types.Task{ID: 2, Title: "B", Status: types.StatusPending}
	svc := &stubService{list: func(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
		return types.ListResponse{Results: []types.Task{taskA, taskB}, Count: 2, Enveloped: true}, nil
	}}
	p := newTestPage(t, svc)

	require.NoError(t, p.SetDraftField(FieldStatus, "pending"))
	require.NoError(t, p.SetDraftField(FieldOrdering, types.OrderCreatedDesc))
	p.ApplyFilters()
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, []types.Task{taskA, taskB}, v.Tasks)
	assert.Equal(t, 1, v.Pagination.TotalPages)
	assert.Equal(t, 2, v.Pagination.TotalItems)

	q := svc.queries[len(svc.queries)-1]
	assert.Equal(t, types.StatusPending, q.Status)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PageSize)
}

func TestPage_BareResponseIsOneUnpaginatedPage(t *testing.T) {
	store := memstore.New(memstore.WithClock(stepClock()), memstore.WithBareList())
	seedTasks(store, 23)
	p := newTestPage(t, newRecordingService(store))

	p.Load()
	p.Wait()

	v := p.Snapshot()
	assert.Len(t, v.Tasks, 23)
	assert.Equal(t, 23, v.Pagination.TotalItems)
	assert.Equal(t, 1, v.Pagination.TotalPages)
	assert.Equal(t, 1, v.Pagination.Page)
}

func TestPage_GoToPageClampsAndSetPageSizeResets(t *testing.T) {
	p, svc, _ := loaded(t, 25)

	assert.Equal(t, 3, p.GoToPage(99))
	p.Wait()
	assert.Equal(t, 3, svc.lastList().Page)
	assert.Len(t, p.Snapshot().Tasks, 5)

	assert.Equal(t, 1, p.GoToPage(-4))
	p.Wait()

	p.GoToPage(2)
	p.Wait()
	require.NoError(t, p.SetPageSize(20))
	p.Wait()
	v := p.Snapshot()
	assert.Equal(t, 1, v.Pagination.Page)
	assert.Equal(t, 20, v.Pagination.PageSize)
	assert.Equal(t, 2, v.Pagination.TotalPages)

	assert.ErrorIs(t, p.SetPageSize(7), ErrPageSize)
}

func TestPage_SetPageSizeKeepsTotalsConsistentWhenReloadFails(t *testing.T) {
	p, svc, _ := loaded(t, 25)

	svc.mu.Lock()
	svc.listErr = errors.New("connection reset")
	svc.mu.Unlock()

	require.NoError(t, p.SetPageSize(50))
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, 50, v.Pagination.PageSize)
	assert.Equal(t, 25, v.Pagination.TotalItems)
	assert.Equal(t, 1, v.Pagination.TotalPages)
	assert.Equal(t, 1, p.GoToPage(3))
	p.Wait()
}

func TestPage_LoadFailureKeepsDisplayedTasks(t *testing.T) {
	p, svc, _ := loaded(t, 12)
	before := p.Snapshot()

	svc.mu.Lock()
	svc.listErr = errors.New("connection reset")
	svc.mu.Unlock()

	p.GoToPage(2)
	p.Wait()

	v := p.Snapshot()
	assert.False(t, v.Loading)
	assert.Equal(t, before.Tasks, v.Tasks)
	assert.Equal(t, before.Pagination.TotalItems, v.Pagination.TotalItems)
	assert.Equal(t, PhaseIdle, v.Gate.Phase, "the loader never opens the gate")
}

// Scenario: open delete confirmation for "Buy milk", then cancel.
func TestPage_DeleteCancelled(t *testing.T) {
	store := memstore.New(memstore.WithClock(stepClock()))
	seeded := store.Seed(types.Task{Title: "Buy milk", Status: types.StatusPending})
	svc := newRecordingService(store)
	p := newTestPage(t, svc)
	p.Load()
	p.Wait()
	before := p.Snapshot().Tasks

	require.NoError(t, p.RequestDelete(seeded[0].ID))
	v := p.Snapshot()
	assert.Equal(t, PhaseAwaiting, v.Gate.Phase)
	assert.Equal(t, KindConfirm, v.Gate.Kind)
	assert.Contains(t, v.Gate.Message, "Buy milk")

	require.NoError(t, p.Cancel())
	p.Wait()

	v = p.Snapshot()
	assert.Equal(t, PhaseIdle, v.Gate.Phase)
	assert.Zero(t, svc.deleteCount())
	assert.Equal(t, before, v.Tasks)
}

func TestPage_DeleteSuccessReloadsCurrentPage(t *testing.T) {
	p, svc, seeded := loaded(t, 25)
	p.GoToPage(2)
	p.Wait()

	victim := p.Snapshot().Tasks[0]
	require.NoError(t, p.RequestDelete(victim.ID))
	require.NoError(t, p.Confirm())
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, PhaseOutcome, v.Gate.Phase)
	assert.Equal(t, KindSuccess, v.Gate.Kind)
	assert.Equal(t, 2, v.Pagination.Page)
	assert.Equal(t, 2, svc.lastList().Page)
	assert.Equal(t, 24, v.Pagination.TotalItems)
	assert.NotContains(t, titles(v.Tasks), victim.Title)

	resp, err := svc.Store.List(context.Background(), types.ListQuery{Page: 1, PageSize: 100})
	require.NoError(t, err)
	assert.Len(t, resp.Results, len(seeded)-1)

	require.NoError(t, p.Dismiss())
	assert.Equal(t, PhaseIdle, p.Snapshot().Gate.Phase)
}

// Scenario: confirm delete of task 7, the service fails.
func TestPage_DeleteFailureStillReloads(t *testing.T) {
	p, svc, _ := loaded(t, 10)

	require.NoError(t, p.SetDraftField(FieldPriority, types.PriorityMedium))
	p.ApplyFilters()
	p.Wait()
	applied := svc.lastList()

	svc.mu.Lock()
	svc.deleteErr = errors.New("503 service unavailable")
	svc.mu.Unlock()

	listsBefore := svc.listCount()
	require.NoError(t, p.RequestDelete(7))
	require.NoError(t, p.Confirm())
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, PhaseOutcome, v.Gate.Phase)
	assert.Equal(t, KindError, v.Gate.Kind)
	assert.Equal(t, "Could not delete task", v.Gate.Title)

	assert.Equal(t, listsBefore+1, svc.listCount(), "reloaded after the failure")
	assert.Equal(t, applied, svc.lastList(), "same page and filters")

	_, err := svc.Store.Get(context.Background(), 7)
	assert.NoError(t, err)
	assert.Contains(t, titles(v.Tasks), "task 7")
}

func TestPage_DeleteLastItemOnLastPageStepsBack(t *testing.T) {
	p, svc, _ := loaded(t, 11)
	p.GoToPage(2)
	p.Wait()

	only := p.Snapshot().Tasks
	require.Len(t, only, 1)

	require.NoError(t, p.RequestDelete(only[0].ID))
	require.NoError(t, p.Confirm())
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, 1, v.Pagination.Page)
	assert.Equal(t, 1, v.Pagination.TotalPages)
	assert.Len(t, v.Tasks, 10)
	assert.Equal(t, 1, svc.lastList().Page)
}

func TestPage_ToggleRoundTrip(t *testing.T) {
	p, _, seeded := loaded(t, 3)
	id := seeded[0].ID

	require.NoError(t, p.RequestToggle(id))
	assert.Equal(t, "Complete task", p.Snapshot().Gate.Title)
	require.NoError(t, p.Confirm())
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, "Task completed", v.Gate.Title)
	task := findTask(t, v.Tasks, id)
	assert.True(t, task.IsCompleted)
	assert.Equal(t, types.StatusCompleted, task.Status)

	require.NoError(t, p.Dismiss())
	require.NoError(t, p.RequestToggle(id))
	assert.Equal(t, "Reopen task", p.Snapshot().Gate.Title)
	require.NoError(t, p.Confirm())
	p.Wait()

	v = p.Snapshot()
	assert.Equal(t, "Task reopened", v.Gate.Title)
	task = findTask(t, v.Tasks, id)
	assert.Equal(t, seeded[0].IsCompleted, task.IsCompleted)
}

func TestPage_ToggleFailureEndsInErrorOutcome(t *testing.T) {
	p, svc, seeded := loaded(t, 2)
	svc.toggleErr = errors.New("timeout")

	require.NoError(t, p.RequestToggle(seeded[1].ID))
	require.NoError(t, p.Confirm())
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, KindError, v.Gate.Kind)
	assert.False(t, findTask(t, v.Tasks, seeded[1].ID).IsCompleted)
}

func TestPage_UnknownTaskIsRejected(t *testing.T) {
	p, _, _ := loaded(t, 2)
	assert.ErrorIs(t, p.RequestDelete(404), ErrTaskNotFound)
	assert.ErrorIs(t, p.RequestToggle(404), ErrTaskNotFound)
	assert.ErrorIs(t, p.OpenEdit(404), ErrTaskNotFound)
	assert.Equal(t, PhaseIdle, p.Snapshot().Gate.Phase)
}

func TestPage_TriggersRefusedWhileExecuting(t *testing.T) {
	p, svc, seeded := loaded(t, 3)
	release := make(chan struct{})
	svc.mu.Lock()
	svc.deleteGate = release
	svc.mu.Unlock()

	require.NoError(t, p.RequestDelete(seeded[0].ID))
	require.NoError(t, p.Confirm())

	v := p.Snapshot()
	assert.Equal(t, PhaseExecuting, v.Gate.Phase)
	assert.True(t, v.Gate.Busy)

	assert.ErrorIs(t, p.RequestDelete(seeded[1].ID), ErrBusy)
	assert.ErrorIs(t, p.RequestToggle(seeded[1].ID), ErrBusy)
	assert.ErrorIs(t, p.Confirm(), ErrInvalidTransition)
	assert.ErrorIs(t, p.Cancel(), ErrInvalidTransition)
	assert.ErrorIs(t, p.Dismiss(), ErrInvalidTransition)

	require.NoError(t, p.OpenCreate())
	assert.ErrorIs(t, p.SaveEdit(form.TaskForm{Title: "x", Priority: types.PriorityLow, Status: types.StatusPending}), ErrBusy)

	close(release)
	p.Wait()
	assert.Equal(t, PhaseOutcome, p.Snapshot().Gate.Phase)
}

// Scenario: a new task is saved while on page 3.
func TestPage_SaveNewTaskResetsToFirstPage(t *testing.T) {
	p, svc, _ := loaded(t, 30)
	require.NoError(t, p.SetDraftField(FieldPriority, "medium"))
	p.ApplyFilters()
	p.Wait()
	p.GoToPage(3)
	p.Wait()
	require.Equal(t, 3, p.Snapshot().Pagination.Page)

	require.NoError(t, p.OpenCreate())
	editor := p.Snapshot().Editor
	require.NotNil(t, editor)
	assert.Equal(t, ModeCreate, editor.Mode)
	assert.Equal(t, types.PriorityMedium, editor.Form.Priority)
	assert.Equal(t, types.StatusPending, editor.Form.Status)

	values := editor.Form
	values.Title = "Write report"
	values.DueDate = "2099-05-01"
	require.NoError(t, p.SaveEdit(values))
	p.Wait()

	v := p.Snapshot()
	assert.Nil(t, v.Editor)
	assert.Equal(t, 1, v.Pagination.Page)
	assert.Equal(t, KindSuccess, v.Gate.Kind)
	assert.Equal(t, "Task created", v.Gate.Title)

	q := svc.lastList()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, types.PriorityMedium, q.Priority)
	assert.Equal(t, "Write report", v.Tasks[0].Title)

	require.Len(t, svc.creates, 1)
	require.NotNil(t, svc.creates[0].DueDate)
	assert.Equal(t, time.Date(2099, 5, 1, 23, 59, 59, 0, time.UTC), *svc.creates[0].DueDate)
}

func TestPage_EditExistingTask(t *testing.T) {
	due := time.Date(2099, 3, 4, 15, 30, 0, 0, time.UTC)
	store := memstore.New(memstore.WithClock(stepClock()))
	seeded := store.Seed(types.Task{Title: "Old", Status: types.StatusInProgress, Priority: types.PriorityHigh, DueDate: &due, Tags: "a, b"})
	svc := newRecordingService(store)
	p := newTestPage(t, svc)
	p.Load()
	p.Wait()

	require.NoError(t, p.OpenEdit(seeded[0].ID))
	editor := p.Snapshot().Editor
	require.NotNil(t, editor)
	assert.Equal(t, ModeUpdate, editor.Mode)
	assert.Equal(t, seeded[0].ID, editor.TaskID)
	assert.Equal(t, "2099-03-04", editor.Form.DueDate)
	assert.Equal(t, types.PriorityHigh, editor.Form.Priority)

	values := editor.Form
	values.Title = "New"
	require.NoError(t, p.SaveEdit(values))
	p.Wait()

	v := p.Snapshot()
	assert.Nil(t, v.Editor)
	assert.Equal(t, "Task updated", v.Gate.Title)
	assert.Equal(t, []int64{seeded[0].ID}, svc.updates)
	assert.Empty(t, svc.creates)
	assert.Equal(t, "New", v.Tasks[0].Title)
}

func TestPage_EditKeepsDueDateAcrossZones(t *testing.T) {
	west := time.FixedZone("UTC-3", -3*60*60)
	// 2099-03-04 23:59:59 at UTC-3, as a UTC timestamp column returns it.
	due := time.Date(2099, 3, 5, 2, 59, 59, 0, time.UTC)
	store := memstore.New(memstore.WithClock(stepClock()))
	seeded := store.Seed(types.Task{Title: "Pay rent", Status: types.StatusPending, Priority: types.PriorityLow, DueDate: &due})

	p, err := New(newRecordingService(store), &fakeSession{}, Options{
		Logger:   quietLogger(),
		Timeout:  time.Second,
		Location: west,
	})
	require.NoError(t, err)
	p.Load()
	p.Wait()

	require.NoError(t, p.OpenEdit(seeded[0].ID))
	editor := p.Snapshot().Editor
	require.NotNil(t, editor)
	assert.Equal(t, "2099-03-04", editor.Form.DueDate)

	require.NoError(t, p.SaveEdit(editor.Form))
	p.Wait()

	saved, err := store.Get(context.Background(), seeded[0].ID)
	require.NoError(t, err)
	require.NotNil(t, saved.DueDate)
	assert.True(t, due.Equal(*saved.DueDate), "got %s", saved.DueDate)
}

func TestPage_SaveFailureKeepsEditorOpen(t *testing.T) {
	p, svc, _ := loaded(t, 2)
	svc.saveErr = errors.New("500")

	require.NoError(t, p.OpenCreate())
	values := form.NewTaskForm()
	values.Title = "Flaky"
	require.NoError(t, p.SaveEdit(values))
	p.Wait()

	v := p.Snapshot()
	require.NotNil(t, v.Editor)
	assert.False(t, v.Editor.Busy)
	assert.Equal(t, "Flaky", v.Editor.Form.Title)
	assert.Equal(t, KindError, v.Gate.Kind)
	assert.Len(t, v.Tasks, 2)

	require.NoError(t, p.CloseEdit())
	assert.Nil(t, p.Snapshot().Editor)
	assert.ErrorIs(t, p.CloseEdit(), ErrNoEditSession)
}

func TestPage_SaveValidationNeverDispatches(t *testing.T) {
	p, svc, _ := loaded(t, 1)
	listsBefore := svc.listCount()

	require.NoError(t, p.OpenCreate())
	err := p.SaveEdit(form.TaskForm{Title: "  ", Priority: types.PriorityLow, Status: types.StatusPending, DueDate: "2001-01-01"})

	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "due_date")

	v := p.Snapshot()
	require.NotNil(t, v.Editor)
	assert.Equal(t, verr.Fields, v.Editor.Errors)
	assert.Equal(t, PhaseIdle, v.Gate.Phase)
	assert.Empty(t, svc.creates)
	assert.Equal(t, listsBefore, svc.listCount())
}

func TestPage_SaveWithoutSession(t *testing.T) {
	p, _, _ := loaded(t, 1)
	assert.ErrorIs(t, p.SaveEdit(form.NewTaskForm()), ErrNoEditSession)
}

func TestPage_StaleResponseIsDiscarded(t *testing.T) {
	first := make(chan struct{})
	svc := &stubService{list: func(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
		if q.Search == "" {
			<-first
			return types.ListResponse{Results: []types.Task{{ID: 1, Title: "old"}}, Count: 1, Enveloped: true}, nil
		}
		return types.ListResponse{Results: []types.Task{{ID: 2, Title: "new"}}, Count: 1, Enveloped: true}, nil
	}}
	p := newTestPage(t, svc)

	p.Load()
	require.NoError(t, p.SetDraftField(FieldSearch, "new"))
	p.ApplyFilters()

	require.Eventually(t, func() bool {
		return len(p.Snapshot().Tasks) == 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, p.Snapshot().Loading)

	close(first)
	p.Wait()

	v := p.Snapshot()
	assert.Equal(t, []string{"new"}, titles(v.Tasks))
	assert.False(t, v.Loading)
}

func TestPage_WaitFromSeveralCallersWhileTriggering(t *testing.T) {
	p, svc, _ := loaded(t, 25)
	before := svc.listCount()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				p.GoToPage(j%3 + 1)
				p.Wait()
			}
		}()
	}
	wg.Wait()
	p.Wait()

	assert.False(t, p.Snapshot().Loading)
	assert.Equal(t, before+100, svc.listCount())
}

func TestPage_LogoutDelegatesToSession(t *testing.T) {
	session := &fakeSession{user: types.User{Username: "ana"}}
	p, err := New(&stubService{}, session, Options{Logger: quietLogger()})
	require.NoError(t, err)

	user, ok := p.User()
	require.True(t, ok)
	assert.Equal(t, "ana", user.Username)

	require.NoError(t, p.Logout(context.Background()))
	_, ok = p.User()
	assert.False(t, ok)

	session.err = errors.New("refresh token required")
	assert.Error(t, p.Logout(context.Background()))
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, err := New(nil, nil, Options{})
	assert.Error(t, err)

	_, err = New(&stubService{}, nil, Options{PageSize: 15})
	assert.ErrorIs(t, err, ErrPageSize)
}

func findTask(t *testing.T, tasks []types.Task, id int64) types.Task {
	t.Helper()
	for _, task := range tasks {
		if task.ID == id {
			return task
		}
	}
	t.Fatalf("task %d not displayed", id)
	return types.Task{}
}

// stubService answers List from a function and records the queries.
type stubService struct {
	mu      sync.Mutex
	queries []types.ListQuery
	list    func(ctx context.Context, q types.ListQuery) (types.ListResponse, error)
}

func (s *stubService) List(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	if s.list == nil {
		return types.ListResponse{Enveloped: true}, nil
	}
	return s.list(ctx, q)
}

func (s *stubService) Create(context.Context, types.TaskFields) (types.Task, error) {
	return types.Task{}, errors.New("not implemented")
}

func (s *stubService) Update(context.Context, int64, types.TaskFields) (types.Task, error) {
	return types.Task{}, errors.New("not implemented")
}

func (s *stubService) Delete(context.Context, int64) error { return errors.New("not implemented") }

func (s *stubService) ToggleCompletion(context.Context, int64) (types.Task, error) {
	return types.Task{}, errors.New("not implemented")
}
