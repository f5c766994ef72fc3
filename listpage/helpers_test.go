package listpage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"clementus360/taskboard/memstore"
	"clementus360/taskboard/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// recordingService wraps the in-memory store, records calls, and lets a test
// make individual operations fail or block.
type recordingService struct {
	*memstore.Store

	mu      sync.Mutex
	lists   []types.ListQuery
	deletes []int64
	toggles []int64
	creates []types.TaskFields
	updates []int64

	listErr   error
	deleteErr error
	toggleErr error
	saveErr   error

	deleteGate chan struct{} // when set, Delete waits for it to close
}

func newRecordingService(store *memstore.Store) *recordingService {
	return &recordingService{Store: store}
}

func (s *recordingService) List(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
	s.mu.Lock()
	s.lists = append(s.lists, q)
	err := s.listErr
	s.mu.Unlock()
	if err != nil {
		return types.ListResponse{}, err
	}
	return s.Store.List(ctx, q)
}

func (s *recordingService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, id)
	err, gate := s.deleteErr, s.deleteGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, id)
}

func (s *recordingService) ToggleCompletion(ctx context.Context, id int64) (types.Task, error) {
	s.mu.Lock()
	s.toggles = append(s.toggles, id)
	err := s.toggleErr
	s.mu.Unlock()
	if err != nil {
		return types.Task{}, err
	}
	return s.Store.ToggleCompletion(ctx, id)
}

func (s *recordingService) Create(ctx context.Context, fields types.TaskFields) (types.Task, error) {
	s.mu.Lock()
	s.creates = append(s.creates, fields)
	err := s.saveErr
	s.mu.Unlock()
	if err != nil {
		return types.Task{}, err
	}
	return s.Store.Create(ctx, fields)
}

func (s *recordingService) Update(ctx context.Context, id int64, fields types.TaskFields) (types.Task, error) {
	s.mu.Lock()
	s.updates = append(s.updates, id)
	err := s.saveErr
	s.mu.Unlock()
	if err != nil {
		return types.Task{}, err
	}
	return s.Store.Update(ctx, id, fields)
}

func (s *recordingService) lastList() types.ListQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists[len(s.lists)-1]
}

func (s *recordingService) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists)
}

func (s *recordingService) deleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deletes)
}

// stepClock returns a clock that moves forward one minute per call so
// created_at ordering is deterministic.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeSession struct {
	user      types.User
	loggedOut bool
	err       error
}

func (s *fakeSession) CurrentUser() (types.User, bool) { return s.user, !s.loggedOut }

func (s *fakeSession) Logout(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.loggedOut = true
	return nil
}

// seedTasks creates n pending tasks titled "task 1".."task n".
func seedTasks(store *memstore.Store, n int) []types.Task {
	tasks := make([]types.Task, 0, n)
	for i := 1; i <= n; i++ {
		tasks = append(tasks, types.Task{
			Title:    fmt.Sprintf("task %d", i),
			Status:   types.StatusPending,
			Priority: types.PriorityMedium,
		})
	}
	return store.Seed(tasks...)
}

func newTestPage(t *testing.T, svc Service) *Page {
	t.Helper()
	p, err := New(svc, &fakeSession{user: types.User{ID: 1, Username: "ana", FirstName: "Ana"}}, Options{
		Logger:   quietLogger(),
		Timeout:  time.Second,
		Location: time.UTC,
	})
	require.NoError(t, err)
	return p
}

// loaded builds a page over n seeded tasks and waits for the first load.
func loaded(t *testing.T, n int) (*Page, *recordingService, []types.Task) {
	t.Helper()
	store := memstore.New(memstore.WithClock(stepClock()))
	seeded := seedTasks(store, n)
	svc := newRecordingService(store)
	p := newTestPage(t, svc)
	p.Load()
	p.Wait()
	return p, svc, seeded
}
