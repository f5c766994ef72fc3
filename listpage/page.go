package listpage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"clementus360/taskboard/form"
	"clementus360/taskboard/types"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 15 * time.Second

// Options configures a Page.
type Options struct {
	PageSize  int
	PageSizes []int
	// Timeout bounds every remote call. A timeout is reported like any
	// other failure.
	Timeout   time.Duration
	Logger    logrus.FieldLogger
	Validator *form.Validator
	// Location is used to expand due dates to end of day.
	Location *time.Location
}

// Page is the task list page: filters, pagination, the displayed tasks, the
// confirmation gate and the edit session.
type Page struct {
	mu sync.Mutex
	// settled is signalled on mu whenever inflight drops to zero.
	settled  *sync.Cond
	inflight int

	svc       Service
	session   Session
	log       logrus.FieldLogger
	validator *form.Validator
	timeout   time.Duration
	loc       *time.Location

	filters Filters
	pager   Pagination
	loader  Loader
	gate    Gate
	edit    *EditSession
}

func New(svc Service, session Session, opts Options) (*Page, error) {
	if svc == nil {
		return nil, errors.New("listpage: nil service")
	}
	if len(opts.PageSizes) == 0 {
		opts.PageSizes = []int{10, 20, 50, 100}
	}
	if opts.PageSize == 0 {
		opts.PageSize = opts.PageSizes[0]
	}
	pager, err := NewPagination(opts.PageSize, opts.PageSizes)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Validator == nil {
		opts.Validator = form.NewValidator(nil)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	p := &Page{
		svc:       svc,
		session:   session,
		log:       opts.Logger.WithField("component", "listpage"),
		validator: opts.Validator,
		timeout:   opts.Timeout,
		loc:       opts.Location,
		filters:   NewFilters(),
		pager:     pager,
		gate:      NewGate(),
	}
	p.settled = sync.NewCond(&p.mu)
	return p, nil
}

// Wait blocks until no remote call is in flight, including reloads started
// by calls that settled meanwhile. It is safe to call from several
// goroutines while other triggers keep starting calls.
func (p *Page) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.inflight > 0 {
		p.settled.Wait()
	}
}

// spawn runs call on its own goroutine with the page timeout. It must be
// called with p.mu held; call must take the lock itself before touching
// state.
func (p *Page) spawn(call func(ctx context.Context)) {
	p.inflight++
	go func() {
		defer p.done()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		call(ctx)
	}()
}

func (p *Page) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inflight--
	if p.inflight == 0 {
		p.settled.Broadcast()
	}
}

// mutating reports whether a mutation is in flight, either through the gate
// or through a save.
func (p *Page) mutating() bool {
	return p.gate.Busy() || (p.edit != nil && p.edit.busy)
}

// ----- loading -----

// Load fetches the current page with the applied filters.
func (p *Page) Load() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloadLocked()
}

func (p *Page) reloadLocked() {
	seq := p.loader.Begin()
	q := types.ListQuery{
		Page:     p.pager.Page(),
		PageSize: p.pager.PageSize(),
		Criteria: p.filters.Applied(),
	}

	p.spawn(func(ctx context.Context) {
		resp, err := p.svc.List(ctx, q)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.settleLoad(seq, q, resp, err)
	})
}

func (p *Page) settleLoad(seq uint64, q types.ListQuery, resp types.ListResponse, err error) {
	if err != nil {
		p.loader.Fail(seq)
		p.log.WithError(err).WithFields(logrus.Fields{
			"page": q.Page,
			"seq":  seq,
		}).Error("Failed to load tasks")
		return
	}

	if !p.loader.Succeed(seq, resp) {
		p.log.WithField("seq", seq).Debug("Discarding stale task list response")
		return
	}

	if !resp.Enveloped {
		// No count metadata: everything came back as one page.
		p.pager.UpdateFromResponse(p.loader.Total(), p.loader.Total())
		p.pager.GoToPage(1)
		return
	}
	p.pager.UpdateFromResponse(resp.Count, q.PageSize)

	// The page we asked for no longer exists (e.g. its last task was
	// deleted); step back to the last one.
	if len(resp.Results) == 0 && q.Page > 1 && q.Page > p.pager.TotalPages() && !p.loader.Stale(seq) {
		p.pager.GoToPage(q.Page)
		p.reloadLocked()
	}
}

// ----- filters -----

func (p *Page) SetDraftField(field Field, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters.SetDraftField(field, value)
}

// ApplyFilters sends the draft criteria, starting again from page 1.
func (p *Page) ApplyFilters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters.Apply()
	p.pager.Reset()
	p.reloadLocked()
}

// ClearFilters resets the criteria to the defaults and reloads page 1.
func (p *Page) ClearFilters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters.Clear()
	p.pager.Reset()
	p.reloadLocked()
}

// ToggleOverdue flips the overdue-only flag on the draft and applies it
// right away.
func (p *Page) ToggleOverdue() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.filters.SetDraftField(FieldOverdue, !p.filters.Draft().OverdueOnly)
	p.filters.Apply()
	p.pager.Reset()
	p.reloadLocked()
}

// ----- pagination -----

// GoToPage navigates to n, clamped to the known pages, and returns the page
// that is being loaded.
func (p *Page) GoToPage(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	page := p.pager.GoToPage(n)
	p.reloadLocked()
	return page
}

func (p *Page) SetPageSize(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.pager.SetPageSize(n); err != nil {
		return err
	}
	p.reloadLocked()
	return nil
}

// ----- confirmation gate -----

// RequestDelete asks the user to confirm deleting a task on the current page.
func (p *Page) RequestDelete(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mutating() {
		return ErrBusy
	}
	task, ok := p.loader.Find(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return p.gate.OpenConfirm(deleteRequest(p.svc, task))
}

// RequestToggle asks the user to confirm completing or reopening a task.
func (p *Page) RequestToggle(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mutating() {
		return ErrBusy
	}
	task, ok := p.loader.Find(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return p.gate.OpenConfirm(toggleRequest(p.svc, task))
}

// Confirm runs the pending action. The gate settles into Outcome and the
// current page is reloaded whether the action worked or not.
func (p *Page) Confirm() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit != nil && p.edit.busy {
		return ErrBusy
	}
	action, err := p.gate.Confirm()
	if err != nil {
		return err
	}

	p.spawn(func(ctx context.Context) {
		notice, err := action.Run(ctx)

		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.log.WithError(err).Warn("Confirmed action failed")
		}
		if settleErr := p.gate.Settle(notice, err); settleErr != nil {
			p.log.WithError(settleErr).Error("Gate left executing state unexpectedly")
		}
		p.reloadLocked()
	})
	return nil
}

// Cancel drops a pending confirmation.
func (p *Page) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gate.Cancel()
}

// Dismiss closes the outcome (or cancels a pending confirmation).
func (p *Page) Dismiss() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gate.Dismiss()
}

// Notify shows an informational message through the gate.
func (p *Page) Notify(kind Kind, notice Notice) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gate.Notify(kind, notice)
}

// ----- edit session -----

// OpenCreate opens the form in create mode.
func (p *Page) OpenCreate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit != nil && p.edit.busy {
		return ErrBusy
	}
	p.edit = OpenEditSession(nil, p.loc)
	return nil
}

// OpenEdit opens the form for a task on the current page.
func (p *Page) OpenEdit(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit != nil && p.edit.busy {
		return ErrBusy
	}
	task, ok := p.loader.Find(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	p.edit = OpenEditSession(&task, p.loc)
	return nil
}

// CloseEdit abandons the form. It is refused while a save is running.
func (p *Page) CloseEdit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit == nil {
		return ErrNoEditSession
	}
	if p.edit.busy {
		return ErrBusy
	}
	p.edit = nil
	return nil
}

// SaveEdit validates the form and, if it passes, creates or updates the
// task. Field problems come back as *form.ValidationError and never reach
// the gate; remote failures are reported through the gate.
func (p *Page) SaveEdit(values form.TaskForm) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	session := p.edit
	if session == nil {
		return ErrNoEditSession
	}
	if p.mutating() {
		return ErrBusy
	}

	session.form = values
	session.errors = nil
	if err := p.validator.Task(values); err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			session.errors = verr.Fields
		}
		return err
	}
	fields, err := values.Fields(p.loc)
	if err != nil {
		return err
	}

	session.busy = true
	mode := session.Mode()
	p.spawn(func(ctx context.Context) {
		task, err := session.dispatch(ctx, p.svc, fields)

		p.mu.Lock()
		defer p.mu.Unlock()
		session.busy = false
		p.settleSave(session, mode, task, err)
	})
	return nil
}

func (p *Page) settleSave(session *EditSession, mode EditMode, task types.Task, err error) {
	if err != nil {
		p.log.WithError(err).WithField("mode", mode).Warn("Failed to save task")
		p.notifyLocked(KindError, saveFailure(mode))
		p.reloadLocked()
		return
	}

	p.log.WithFields(logrus.Fields{"mode": mode, "task_id": task.ID}).Info("Task saved")
	if p.edit == session {
		p.edit = nil
	}
	p.notifyLocked(KindSuccess, saveSuccess(mode, task))
	p.pager.Reset()
	p.reloadLocked()
}

func (p *Page) notifyLocked(kind Kind, notice Notice) {
	if err := p.gate.Notify(kind, notice); err != nil {
		p.log.WithError(err).WithField("title", notice.Title).Warn("Could not show notification")
	}
}

// ----- session -----

// User is the signed-in user, if any.
func (p *Page) User() (types.User, bool) {
	if p.session == nil {
		return types.User{}, false
	}
	return p.session.CurrentUser()
}

// Logout ends the session. Failures are logged and returned.
func (p *Page) Logout(ctx context.Context) error {
	if p.session == nil {
		return nil
	}
	if err := p.session.Logout(ctx); err != nil {
		p.log.WithError(err).Error("Logout failed")
		return err
	}
	return nil
}
