package listpage

import (
	"slices"

	"clementus360/taskboard/types"
)

// Loader is the task collection controller's state: the displayed tasks and
// the sequence numbers that keep out-of-order responses from replacing
// newer ones.
type Loader struct {
	tasks []types.Task
	total int

	issued    uint64 // last sequence number handed out
	displayed uint64 // sequence number of the response on screen
	settled   uint64 // highest sequence number that has settled either way
}

// Begin tags a new request and returns its sequence number.
func (l *Loader) Begin() uint64 {
	l.issued++
	return l.issued
}

// Loading is true while the most recently issued request is outstanding.
func (l Loader) Loading() bool {
	return l.settled < l.issued
}

// Succeed applies a settled response. It reports false and changes nothing
// when the response is older than the one on screen.
func (l *Loader) Succeed(seq uint64, resp types.ListResponse) bool {
	l.settled = max(l.settled, seq)
	if seq <= l.displayed {
		return false
	}

	tasks, total := normalize(resp)
	l.tasks = tasks
	l.total = total
	l.displayed = seq
	return true
}

// Fail records a failed request. The displayed tasks stay as they were.
func (l *Loader) Fail(seq uint64) {
	l.settled = max(l.settled, seq)
}

// Stale reports whether seq has been overtaken by a newer request.
func (l Loader) Stale(seq uint64) bool {
	return seq < l.issued
}

func (l Loader) Tasks() []types.Task { return slices.Clone(l.tasks) }
func (l Loader) Total() int          { return l.total }

// Find returns the displayed task with the given id.
func (l Loader) Find(id int64) (types.Task, bool) {
	for _, t := range l.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return types.Task{}, false
}

// normalize turns either response shape into (tasks, total). A bare array
// has no count metadata, so its length is the total.
func normalize(resp types.ListResponse) ([]types.Task, int) {
	tasks := resp.Results
	if tasks == nil {
		tasks = []types.Task{}
	}
	if !resp.Enveloped {
		return tasks, len(tasks)
	}
	return tasks, resp.Count
}
