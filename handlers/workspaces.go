package handlers

import (
	"sync"
	"time"

	"clementus360/taskboard/listpage"

	"github.com/google/uuid"
)

// Workspace is one signed-in browser session and the list page it drives.
type Workspace struct {
	ID       string
	Page     *listpage.Page
	lastSeen time.Time
}

// Workspaces holds the live workspaces by id.
type Workspaces struct {
	mu    sync.RWMutex
	items map[string]*Workspace
	now   func() time.Time
}

func NewWorkspaces() *Workspaces {
	return &Workspaces{items: make(map[string]*Workspace), now: time.Now}
}

// Add registers page under a new random id.
func (ws *Workspaces) Add(page *listpage.Page) *Workspace {
	w := &Workspace{ID: uuid.NewString(), Page: page, lastSeen: ws.now()}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.items[w.ID] = w
	return w
}

// Get returns the workspace and marks it as used.
func (ws *Workspaces) Get(id string) (*Workspace, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	w, ok := ws.items[id]
	if ok {
		w.lastSeen = ws.now()
	}
	return w, ok
}

func (ws *Workspaces) Exists(id string) bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	_, ok := ws.items[id]
	return ok
}

func (ws *Workspaces) Remove(id string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.items, id)
}

func (ws *Workspaces) Len() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.items)
}

// Prune drops workspaces idle for longer than maxIdle and returns how many
// were removed.
func (ws *Workspaces) Prune(maxIdle time.Duration) int {
	cutoff := ws.now().Add(-maxIdle)

	ws.mu.Lock()
	defer ws.mu.Unlock()
	removed := 0
	for id, w := range ws.items {
		if w.lastSeen.Before(cutoff) {
			delete(ws.items, id)
			removed++
		}
	}
	return removed
}
