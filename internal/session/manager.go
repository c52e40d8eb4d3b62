package session

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when a turn arrives for a session that has already
// been finalised. Callers log and drop the turn; it is not fatal.
var ErrClosed = errors.New("session closed")

type entry struct {
	mu  sync.Mutex
	ctx *Context
}

// Manager owns all live session contexts, keyed by session identifier.
// Distinct sessions proceed fully in parallel; turns within one session are
// serialised by the entry mutex.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*entry)}
}

func (m *Manager) lookup(sessionID string, create bool) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok && create {
		e = &entry{ctx: newContext(sessionID, time.Now().UTC())}
		m.sessions[sessionID] = e
	}
	return e
}

// Do runs fn with exclusive access to the session's context, creating the
// session on first use. Returns ErrClosed for finalised sessions.
func (m *Manager) Do(sessionID string, fn func(*Context) error) error {
	e := m.lookup(sessionID, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx.Closed() {
		return ErrClosed
	}
	return fn(e.ctx)
}

// Close finalises a session. The first call sets the end timestamp and
// reason and returns the context with closed=true; any later call is a
// no-op returning the same final state.
func (m *Manager) Close(sessionID, reason string) (ctx *Context, closed bool) {
	e := m.lookup(sessionID, false)
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx.Closed() {
		return e.ctx, false
	}
	now := time.Now().UTC()
	e.ctx.ClosedAt = &now
	e.ctx.CloseReason = reason
	return e.ctx, true
}

// Peek returns the context for inspection without creating it. The caller
// must not mutate the result outside Do.
func (m *Manager) Peek(sessionID string) (*Context, bool) {
	e := m.lookup(sessionID, false)
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx, true
}

// Purge drops sessions that were closed before the cutoff and reports how
// many were removed. Closed entries are retained for a while so that Close
// stays idempotent and late turns get ErrClosed rather than a fresh
// session; purging bounds that retention. A turn arriving after its session
// has been purged starts a new context.
func (m *Manager) Purge(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.sessions {
		e.mu.Lock()
		expired := e.ctx.Closed() && e.ctx.ClosedAt.Before(cutoff)
		e.mu.Unlock()
		if expired {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Active returns the ids of all sessions that have not been closed.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, e := range m.sessions {
		e.mu.Lock()
		if !e.ctx.Closed() {
			ids = append(ids, id)
		}
		e.mu.Unlock()
	}
	return ids
}
