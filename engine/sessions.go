package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/drummonds/rotatepdf/database"
	"github.com/drummonds/rotatepdf/session"
)

type storedSession struct {
	session *session.Session
	touched atomic.Int64 // unix nanoseconds of the last access
}

// SessionStore keeps the live document sessions of every browser, keyed by ULID
type SessionStore struct {
	mu         sync.RWMutex
	sessions   map[string]*storedSession
	newSession func() *session.Session
	now        func() time.Time
}

// NewSessionStore creates an empty store; newSession builds each Empty session
func NewSessionStore(newSession func() *session.Session) *SessionStore {
	return &SessionStore{
		sessions:   make(map[string]*storedSession),
		newSession: newSession,
		now:        time.Now,
	}
}

// Create adds a new Empty session and returns its id
func (st *SessionStore) Create() (string, *session.Session, error) {
	now := st.now()
	id, err := database.CalculateUUID(now)
	if err != nil {
		return "", nil, err
	}
	stored := &storedSession{session: st.newSession()}
	stored.touched.Store(now.UnixNano())

	st.mu.Lock()
	st.sessions[id.String()] = stored
	st.mu.Unlock()
	return id.String(), stored.session, nil
}

// Get returns the session for id and marks it as used
func (st *SessionStore) Get(id string) (*session.Session, bool) {
	st.mu.RLock()
	stored, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	stored.touched.Store(st.now().UnixNano())
	return stored.session, true
}

// Delete drops a session, reporting whether it existed
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Sweep drops every session unused for longer than idle and returns how many went
func (st *SessionStore) Sweep(idle time.Duration) int {
	cutoff := st.now().Add(-idle).UnixNano()

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, stored := range st.sessions {
		if stored.touched.Load() < cutoff {
			stored.session.Remove()
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len is the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
