package web

import (
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-orderbi/internal/assistant"
)

// ErrNotAuthenticated is returned when a request carries no valid session.
var ErrNotAuthenticated = errors.New("not authenticated")

const sessionCookie = "orderbi_session"

// HistoryEntry is a query that ran successfully.
type HistoryEntry struct {
	Question string
	SQL      string
	Rows     int
}

type flash struct {
	Kind    string
	Message string
}

// Session is the state of one logged in browser.
type Session struct {
	ID string

	mu           sync.Mutex
	question     string
	generatedSQL string
	result       *assistant.Result
	resultNote   string
	history      []HistoryEntry
	flashes      []flash
}

func (s *Session) addFlash(kind, msg string) {
	s.flashes = append(s.flashes, flash{Kind: kind, Message: msg})
}

func (s *Session) takeFlashes() []flash {
	f := s.flashes
	s.flashes = nil
	return f
}

// SessionStore keeps sessions in memory. Sessions end at logout or when
// the process exits.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create starts a new session.
func (st *SessionStore) Create() *Session {
	s := &Session{ID: uuid.NewString()}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete ends a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// FromRequest returns the session named by the request cookie.
func (st *SessionStore) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return nil, ErrNotAuthenticated
	}
	s, ok := st.Get(c.Value)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return s, nil
}
