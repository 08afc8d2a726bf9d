package session

import (
	"sync"
	"time"

	"cost-sync/core/odoo"

	"github.com/google/uuid"
)

// Store is the in-memory registry of live sessions, keyed by bearer token.
// Expired sessions are dropped lazily on lookup.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a session store with the given idle TTL.
// A zero TTL means sessions never expire.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login describes the state a new session starts with.
type Login struct {
	Operator   string
	Odoo       odoo.Client
	Companies  []odoo.Company
	SourceID   int64
	SourceName string
	TargetID   int64
	TargetName string
}

// Create issues a new session with a fresh token.
func (st *Store) Create(login Login) *Session {
	s := &Session{
		Token:      uuid.NewString(),
		Operator:   login.Operator,
		Odoo:       login.Odoo,
		companies:  login.Companies,
		sourceID:   login.SourceID,
		sourceName: login.SourceName,
		targetID:   login.TargetID,
		targetName: login.TargetName,
		selection:  make(map[int64]struct{}),
		lastSeen:   st.now(),
	}

	st.mu.Lock()
	st.sessions[s.Token] = s
	st.mu.Unlock()
	return s
}

// Get resolves a token to a live session, refreshing its idle timer.
// Expired sessions are removed and reported as absent.
func (st *Store) Get(token string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[token]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := st.now()
	if st.ttl > 0 && now.Sub(s.idleSince()) > st.ttl {
		st.Delete(token)
		return nil, false
	}

	s.touch(now)
	return s, true
}

// Delete destroys a session. The Odoo connection has no explicit close in
// the XML-RPC protocol; dropping the session releases it.
func (st *Store) Delete(token string) {
	st.mu.Lock()
	delete(st.sessions, token)
	st.mu.Unlock()
}

// Len returns the number of live sessions, counting not-yet-swept expired ones.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
