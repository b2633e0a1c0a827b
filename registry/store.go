package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/chatgate-io/chatgate/client"
)

var (
	// ErrExists is returned by Create when the session id is already present.
	ErrExists = errors.New("session already exists")
)

type entry struct {
	sess   Session
	client client.Client
}

// Store is the process-wide session registry. The zero value is not usable;
// construct with [NewStore]. All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewStore returns an empty registry.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
	}
}

// Create inserts a new pending session owned by the given client instance.
// The existence check and the insert are one atomic step: of two concurrent
// creates for the same id, exactly one succeeds.
//
// The client handle is attached separately (see [Store.Attach]) because the
// entry must exist before the client is constructed, otherwise a losing
// racer could have built a second client for the same id.
func (s *Store) Create(id, instance string, now time.Time) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; ok {
		return Session{}, ErrExists
	}

	e := &entry{
		sess: Session{
			ID:        id,
			Instance:  instance,
			Status:    StatusPending,
			CreatedAt: now,
		},
	}
	s.sessions[id] = e

	return e.sess, nil
}

// Attach hands the client handle to an entry created by the same instance.
// Returns false when the entry is gone or owned by a different instance.
func (s *Store) Attach(id, instance string, cl client.Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || e.sess.Instance != instance {
		return false
	}
	e.client = cl
	return true
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return e.sess, true
}

// Client returns the client handle owned by the session, if any. The handle
// may be nil for a session whose client construction failed.
func (s *Store) Client(id string) (client.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return e.client, true
}

// SetQR stores a rendered scan-code payload and moves the session to
// StatusAwaitingScan. A repeat code while already awaiting a scan replaces
// the payload. Returns false when the id is gone, the instance does not
// match, or the session already authenticated.
func (s *Store) SetQR(id, instance, payload string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || e.sess.Instance != instance {
		return false
	}
	if e.sess.Status == StatusAuthenticated {
		return false
	}

	e.sess.Status = StatusAwaitingScan
	e.sess.QR = payload
	return true
}

// MarkAuthenticated moves the session to StatusAuthenticated and clears the
// scan-code payload. changed reports whether the call performed the
// transition; ok reports whether the entry was present with a matching
// instance. A ready event following an authenticated event for the same
// client yields (false, true).
func (s *Store) MarkAuthenticated(id, instance string, now time.Time) (changed, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, present := s.sessions[id]
	if !present || e.sess.Instance != instance {
		return false, false
	}
	if e.sess.Status == StatusAuthenticated {
		return false, true
	}

	e.sess.Status = StatusAuthenticated
	e.sess.QR = ""
	e.sess.AuthenticatedAt = now
	return true, true
}

// Remove deletes the session unconditionally and returns its client handle
// for teardown. Idempotent: removing an absent id is a no-op.
func (s *Store) Remove(id string) (client.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)
	return e.client, true
}

// RemoveInstance deletes the session only when it is still owned by the
// given client instance. A disconnect event from a destroyed client can
// therefore never tear down a successor session that reused the id.
func (s *Store) RemoveInstance(id, instance string) (client.Client, bool) {
	return s.RemoveIf(id, func(sess Session) bool {
		return sess.Instance == instance
	})
}

// RemoveIf deletes the session when pred holds for its current snapshot.
// The predicate runs under the store lock and must not call back into the
// store.
func (s *Store) RemoveIf(id string, pred func(Session) bool) (client.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || !pred(e.sess) {
		return nil, false
	}
	delete(s.sessions, id)
	return e.client, true
}

// Snapshot returns copies of all sessions, sorted by id. Read-only; used for
// listings and the expiry sweep, never for bulk mutation.
func (s *Store) Snapshot() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Session, 0, len(s.sessions))
	for _, e := range s.sessions {
		out = append(out, e.sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
