package study

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/study/leitner"
)

// liveSession is a running session owned by one user. mu serializes every
// call into the state machine.
type liveSession struct {
	mu sync.Mutex

	id        uuid.UUID
	userID    uuid.UUID
	subjectID uuid.UUID
	mode      domain.SelectionMode
	level     *int
	session   *leitner.Session

	// completion is set by the effect sink when the machine completes.
	completion *leitner.Effect
	lastSeen   time.Time
}

// registry holds live sessions keyed by id.
type registry struct {
	mu         sync.Mutex
	sessions   map[uuid.UUID]*liveSession
	maxPerUser int
}

func newRegistry(maxPerUser int) *registry {
	return &registry{
		sessions:   make(map[uuid.UUID]*liveSession),
		maxPerUser: maxPerUser,
	}
}

// add registers ls. It fails with domain.ErrConflict when the owner already
// has maxPerUser live sessions.
func (r *registry) add(ls *liveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxPerUser > 0 {
		var n int
		for _, other := range r.sessions {
			if other.userID == ls.userID {
				n++
			}
		}
		if n >= r.maxPerUser {
			return fmt.Errorf("%d active sessions: %w", n, domain.ErrConflict)
		}
	}

	r.sessions[ls.id] = ls
	return nil
}

// get returns the session id owned by userID. Sessions of other users are
// reported as not found.
func (r *registry) get(userID, id uuid.UUID) (*liveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ls, ok := r.sessions[id]
	if !ok || ls.userID != userID {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return ls, nil
}

func (r *registry) remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// sweep removes sessions last used before cutoff and returns how many were removed.
func (r *registry) sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for id, ls := range r.sessions {
		if !ls.mu.TryLock() {
			continue
		}
		idle := ls.lastSeen.Before(cutoff)
		ls.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
