package api

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/studycards/internal/study"
)

var errNoSession = stderrors.New("no study session in request context")

// DefaultSessionIdleTimeout is how long an unused study session is kept.
const DefaultSessionIdleTimeout = 24 * time.Hour

type sessionEntry struct {
	mu       sync.Mutex
	session  *study.Session
	lastUsed time.Time
}

// SessionRegistry owns the study sessions of all connected clients. Each session
// has its own lock so that its actions run one at a time.
type SessionRegistry struct {
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	idleTimeout time.Duration
	now         func() time.Time
	newSession  func() *study.Session
}

func NewSessionRegistry(idleTimeout time.Duration) *SessionRegistry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	return &SessionRegistry{
		sessions:    make(map[string]*sessionEntry),
		idleTimeout: idleTimeout,
		now:         time.Now,
		newSession:  func() *study.Session { return study.NewSession() },
	}
}

// acquire returns the entry for id, creating a session under a fresh id when id is
// unknown. Creating a session also drops sessions idle for longer than the timeout.
func (r *SessionRegistry) acquire(id string) (string, *sessionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if entry, ok := r.sessions[id]; ok {
		entry.lastUsed = now
		return id, entry, false
	}

	for key, entry := range r.sessions {
		if now.Sub(entry.lastUsed) > r.idleTimeout {
			delete(r.sessions, key)
		}
	}

	id = uuid.NewString()
	entry := &sessionEntry{session: r.newSession(), lastUsed: now}
	r.sessions[id] = entry
	return id, entry, true
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func sessionFromContext(ctx context.Context) *study.Session {
	if v := ctx.Value(sessionContextKey); v != nil {
		if sess, ok := v.(*study.Session); ok {
			return sess
		}
	}
	return nil
}
