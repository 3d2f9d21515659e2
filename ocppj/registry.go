package ocppj

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry is the process-wide table of open sessions keyed by charge point
// identity. Outbound commands resolve their target session through it. Safe
// for concurrent use by the connection-accepting goroutines and the command
// handlers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *logrus.Entry
}

func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		sessions: map[string]*Session{},
		log:      logger.WithField("component", "registry"),
	}
}

// Register installs a session under its identity. An existing session for the
// same identity is displaced first: it transitions to Closing and all its
// pending calls fail with ErrConnectionClosed. Exactly one session ends up
// registered under the identity.
func (r *Registry) Register(session *Session) {
	session.setRegistry(r)

	// Take the occupant and install the replacement in one critical section,
	// so two racing registrations for the same identity always displace each
	// other in install order. The close happens outside the lock; the
	// instance-checked unregister keeps it from evicting the new session.
	r.mu.Lock()
	displaced := r.sessions[session.identity]
	r.sessions[session.identity] = session
	r.mu.Unlock()

	if displaced != nil && displaced != session {
		r.log.WithField("client", session.identity).Warn("displacing previous session for identity")
		displaced.Close()
	}
}

func (r *Registry) Lookup(identity string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[identity]
	return session, ok
}

// unregister removes the entry for identity only if it still refers to this
// exact session instance, so a stale close never evicts a newer session.
func (r *Registry) unregister(identity string, session *Session) {
	r.mu.Lock()
	if current, ok := r.sessions[identity]; ok && current == session {
		delete(r.sessions, identity)
	}
	r.mu.Unlock()
}

// Identities lists the charge points currently connected.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identities := make([]string, 0, len(r.sessions))
	for identity := range r.sessions {
		identities = append(identities, identity)
	}
	return identities
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
