package core

import "time"

// Registry maps live connections to user sessions and back.
// It is owned by the hub goroutine and therefore unsynchronized.
type Registry struct {
	sessions map[string]*Session // connID -> session
	byUser   map[string]string   // userID -> connID
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		byUser:   make(map[string]string),
	}
}

// Register creates and stores a session for the connection. If the userId
// already has a live session on another connection, that entry is evicted
// from the registry; the old connection itself is left as-is and any
// further event from it fails with not_registered.
func (r *Registry) Register(connID, userID, displayName string) *Session {
	if displayName == "" {
		displayName = userID
	}
	// A connection re-registering under a new identity releases the old
	// one, so the old userId's reverse mapping never points at a session
	// that now belongs to someone else.
	if old, ok := r.sessions[connID]; ok && old.UserID != userID {
		if cur, ok := r.byUser[old.UserID]; ok && cur == connID {
			delete(r.byUser, old.UserID)
		}
	}
	if prev, ok := r.byUser[userID]; ok && prev != connID {
		delete(r.sessions, prev)
	}
	sess := &Session{
		ConnID:      connID,
		UserID:      userID,
		DisplayName: displayName,
		JoinedAt:    time.Now(),
	}
	r.sessions[connID] = sess
	r.byUser[userID] = connID
	return sess
}

// Lookup returns the session registered on the connection, or nil.
func (r *Registry) Lookup(connID string) *Session {
	return r.sessions[connID]
}

// LookupUser returns the live session for the userId, or nil.
func (r *Registry) LookupUser(userID string) *Session {
	connID, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	return r.sessions[connID]
}

// Remove deletes the session for the connection and returns it, or nil if
// none was registered. The reverse userId mapping is removed only when it
// still points at this connection, so a mapping overwritten by a newer
// registration is never clobbered.
func (r *Registry) Remove(connID string) *Session {
	sess, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	delete(r.sessions, connID)
	if cur, ok := r.byUser[sess.UserID]; ok && cur == connID {
		delete(r.byUser, sess.UserID)
	}
	return sess
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
