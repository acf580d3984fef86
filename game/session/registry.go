package session

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry owns every in-progress session, keyed by session ID. It is the
// only component allowed to add or remove sessions; action processing locks
// individual sessions so unrelated sessions never block each other.
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create pairs two participants into a new active session. Sides are drawn
// once with an unbiased coin flip and stay fixed for the session's lifetime.
func (r *Registry) Create(a, b *Participant, startFEN string, firstTurn Side) *Session {
	white, black := a, b
	if n, err := rand.Int(rand.Reader, big.NewInt(2)); err == nil && n.Int64() == 0 {
		white, black = b, a
	}

	session := &Session{
		ID:        uuid.NewString(),
		White:     white,
		Black:     black,
		StartFEN:  startFEN,
		FEN:       startFEN,
		Turn:      firstTurn,
		Status:    StatusActive,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return session
}

// Get retrieves a session by ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	session, exists := r.sessions[id]
	r.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove deletes a session from the registry. Called after terminal
// processing completes so late duplicate actions fail fast with not-found.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// List returns all in-progress sessions.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		result = append(result, session)
	}
	return result
}

// Count returns the number of in-progress sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
