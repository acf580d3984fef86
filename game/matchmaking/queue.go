// Package matchmaking pairs waiting participants in FIFO order.
package matchmaking

import (
	"sync"
	"time"

	"github.com/lucasmn/chessroyale/game/session"
)

type waitingEntry struct {
	participant *session.Participant
	enqueuedAt  time.Time
}

// Queue is an ordered collection of waiting participants. Pairing is
// strictly first-come-first-paired; ratings travel with participants but
// play no part in the pairing decision.
type Queue struct {
	waiting []waitingEntry
	mu      sync.Mutex
}

// NewQueue creates an empty matchmaking queue.
func NewQueue() *Queue {
	return &Queue{}
}

// RequestMatch either pairs the participant with the head of the queue or
// enqueues them. The pop-or-enqueue decision is a single critical section,
// so two concurrent requests can never receive the same opponent. A repeat
// request replaces the caller's earlier waiting entry.
func (q *Queue) RequestMatch(p *session.Participant) (*session.Participant, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.removeLocked(p.ID)

	if len(q.waiting) > 0 {
		opponent := q.waiting[0].participant
		q.waiting = q.waiting[1:]
		return opponent, true
	}

	q.waiting = append(q.waiting, waitingEntry{participant: p, enqueuedAt: time.Now()})
	return nil, false
}

// Cancel removes the identity's waiting entry if present. Cancelling an
// identity that is not waiting is a no-op.
func (q *Queue) Cancel(identity string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(identity)
}

// DropOnDisconnect removes a disconnected participant from the queue. The
// transport layer calls this; it has the same effect as Cancel.
func (q *Queue) DropOnDisconnect(identity string) bool {
	return q.Cancel(identity)
}

// Len returns the number of waiting participants.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (q *Queue) removeLocked(identity string) bool {
	for i, entry := range q.waiting {
		if entry.participant.ID == identity {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return true
		}
	}
	return false
}
