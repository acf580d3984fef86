package session

import (
	"sync"
	"time"
)

// Side identifies one of the two fixed roles within a session.
type Side string

const (
	SideWhite Side = "white"
	SideBlack Side = "black"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideWhite {
		return SideBlack
	}
	return SideWhite
}

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive   Status = "active"
	StatusTerminal Status = "terminal"
)

// EndReason explains why a session reached its terminal state.
type EndReason string

const (
	ReasonCheckmate  EndReason = "checkmate"
	ReasonResigned   EndReason = "resigned"
	ReasonDrawAgreed EndReason = "draw_agreed"
	ReasonDrawRule   EndReason = "draw_by_rule"
)

// Result identifies the winning side of a terminal session, or a draw.
type Result string

const (
	ResultWhite Result = "white"
	ResultBlack Result = "black"
	ResultDraw  Result = "draw"
)

// Notifier delivers a single event to one connected participant.
// The transport layer provides the implementation.
type Notifier interface {
	Notify(event string, payload any)
}

// Participant is a connected player. It exists only while the player is
// queued or playing; durable player records live in storage.
type Participant struct {
	ID     string
	Name   string
	Rating int
	Conn   Notifier
}

// Session is the authoritative unit of mutable game state. All field
// mutation must happen while holding the session's lock; the registry hands
// out pointers but never mutates past creation.
type Session struct {
	ID    string
	White *Participant
	Black *Participant

	// Position is tracked as the starting FEN plus the append-only move
	// logs; the rules engine reconstructs the game from these.
	StartFEN string
	FEN      string
	MovesUCI []string
	MovesSAN []string

	Turn        Side
	Status      Status
	Reason      EndReason
	Result      Result
	DrawOfferBy Side

	CreatedAt time.Time
	EndedAt   time.Time

	mu sync.Mutex
}

// Lock acquires exclusive access to the session's mutable state.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases exclusive access.
func (s *Session) Unlock() { s.mu.Unlock() }

// SideOf resolves a participant identity to its side in this session.
func (s *Session) SideOf(identity string) (Side, bool) {
	switch identity {
	case s.White.ID:
		return SideWhite, true
	case s.Black.ID:
		return SideBlack, true
	}
	return "", false
}

// ParticipantOn returns the participant bound to the given side.
func (s *Session) ParticipantOn(side Side) *Participant {
	if side == SideWhite {
		return s.White
	}
	return s.Black
}

// EndWith transitions the session to terminal. The transition is one-way:
// calling it on an already-terminal session is a no-op.
func (s *Session) EndWith(reason EndReason, result Result) {
	if s.Status == StatusTerminal {
		return
	}
	s.Status = StatusTerminal
	s.Reason = reason
	s.Result = result
	s.DrawOfferBy = ""
	s.EndedAt = time.Now()
}
