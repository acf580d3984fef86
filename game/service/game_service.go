// Package service is the single path through which all matchmaking and
// session-changing events flow. It owns the ordering and consistency rules:
// one mutation per session at a time, atomic pairing, and the rating plus
// persistence handoff when a session ends.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/lucasmn/chessroyale/game/rating"
	"github.com/lucasmn/chessroyale/game/session"
	"github.com/lucasmn/chessroyale/storage"
)

var (
	ErrUnauthorized     = errors.New("participant is not a party to this session")
	ErrOutOfTurn        = errors.New("not your turn")
	ErrSessionNotActive = errors.New("session is not active")
	ErrNoDrawOffer      = errors.New("no draw offer outstanding")
	ErrUnknownAction    = errors.New("unknown action kind")
	ErrShuttingDown     = errors.New("server is shutting down")
)

// ActionKind enumerates the session-changing actions.
type ActionKind string

const (
	ActionMove       ActionKind = "move"
	ActionResign     ActionKind = "resign"
	ActionOfferDraw  ActionKind = "offer_draw"
	ActionAcceptDraw ActionKind = "accept_draw"
)

// Action is one submitted session-changing event. Move carries the proposed
// move for ActionMove and is ignored otherwise.
type Action struct {
	Kind ActionKind
	Move string
}

// MatchResult is the outcome of a match request: either the caller is
// waiting, or a session was created and both participants are bound.
type MatchResult struct {
	Paired    bool
	SessionID string
	Side      session.Side
	FEN       string
	Opponent  *session.Participant
}

// ActionResult is the snapshot handed to the transport layer after an
// accepted action. Fields are copied under the session lock; the transport
// must not reach back into live session state.
type ActionResult struct {
	SessionID string
	Kind      ActionKind

	MoveUCI string
	MoveSAN string
	FEN     string
	Turn    session.Side

	Status      session.Status
	Reason      session.EndReason
	Result      session.Result
	DrawOfferBy session.Side
	Message     string

	Ended   bool
	Ratings *rating.Result

	White *session.Participant
	Black *session.Participant
}

// PlayerInfo is the read-side view of a bound participant.
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// SessionInfo is a consistent read-side snapshot of a live session.
type SessionInfo struct {
	ID          string         `json:"id"`
	White       PlayerInfo     `json:"white"`
	Black       PlayerInfo     `json:"black"`
	FEN         string         `json:"fen"`
	Turn        session.Side   `json:"turn"`
	Status      session.Status `json:"status"`
	Moves       int            `json:"moves"`
	MovesSAN    []string       `json:"moves_san,omitempty"`
	DrawOfferBy session.Side   `json:"draw_offer_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// GameService defines all matchmaking and gameplay operations.
type GameService interface {
	// Matchmaking
	RequestMatch(ctx context.Context, p *session.Participant) (*MatchResult, error)
	CancelMatch(ctx context.Context, identity string)
	DropParticipant(identity string)

	// Gameplay
	Submit(ctx context.Context, sessionID, identity string, action Action) (*ActionResult, error)

	// Read side
	ListSessions(ctx context.Context) []*SessionInfo
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	History(ctx context.Context, sessionID string) ([]storage.MoveRecord, error)
	RecentGames(ctx context.Context, limit int) ([]storage.GameSummary, error)
	PlayerStats(ctx context.Context, playerID string) (*storage.PlayerStats, error)
	Leaderboard(ctx context.Context, limit int) ([]storage.PlayerStats, error)

	// Shutdown rejects new match requests and waits for in-flight
	// persistence writes, bounded by ctx.
	Shutdown(ctx context.Context) error
}
