// Package rules owns move legality and terminal-condition detection. The
// rest of the system treats positions as opaque strings and consults the
// Engine for every proposed move.
package rules

import (
	"errors"

	"github.com/lucasmn/chessroyale/game/session"
)

var ErrIllegalMove = errors.New("illegal move")

// TerminalStatus reports whether a position ends the game.
type TerminalStatus string

const (
	TerminalNone       TerminalStatus = ""
	TerminalCheckmate  TerminalStatus = "checkmate"
	TerminalStalemate  TerminalStatus = "stalemate"
	TerminalDrawByRule TerminalStatus = "draw_by_rule"
)

// MoveOutcome is the result of an accepted move.
type MoveOutcome struct {
	FEN      string
	UCI      string
	SAN      string
	Terminal TerminalStatus
}

// Engine validates and applies moves. Implementations must be deterministic
// and stateless; the caller supplies the full position on every call.
type Engine interface {
	// StartingPosition returns the initial position as a FEN string.
	StartingPosition() string

	// Apply validates a proposed move against the position reconstructed
	// from startFEN plus the UCI move log, and returns the resulting
	// position. Returns ErrIllegalMove if the move is rejected.
	Apply(startFEN string, movesUCI []string, move string) (*MoveOutcome, error)

	// SideToMove reports which side moves next in the given position.
	SideToMove(fen string) (session.Side, error)
}
