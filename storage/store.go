// Package storage defines the durable-store contract the game core
// consumes. The in-memory registry stays authoritative during play; the
// store is a mirror written to asynchronously.
package storage

import (
	"context"
	"time"

	"github.com/lucasmn/chessroyale/game/session"
)

// MoveRecord is one accepted move as persisted to the store.
type MoveRecord struct {
	Ply      int       `json:"ply"`
	Side     string    `json:"side"`
	UCI      string    `json:"uci"`
	SAN      string    `json:"san"`
	FEN      string    `json:"fen"`
	PlayedAt time.Time `json:"played_at"`
}

// GameSummary is the read-side view of a persisted game.
type GameSummary struct {
	ID        string    `json:"id"`
	WhiteID   string    `json:"white_id"`
	WhiteName string    `json:"white_name"`
	BlackID   string    `json:"black_id"`
	BlackName string    `json:"black_name"`
	Status    string    `json:"status"`
	Result    string    `json:"result,omitempty"`
	Moves     int       `json:"moves"`
	CreatedAt time.Time `json:"created_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

// PlayerStats is the durable per-player record updated at game end.
type PlayerStats struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Rating      int    `json:"rating"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
}

// GameStore mirrors session lifecycle events to durable storage. Writes are
// best-effort: a failure must never block or unwind gameplay.
type GameStore interface {
	RecordSessionCreated(ctx context.Context, s *session.Session) error
	RecordMove(ctx context.Context, sessionID string, mv MoveRecord) error
	RecordSessionEnded(ctx context.Context, s *session.Session, newWhiteRating, newBlackRating int) error

	GameHistory(ctx context.Context, sessionID string) ([]MoveRecord, error)
	RecentGames(ctx context.Context, limit int) ([]GameSummary, error)
	PlayerStats(ctx context.Context, playerID string) (*PlayerStats, error)
	Leaderboard(ctx context.Context, limit int) ([]PlayerStats, error)

	Close() error
}
