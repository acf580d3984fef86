package storage

import (
	"context"

	"github.com/lucasmn/chessroyale/game/session"
)

// NopStore discards all writes and returns empty reads. Used when the
// server runs without a database.
type NopStore struct{}

func (NopStore) RecordSessionCreated(ctx context.Context, s *session.Session) error {
	return nil
}

func (NopStore) RecordMove(ctx context.Context, sessionID string, mv MoveRecord) error {
	return nil
}

func (NopStore) RecordSessionEnded(ctx context.Context, s *session.Session, newWhiteRating, newBlackRating int) error {
	return nil
}

func (NopStore) GameHistory(ctx context.Context, sessionID string) ([]MoveRecord, error) {
	return nil, nil
}

func (NopStore) RecentGames(ctx context.Context, limit int) ([]GameSummary, error) {
	return nil, nil
}

func (NopStore) PlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	return nil, nil
}

func (NopStore) Leaderboard(ctx context.Context, limit int) ([]PlayerStats, error) {
	return nil, nil
}

func (NopStore) Close() error { return nil }
