// Package sqlite implements the game store over a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lucasmn/chessroyale/game/session"
	"github.com/lucasmn/chessroyale/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          TEXT PRIMARY KEY,
	white_id    TEXT NOT NULL,
	white_name  TEXT NOT NULL,
	black_id    TEXT NOT NULL,
	black_name  TEXT NOT NULL,
	status      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	result      TEXT NOT NULL DEFAULT '',
	fen         TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	ended_at    INTEGER
);

CREATE TABLE IF NOT EXISTS moves (
	game_id    TEXT NOT NULL REFERENCES games(id),
	ply        INTEGER NOT NULL,
	side       TEXT NOT NULL,
	uci        TEXT NOT NULL,
	san        TEXT NOT NULL,
	fen        TEXT NOT NULL,
	played_at  INTEGER NOT NULL,
	PRIMARY KEY (game_id, ply)
);

CREATE TABLE IF NOT EXISTS players (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	rating        INTEGER NOT NULL,
	games_played  INTEGER NOT NULL DEFAULT 0,
	wins          INTEGER NOT NULL DEFAULT 0,
	losses        INTEGER NOT NULL DEFAULT 0,
	draws         INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_games_created ON games(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_players_rating ON players(rating DESC);
`

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements storage.GameStore over SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite store at path and bootstraps the
// schema. WAL mode keeps the async writers from blocking readers.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) RecordSessionCreated(ctx context.Context, sess *session.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, white_id, white_name, black_id, black_name, status, fen, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		sess.ID,
		sess.White.ID, sess.White.Name,
		sess.Black.ID, sess.Black.Name,
		string(sess.Status), sess.FEN, toMillis(sess.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", sess.ID, err)
	}

	// Seed player rows so stats reads work before the first finished game.
	for _, p := range []*session.Participant{sess.White, sess.Black} {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO players (id, name, rating) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
			p.ID, p.Name, p.Rating,
		); err != nil {
			return fmt.Errorf("seed player %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *Store) RecordMove(ctx context.Context, sessionID string, mv storage.MoveRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO moves (game_id, ply, side, uci, san, fen, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, ply) DO NOTHING`,
		sessionID, mv.Ply, mv.Side, mv.UCI, mv.SAN, mv.FEN, toMillis(mv.PlayedAt),
	); err != nil {
		return fmt.Errorf("insert move %d for game %s: %w", mv.Ply, sessionID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET fen = ? WHERE id = ?`, mv.FEN, sessionID,
	); err != nil {
		return fmt.Errorf("update game position %s: %w", sessionID, err)
	}

	return tx.Commit()
}

func (s *Store) RecordSessionEnded(ctx context.Context, sess *session.Session, newWhiteRating, newBlackRating int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE games SET status = ?, reason = ?, result = ?, fen = ?, ended_at = ?
		WHERE id = ?`,
		string(sess.Status), string(sess.Reason), string(sess.Result),
		sess.FEN, toMillis(sess.EndedAt), sess.ID,
	); err != nil {
		return fmt.Errorf("finalize game %s: %w", sess.ID, err)
	}

	whiteW, whiteL, whiteD := outcomeCounters(sess.Result, session.ResultWhite)
	blackW, blackL, blackD := outcomeCounters(sess.Result, session.ResultBlack)

	if err := upsertPlayer(ctx, tx, sess.White, newWhiteRating, whiteW, whiteL, whiteD); err != nil {
		return err
	}
	if err := upsertPlayer(ctx, tx, sess.Black, newBlackRating, blackW, blackL, blackD); err != nil {
		return err
	}

	return tx.Commit()
}

// outcomeCounters maps a game result onto one side's win/loss/draw deltas.
func outcomeCounters(result session.Result, side session.Result) (wins, losses, draws int) {
	switch result {
	case session.ResultDraw:
		return 0, 0, 1
	case side:
		return 1, 0, 0
	default:
		return 0, 1, 0
	}
}

func upsertPlayer(ctx context.Context, tx *sql.Tx, p *session.Participant, newRating, wins, losses, draws int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO players (id, name, rating, games_played, wins, losses, draws)
		VALUES (?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rating = excluded.rating,
			games_played = players.games_played + 1,
			wins = players.wins + excluded.wins,
			losses = players.losses + excluded.losses,
			draws = players.draws + excluded.draws`,
		p.ID, p.Name, newRating, wins, losses, draws,
	)
	if err != nil {
		return fmt.Errorf("update player %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GameHistory(ctx context.Context, sessionID string) ([]storage.MoveRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ply, side, uci, san, fen, played_at
		FROM moves WHERE game_id = ? ORDER BY ply`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query moves for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var history []storage.MoveRecord
	for rows.Next() {
		var mv storage.MoveRecord
		var playedAt int64
		if err := rows.Scan(&mv.Ply, &mv.Side, &mv.UCI, &mv.SAN, &mv.FEN, &playedAt); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		mv.PlayedAt = fromMillis(playedAt)
		history = append(history, mv)
	}
	return history, rows.Err()
}

func (s *Store) RecentGames(ctx context.Context, limit int) ([]storage.GameSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.white_id, g.white_name, g.black_id, g.black_name,
		       g.status, g.result, g.created_at, g.ended_at,
		       (SELECT COUNT(*) FROM moves m WHERE m.game_id = g.id)
		FROM games g ORDER BY g.created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent games: %w", err)
	}
	defer rows.Close()

	var games []storage.GameSummary
	for rows.Next() {
		var g storage.GameSummary
		var createdAt int64
		var endedAt sql.NullInt64
		if err := rows.Scan(&g.ID, &g.WhiteID, &g.WhiteName, &g.BlackID, &g.BlackName,
			&g.Status, &g.Result, &createdAt, &endedAt, &g.Moves); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.CreatedAt = fromMillis(createdAt)
		if endedAt.Valid {
			g.EndedAt = fromMillis(endedAt.Int64)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *Store) PlayerStats(ctx context.Context, playerID string) (*storage.PlayerStats, error) {
	var stats storage.PlayerStats
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, rating, games_played, wins, losses, draws
		FROM players WHERE id = ?`,
		playerID,
	).Scan(&stats.ID, &stats.Name, &stats.Rating, &stats.GamesPlayed,
		&stats.Wins, &stats.Losses, &stats.Draws)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query player %s: %w", playerID, err)
	}
	return &stats, nil
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]storage.PlayerStats, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, rating, games_played, wins, losses, draws
		FROM players ORDER BY rating DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var players []storage.PlayerStats
	for rows.Next() {
		var p storage.PlayerStats
		if err := rows.Scan(&p.ID, &p.Name, &p.Rating, &p.GamesPlayed,
			&p.Wins, &p.Losses, &p.Draws); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
