package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lucasmn/chessroyale/game/matchmaking"
	"github.com/lucasmn/chessroyale/game/rating"
	"github.com/lucasmn/chessroyale/game/rules"
	"github.com/lucasmn/chessroyale/game/session"
	"github.com/lucasmn/chessroyale/storage"
)

const persistTimeout = 5 * time.Second

// gameServiceImpl implements the GameService interface.
type gameServiceImpl struct {
	queue    *matchmaking.Queue
	registry *session.Registry
	engine   rules.Engine
	store    storage.GameStore

	accepting atomic.Bool
	persists  sync.WaitGroup
}

// NewGameService creates a new game service instance.
func NewGameService(queue *matchmaking.Queue, registry *session.Registry, engine rules.Engine, store storage.GameStore) GameService {
	s := &gameServiceImpl{
		queue:    queue,
		registry: registry,
		engine:   engine,
		store:    store,
	}
	s.accepting.Store(true)
	return s
}

// RequestMatch pairs the participant with the head of the queue or enqueues
// them. On pairing it creates the session and records it asynchronously.
func (s *gameServiceImpl) RequestMatch(ctx context.Context, p *session.Participant) (*MatchResult, error) {
	if !s.accepting.Load() {
		return nil, ErrShuttingDown
	}

	opponent, paired := s.queue.RequestMatch(p)
	if !paired {
		return &MatchResult{Paired: false}, nil
	}

	startFEN := s.engine.StartingPosition()
	firstTurn, err := s.engine.SideToMove(startFEN)
	if err != nil {
		return nil, fmt.Errorf("resolve first turn: %w", err)
	}

	sess := s.registry.Create(p, opponent, startFEN, firstTurn)

	// Hand the store a detached copy: the live session may take its first
	// move before the async write runs, and the store must record the
	// freshly created state.
	sess.Lock()
	created := &session.Session{
		ID:        sess.ID,
		White:     sess.White,
		Black:     sess.Black,
		StartFEN:  sess.StartFEN,
		FEN:       sess.FEN,
		Turn:      sess.Turn,
		Status:    sess.Status,
		CreatedAt: sess.CreatedAt,
	}
	sess.Unlock()

	s.persistAsync("record session created", func(ctx context.Context) error {
		return s.store.RecordSessionCreated(ctx, created)
	})

	side, _ := sess.SideOf(p.ID)
	return &MatchResult{
		Paired:    true,
		SessionID: sess.ID,
		Side:      side,
		FEN:       sess.FEN,
		Opponent:  opponent,
	}, nil
}

// CancelMatch removes the identity's waiting entry. Idempotent.
func (s *gameServiceImpl) CancelMatch(ctx context.Context, identity string) {
	s.queue.Cancel(identity)
}

// DropParticipant handles a transport disconnect. The participant leaves
// the queue; active sessions stay open and wait for further action.
func (s *gameServiceImpl) DropParticipant(identity string) {
	s.queue.DropOnDisconnect(identity)
}

// Submit validates and applies one action against its target session.
func (s *gameServiceImpl) Submit(ctx context.Context, sessionID, identity string, action Action) (*ActionResult, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()

	side, ok := sess.SideOf(identity)
	if !ok {
		sess.Unlock()
		return nil, ErrUnauthorized
	}

	result := &ActionResult{
		SessionID: sess.ID,
		Kind:      action.Kind,
		White:     sess.White,
		Black:     sess.Black,
	}

	var moveRecord *storage.MoveRecord

	switch action.Kind {
	case ActionMove:
		if sess.Status != session.StatusActive {
			sess.Unlock()
			return nil, ErrSessionNotActive
		}
		if sess.Turn != side {
			sess.Unlock()
			return nil, ErrOutOfTurn
		}

		outcome, err := s.engine.Apply(sess.StartFEN, sess.MovesUCI, action.Move)
		if err != nil {
			sess.Unlock()
			return nil, err
		}

		sess.MovesUCI = append(sess.MovesUCI, outcome.UCI)
		sess.MovesSAN = append(sess.MovesSAN, outcome.SAN)
		sess.FEN = outcome.FEN
		sess.Turn = side.Opponent()
		sess.DrawOfferBy = ""

		result.MoveUCI = outcome.UCI
		result.MoveSAN = outcome.SAN

		moveRecord = &storage.MoveRecord{
			Ply:      len(sess.MovesUCI),
			Side:     string(side),
			UCI:      outcome.UCI,
			SAN:      outcome.SAN,
			FEN:      outcome.FEN,
			PlayedAt: time.Now(),
		}

		switch outcome.Terminal {
		case rules.TerminalCheckmate:
			sess.EndWith(session.ReasonCheckmate, resultFor(side))
			result.Message = fmt.Sprintf("%s wins by checkmate", sess.ParticipantOn(side).Name)
		case rules.TerminalStalemate, rules.TerminalDrawByRule:
			sess.EndWith(session.ReasonDrawRule, session.ResultDraw)
			result.Message = "Game drawn"
		}

	case ActionResign:
		if sess.Status != session.StatusActive {
			sess.Unlock()
			return nil, ErrSessionNotActive
		}
		sess.EndWith(session.ReasonResigned, resultFor(side.Opponent()))
		result.Message = fmt.Sprintf("%s resigned", sess.ParticipantOn(side).Name)

	case ActionOfferDraw:
		if sess.Status != session.StatusActive {
			sess.Unlock()
			return nil, ErrSessionNotActive
		}
		sess.DrawOfferBy = side

	case ActionAcceptDraw:
		if sess.Status != session.StatusActive {
			sess.Unlock()
			return nil, ErrSessionNotActive
		}
		// An outstanding offer from either side is acceptable, matching the
		// permissive behavior the clients rely on.
		if sess.DrawOfferBy == "" {
			sess.Unlock()
			return nil, ErrNoDrawOffer
		}
		sess.EndWith(session.ReasonDrawAgreed, session.ResultDraw)
		result.Message = "Game ended in a draw"

	default:
		sess.Unlock()
		return nil, ErrUnknownAction
	}

	// Snapshot under the lock; everything after release works on copies.
	result.FEN = sess.FEN
	result.Turn = sess.Turn
	result.Status = sess.Status
	result.Reason = sess.Reason
	result.Result = sess.Result
	result.DrawOfferBy = sess.DrawOfferBy
	result.Ended = sess.Status == session.StatusTerminal

	sess.Unlock()

	// Persistence and registry removal happen with the lock released so a
	// slow store never stalls the session.
	if moveRecord != nil {
		rec := *moveRecord
		s.persistAsync("record move", func(ctx context.Context) error {
			return s.store.RecordMove(ctx, sess.ID, rec)
		})
	}

	if result.Ended {
		deltas := rating.Compute(sess.White.Rating, sess.Black.Rating, outcomeOf(result.Result))
		result.Ratings = &deltas

		s.persistAsync("record session ended", func(ctx context.Context) error {
			return s.store.RecordSessionEnded(ctx, sess, deltas.NewA, deltas.NewB)
		})

		s.registry.Remove(sess.ID)
	}

	return result, nil
}

// ListSessions returns snapshots of all live sessions.
func (s *gameServiceImpl) ListSessions(ctx context.Context) []*SessionInfo {
	sessions := s.registry.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, snapshot(sess))
	}
	return infos
}

// GetSession returns a snapshot of one live session.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

// History returns the move log for a session: from memory while the game is
// live, from the store once it has ended.
func (s *gameServiceImpl) History(ctx context.Context, sessionID string) ([]storage.MoveRecord, error) {
	sess, err := s.registry.Get(sessionID)
	if err == nil {
		sess.Lock()
		defer sess.Unlock()

		history := make([]storage.MoveRecord, 0, len(sess.MovesUCI))
		turn := session.SideWhite
		for i := range sess.MovesUCI {
			history = append(history, storage.MoveRecord{
				Ply:  i + 1,
				Side: string(turn),
				UCI:  sess.MovesUCI[i],
				SAN:  sess.MovesSAN[i],
			})
			turn = turn.Opponent()
		}
		return history, nil
	}

	return s.store.GameHistory(ctx, sessionID)
}

func (s *gameServiceImpl) RecentGames(ctx context.Context, limit int) ([]storage.GameSummary, error) {
	return s.store.RecentGames(ctx, limit)
}

func (s *gameServiceImpl) PlayerStats(ctx context.Context, playerID string) (*storage.PlayerStats, error) {
	return s.store.PlayerStats(ctx, playerID)
}

func (s *gameServiceImpl) Leaderboard(ctx context.Context, limit int) ([]storage.PlayerStats, error) {
	return s.store.Leaderboard(ctx, limit)
}

// Shutdown stops accepting match requests and drains pending persistence.
func (s *gameServiceImpl) Shutdown(ctx context.Context) error {
	s.accepting.Store(false)

	done := make(chan struct{})
	go func() {
		s.persists.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// persistAsync dispatches a best-effort store write. One retry, then the
// failure is logged; the in-memory state is authoritative either way.
func (s *gameServiceImpl) persistAsync(op string, fn func(context.Context) error) {
	s.persists.Add(1)
	go func() {
		defer s.persists.Done()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		err := fn(ctx)
		if err == nil {
			return
		}
		if err = fn(ctx); err != nil {
			log.Printf("persistence: %s failed: %v", op, err)
		}
	}()
}

func snapshot(sess *session.Session) *SessionInfo {
	sess.Lock()
	defer sess.Unlock()

	movesSAN := make([]string, len(sess.MovesSAN))
	copy(movesSAN, sess.MovesSAN)

	return &SessionInfo{
		ID:          sess.ID,
		White:       PlayerInfo{ID: sess.White.ID, Name: sess.White.Name, Rating: sess.White.Rating},
		Black:       PlayerInfo{ID: sess.Black.ID, Name: sess.Black.Name, Rating: sess.Black.Rating},
		FEN:         sess.FEN,
		Turn:        sess.Turn,
		Status:      sess.Status,
		Moves:       len(sess.MovesUCI),
		MovesSAN:    movesSAN,
		DrawOfferBy: sess.DrawOfferBy,
		CreatedAt:   sess.CreatedAt,
	}
}

// resultFor maps a winning side to the session result.
func resultFor(winner session.Side) session.Result {
	if winner == session.SideWhite {
		return session.ResultWhite
	}
	return session.ResultBlack
}

// outcomeOf maps a session result to a rating outcome, with white as side A.
func outcomeOf(result session.Result) rating.Outcome {
	switch result {
	case session.ResultWhite:
		return rating.OutcomeAWins
	case session.ResultBlack:
		return rating.OutcomeBWins
	default:
		return rating.OutcomeDraw
	}
}
