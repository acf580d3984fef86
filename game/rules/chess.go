package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/lucasmn/chessroyale/game/session"
)

// ChessEngine implements Engine on top of corentings/chess. A game is
// reconstructed from the starting FEN plus the UCI log on every call, which
// keeps the engine stateless and lets draw rules that depend on history
// (threefold repetition, fifty moves) work from the session's move log.
type ChessEngine struct{}

// NewChessEngine returns the standard-chess rules engine.
func NewChessEngine() *ChessEngine {
	return &ChessEngine{}
}

func (e *ChessEngine) StartingPosition() string {
	return nchess.NewGame().FEN()
}

func (e *ChessEngine) Apply(startFEN string, movesUCI []string, move string) (*MoveOutcome, error) {
	game, err := e.reconstruct(startFEN, movesUCI)
	if err != nil {
		return nil, err
	}

	proposed := strings.TrimSpace(move)
	if proposed == "" {
		return nil, ErrIllegalMove
	}

	pos := game.Position()
	outcome := &MoveOutcome{}

	// Accept UCI first, then fall back to algebraic notation. Both go
	// through PushNotationMove, which rejects moves that are not legal in
	// the current position; decoding alone does not validate.
	if err := game.PushNotationMove(strings.ToLower(proposed), nchess.UCINotation{}, nil); err != nil {
		if err := game.PushNotationMove(proposed, nchess.AlgebraicNotation{}, nil); err != nil {
			return nil, ErrIllegalMove
		}
	}

	moves := game.Moves()
	last := moves[len(moves)-1]
	outcome.UCI = last.String()
	outcome.SAN = nchess.AlgebraicNotation{}.Encode(pos, last)

	outcome.FEN = game.FEN()
	outcome.Terminal = terminalOf(game)
	return outcome, nil
}

func (e *ChessEngine) SideToMove(fen string) (session.Side, error) {
	option, err := nchess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("parse fen: %w", err)
	}
	game := nchess.NewGame(option)
	if game.Position().Turn() == nchess.White {
		return session.SideWhite, nil
	}
	return session.SideBlack, nil
}

// reconstruct rebuilds a game from its starting position and UCI move log.
func (e *ChessEngine) reconstruct(startFEN string, movesUCI []string) (*nchess.Game, error) {
	game := nchess.NewGame()
	if startFEN != "" && startFEN != game.FEN() {
		option, err := nchess.FEN(startFEN)
		if err != nil {
			return nil, fmt.Errorf("parse fen: %w", err)
		}
		game = nchess.NewGame(option)
	}

	for _, mv := range movesUCI {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay move %s: %w", mv, err)
		}
	}
	return game, nil
}

func terminalOf(game *nchess.Game) TerminalStatus {
	switch game.Method() {
	case nchess.Checkmate:
		return TerminalCheckmate
	case nchess.Stalemate:
		return TerminalStalemate
	case nchess.ThreefoldRepetition, nchess.FivefoldRepetition,
		nchess.FiftyMoveRule, nchess.SeventyFiveMoveRule,
		nchess.InsufficientMaterial:
		return TerminalDrawByRule
	}
	if game.Outcome() == nchess.Draw {
		return TerminalDrawByRule
	}
	return TerminalNone
}
