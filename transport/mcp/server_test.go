package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lucasmn/chessroyale/game/service"
	"github.com/lucasmn/chessroyale/game/session"
	"github.com/lucasmn/chessroyale/storage"
)

// fakeGameService provides canned read-side data for tool handler tests.
type fakeGameService struct {
	sessions []*service.SessionInfo
	history  []storage.MoveRecord
	stats    *storage.PlayerStats
	top      []storage.PlayerStats
}

func (f *fakeGameService) RequestMatch(ctx context.Context, p *session.Participant) (*service.MatchResult, error) {
	return nil, nil
}
func (f *fakeGameService) CancelMatch(ctx context.Context, identity string) {}
func (f *fakeGameService) DropParticipant(identity string)                  {}
func (f *fakeGameService) Submit(ctx context.Context, sessionID, identity string, action service.Action) (*service.ActionResult, error) {
	return nil, nil
}

func (f *fakeGameService) ListSessions(ctx context.Context) []*service.SessionInfo {
	return f.sessions
}

func (f *fakeGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	for _, info := range f.sessions {
		if info.ID == sessionID {
			return info, nil
		}
	}
	return nil, session.ErrSessionNotFound
}

func (f *fakeGameService) History(ctx context.Context, sessionID string) ([]storage.MoveRecord, error) {
	return f.history, nil
}

func (f *fakeGameService) RecentGames(ctx context.Context, limit int) ([]storage.GameSummary, error) {
	return nil, nil
}

func (f *fakeGameService) PlayerStats(ctx context.Context, playerID string) (*storage.PlayerStats, error) {
	return f.stats, nil
}

func (f *fakeGameService) Leaderboard(ctx context.Context, limit int) ([]storage.PlayerStats, error) {
	if limit < len(f.top) {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakeGameService) Shutdown(ctx context.Context) error { return nil }

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("Expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func testServer() *Server {
	return NewServer(&fakeGameService{
		sessions: []*service.SessionInfo{
			{
				ID:       "game-1",
				White:    service.PlayerInfo{ID: "u1", Name: "alice", Rating: 1200},
				Black:    service.PlayerInfo{ID: "u2", Name: "bob", Rating: 1250},
				FEN:      "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
				Turn:     session.SideBlack,
				Status:   session.StatusActive,
				Moves:    1,
				MovesSAN: []string{"e4"},
			},
		},
		history: []storage.MoveRecord{
			{Ply: 1, Side: "white", UCI: "e2e4", SAN: "e4"},
		},
		stats: &storage.PlayerStats{ID: "u1", Name: "alice", Rating: 1216, GamesPlayed: 3, Wins: 2, Losses: 1},
		top: []storage.PlayerStats{
			{ID: "u1", Name: "alice", Rating: 1320},
			{ID: "u2", Name: "bob", Rating: 1184},
		},
	})
}

func TestNewServer(t *testing.T) {
	s := testServer()
	if s.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
	if s.GetMCPServer() != s.mcpServer {
		t.Error("GetMCPServer should return the underlying server")
	}
}

func TestHandleListSessions(t *testing.T) {
	s := testServer()

	result, err := s.handleListSessions(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleListSessions failed: %v", err)
	}

	text := textOf(t, result)
	if !strings.Contains(text, "game-1") || !strings.Contains(text, "alice (1200) vs bob (1250)") {
		t.Errorf("Unexpected listing: %s", text)
	}
}

func TestHandleGetSession(t *testing.T) {
	s := testServer()

	t.Run("found", func(t *testing.T) {
		result, err := s.handleGetSession(context.Background(),
			callRequest(map[string]interface{}{"session_id": "game-1"}))
		if err != nil {
			t.Fatalf("handleGetSession failed: %v", err)
		}

		text := textOf(t, result)
		for _, want := range []string{"White: alice (1200)", "black to play", "Moves: e4"} {
			if !strings.Contains(text, want) {
				t.Errorf("Expected %q in output:\n%s", want, text)
			}
		}
	})

	t.Run("missing", func(t *testing.T) {
		result, err := s.handleGetSession(context.Background(),
			callRequest(map[string]interface{}{"session_id": "nope"}))
		if err != nil {
			t.Fatalf("handleGetSession failed: %v", err)
		}
		if !result.IsError {
			t.Error("Expected an error result for an unknown session")
		}
	})
}

func TestHandleGameHistory(t *testing.T) {
	s := testServer()

	result, err := s.handleGameHistory(context.Background(),
		callRequest(map[string]interface{}{"session_id": "game-1"}))
	if err != nil {
		t.Fatalf("handleGameHistory failed: %v", err)
	}

	text := textOf(t, result)
	if !strings.Contains(text, "e4") || !strings.Contains(text, "e2e4") {
		t.Errorf("Expected move in history output: %s", text)
	}
}

func TestHandlePlayerStats(t *testing.T) {
	s := testServer()

	result, err := s.handlePlayerStats(context.Background(),
		callRequest(map[string]interface{}{"player_id": "u1"}))
	if err != nil {
		t.Fatalf("handlePlayerStats failed: %v", err)
	}

	text := textOf(t, result)
	if !strings.Contains(text, "Rating: 1216") || !strings.Contains(text, "W2 / L1 / D0") {
		t.Errorf("Unexpected stats output: %s", text)
	}
}

func TestHandleLeaderboard(t *testing.T) {
	s := testServer()

	t.Run("default limit", func(t *testing.T) {
		result, err := s.handleLeaderboard(context.Background(), callRequest(nil))
		if err != nil {
			t.Fatalf("handleLeaderboard failed: %v", err)
		}
		text := textOf(t, result)
		if !strings.Contains(text, "1320") {
			t.Errorf("Expected top rating in output: %s", text)
		}
	})

	t.Run("explicit limit", func(t *testing.T) {
		result, err := s.handleLeaderboard(context.Background(),
			callRequest(map[string]interface{}{"limit": float64(1)}))
		if err != nil {
			t.Fatalf("handleLeaderboard failed: %v", err)
		}
		text := textOf(t, result)
		if strings.Contains(text, "bob") {
			t.Errorf("Expected only one entry: %s", text)
		}
	})
}
