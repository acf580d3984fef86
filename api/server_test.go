package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lucasmn/chessroyale/game/service"
	"github.com/lucasmn/chessroyale/game/session"
	"github.com/lucasmn/chessroyale/storage"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	RequestMatchFunc func(ctx context.Context, p *session.Participant) (*service.MatchResult, error)
	SubmitFunc       func(ctx context.Context, sessionID, identity string, action service.Action) (*service.ActionResult, error)

	ListSessionsFunc func(ctx context.Context) []*service.SessionInfo
	GetSessionFunc   func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	HistoryFunc      func(ctx context.Context, sessionID string) ([]storage.MoveRecord, error)
	RecentGamesFunc  func(ctx context.Context, limit int) ([]storage.GameSummary, error)
	PlayerStatsFunc  func(ctx context.Context, playerID string) (*storage.PlayerStats, error)
	LeaderboardFunc  func(ctx context.Context, limit int) ([]storage.PlayerStats, error)
}

func (m *MockGameService) RequestMatch(ctx context.Context, p *session.Participant) (*service.MatchResult, error) {
	if m.RequestMatchFunc != nil {
		return m.RequestMatchFunc(ctx, p)
	}
	return &service.MatchResult{}, nil
}

func (m *MockGameService) CancelMatch(ctx context.Context, identity string) {}

func (m *MockGameService) DropParticipant(identity string) {}

func (m *MockGameService) Submit(ctx context.Context, sessionID, identity string, action service.Action) (*service.ActionResult, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, sessionID, identity, action)
	}
	return &service.ActionResult{SessionID: sessionID}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) []*service.SessionInfo {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID}, nil
}

func (m *MockGameService) History(ctx context.Context, sessionID string) ([]storage.MoveRecord, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *MockGameService) RecentGames(ctx context.Context, limit int) ([]storage.GameSummary, error) {
	if m.RecentGamesFunc != nil {
		return m.RecentGamesFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockGameService) PlayerStats(ctx context.Context, playerID string) (*storage.PlayerStats, error) {
	if m.PlayerStatsFunc != nil {
		return m.PlayerStatsFunc(ctx, playerID)
	}
	return nil, nil
}

func (m *MockGameService) Leaderboard(ctx context.Context, limit int) ([]storage.PlayerStats, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockGameService) Shutdown(ctx context.Context) error { return nil }

func doRequest(t *testing.T, svc service.GameService, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	server := NewServer(svc, nil)
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestHandleListSessions(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) []*service.SessionInfo {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: base},
				{ID: "new", CreatedAt: base.Add(time.Minute)},
				{ID: "mid", CreatedAt: base.Add(30 * time.Second)},
			}
		},
	}

	t.Run("sorted newest first", func(t *testing.T) {
		rec := doRequest(t, mock, "GET", "/api/sessions")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		sessions := body["sessions"].([]interface{})
		if len(sessions) != 3 {
			t.Fatalf("Expected 3 sessions, got %d", len(sessions))
		}
		first := sessions[0].(map[string]interface{})
		if first["id"] != "new" {
			t.Errorf("Expected newest session first, got %v", first["id"])
		}
	})

	t.Run("limit applied", func(t *testing.T) {
		rec := doRequest(t, mock, "GET", "/api/sessions?limit=1")
		body := decodeBody(t, rec)
		if body["count"].(float64) != 1 {
			t.Errorf("Expected count 1, got %v", body["count"])
		}
	})

	t.Run("empty list", func(t *testing.T) {
		rec := doRequest(t, &MockGameService{}, "GET", "/api/sessions")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
	})
}

func TestHandleGetSession(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		rec := doRequest(t, &MockGameService{}, "GET", "/api/sessions/abc")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["id"] != "abc" {
			t.Errorf("Expected session abc, got %v", body["id"])
		}
	})

	t.Run("not found", func(t *testing.T) {
		mock := &MockGameService{
			GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
				return nil, session.ErrSessionNotFound
			},
		}
		rec := doRequest(t, mock, "GET", "/api/sessions/missing")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d", rec.Code)
		}
	})
}

func TestHandleGetHistory(t *testing.T) {
	mock := &MockGameService{
		HistoryFunc: func(ctx context.Context, sessionID string) ([]storage.MoveRecord, error) {
			return []storage.MoveRecord{
				{Ply: 1, Side: "white", UCI: "e2e4", SAN: "e4"},
				{Ply: 2, Side: "black", UCI: "e7e5", SAN: "e5"},
			}, nil
		},
	}

	rec := doRequest(t, mock, "GET", "/api/sessions/abc/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"].(float64) != 2 {
		t.Errorf("Expected 2 moves, got %v", body["count"])
	}
	moves := body["moves"].([]interface{})
	first := moves[0].(map[string]interface{})
	if first["san"] != "e4" {
		t.Errorf("Expected SAN e4, got %v", first["san"])
	}
}

func TestHandleGetPlayer(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := &MockGameService{
			PlayerStatsFunc: func(ctx context.Context, playerID string) (*storage.PlayerStats, error) {
				return &storage.PlayerStats{ID: playerID, Name: "alice", Rating: 1216, GamesPlayed: 1, Wins: 1}, nil
			},
		}
		rec := doRequest(t, mock, "GET", "/api/players/u1")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["rating"].(float64) != 1216 {
			t.Errorf("Expected rating 1216, got %v", body["rating"])
		}
	})

	t.Run("unknown player", func(t *testing.T) {
		rec := doRequest(t, &MockGameService{}, "GET", "/api/players/nobody")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d", rec.Code)
		}
	})
}

func TestHandleLeaderboard(t *testing.T) {
	var gotLimit int
	mock := &MockGameService{
		LeaderboardFunc: func(ctx context.Context, limit int) ([]storage.PlayerStats, error) {
			gotLimit = limit
			return []storage.PlayerStats{
				{ID: "u1", Name: "alice", Rating: 1320},
				{ID: "u2", Name: "bob", Rating: 1184},
			}, nil
		},
	}

	rec := doRequest(t, mock, "GET", "/api/leaderboard?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if gotLimit != 5 {
		t.Errorf("Expected limit 5 passed through, got %d", gotLimit)
	}

	body := decodeBody(t, rec)
	players := body["players"].([]interface{})
	top := players[0].(map[string]interface{})
	if top["rating"].(float64) != 1320 {
		t.Errorf("Expected top rating 1320, got %v", top["rating"])
	}
}

func TestHandleHealth(t *testing.T) {
	rec := doRequest(t, &MockGameService{}, "GET", "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
}
