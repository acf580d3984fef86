package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lucasmn/chessroyale/game/service"
)

// Server exposes read-only match data over the Model Context Protocol.
// Playing happens over WebSocket; these tools let an agent observe games,
// look up move history, and query ratings.
type Server struct {
	service   service.GameService
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers all tools.
func NewServer(svc service.GameService) *Server {
	s := &Server{service: svc}
	s.initMCPServer()
	return s
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Chess Royale",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Chess Royale - MCP Interface

Read-only tools for observing live chess matches and rating data.
Gameplay (moves, resignations, draw offers) happens over the WebSocket
transport; this interface is for spectating and analysis.

AVAILABLE TOOLS:
- list_sessions: List active game sessions
- get_session: Get one session's current position and players
- game_history: Move-by-move history of a game
- recent_games: Recently finished games
- player_stats: One player's rating and win/loss record
- leaderboard: Top players by rating`),
	)

	s.registerTools()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListSessions)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the current position and players of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleGetSession)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_history",
		Description: "Get the move-by-move history of a live or finished game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleGameHistory)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "recent_games",
		Description: "List recently finished games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of games to return (default 10)",
				},
			},
		},
	}, s.handleRecentGames)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "player_stats",
		Description: "Get a player's rating and win/loss record",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player ID",
				},
			},
			Required: []string{"player_id"},
		},
	}, s.handlePlayerStats)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Top players ordered by rating",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of players to return (default 10)",
				},
			},
		},
	}, s.handleLeaderboard)
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tool handlers

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := s.service.ListSessions(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", len(sessions))
	for _, info := range sessions {
		fmt.Fprintf(&b, "- %s: %s (%d) vs %s (%d), move %d, %s to play\n",
			info.ID, info.White.Name, info.White.Rating,
			info.Black.Name, info.Black.Rating, info.Moves, info.Turn)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	info, err := s.service.GetSession(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Game %s\n", info.ID)
	fmt.Fprintf(&b, "White: %s (%d)\n", info.White.Name, info.White.Rating)
	fmt.Fprintf(&b, "Black: %s (%d)\n", info.Black.Name, info.Black.Rating)
	fmt.Fprintf(&b, "Position: %s\n", info.FEN)
	fmt.Fprintf(&b, "Status: %s, %s to play, %d moves played\n", info.Status, info.Turn, info.Moves)
	if info.DrawOfferBy != "" {
		fmt.Fprintf(&b, "Draw offered by %s\n", info.DrawOfferBy)
	}
	if len(info.MovesSAN) > 0 {
		fmt.Fprintf(&b, "Moves: %s\n", strings.Join(info.MovesSAN, " "))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGameHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	moves, err := s.service.History(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Game %s (%d moves):\n\n", sessionID, len(moves))
	for _, mv := range moves {
		fmt.Fprintf(&b, "%3d. %-6s %-8s %s\n", mv.Ply, mv.Side, mv.SAN, mv.UCI)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleRecentGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	games, err := s.service.RecentGames(ctx, intArg(request, "limit", 10))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent Games (%d):\n\n", len(games))
	for _, g := range games {
		fmt.Fprintf(&b, "- %s: %s vs %s, %s (%s), %d moves\n",
			g.ID, g.WhiteName, g.BlackName, g.Status, g.Result, g.Moves)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handlePlayerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	stats, err := s.service.PlayerStats(ctx, playerID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if stats == nil {
		return mcp.NewToolResultError(fmt.Sprintf("player %s not found", playerID)), nil
	}

	result := fmt.Sprintf("%s (%s)\nRating: %d\nGames: %d (W%d / L%d / D%d)\n",
		stats.Name, stats.ID, stats.Rating, stats.GamesPlayed, stats.Wins, stats.Losses, stats.Draws)
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	players, err := s.service.Leaderboard(ctx, intArg(request, "limit", 10))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Leaderboard:\n\n")
	for i, p := range players {
		fmt.Fprintf(&b, "%2d. %-16s %d (%d games)\n", i+1, p.Name, p.Rating, p.GamesPlayed)
	}

	return mcp.NewToolResultText(b.String()), nil
}

// intArg reads an optional integer argument, tolerating JSON's float64.
func intArg(request mcp.CallToolRequest, name string, def int) int {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if v, ok := args[name].(float64); ok && v > 0 {
		return int(v)
	}
	return def
}
