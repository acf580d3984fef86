// Package mcp provides a Model Context Protocol server over the match data.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Read-only tool definitions over live sessions and rating data
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - list_sessions: List all active game sessions
//   - get_session: Get one session's position, players, and status
//   - game_history: Move-by-move history of a live or finished game
//   - recent_games: Recently finished games
//   - player_stats: A player's rating and win/loss record
//   - leaderboard: Top players by rating
//
// Gameplay is deliberately absent: moves, resignations, and draw offers
// are only accepted from the WebSocket transport, where the acting
// player's identity is bound to the connection.
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: Message handling behind the /mcp endpoint of the API server
package mcp
