// Package api provides the HTTP REST surface for observing matches.
//
// Gameplay itself happens over the WebSocket transport; the REST endpoints
// are read-only views used by lobbies, spectators, and operators.
//
// Endpoints:
//
// Live Sessions:
//   - GET /api/sessions - List active sessions, newest first
//   - GET /api/sessions/{id} - Get one session's snapshot
//   - GET /api/sessions/{id}/history - Move history (live or archived)
//
// Completed Games and Ratings:
//   - GET /api/games/recent - Recently finished games
//   - GET /api/players/{id} - One player's rating and record
//   - GET /api/leaderboard - Top players by rating
//
// Misc:
//   - GET /api/health - Health check
//   - GET /ws - WebSocket upgrade for matchmaking and play
//
// All endpoints return JSON. List endpoints accept an optional limit query
// parameter. Errors are returned as {"error": "..."} with an appropriate
// HTTP status.
package api
