// Package websocket is the realtime transport for matchmaking and play.
//
// The package uses a hub-and-spoke model: a central Hub owns the identity
// and session-room maps, and each connection is served by a read and a write
// goroutine. Inbound frames are JSON envelopes:
//
//	{type: "find_match", data: {user_id: "u1", username: "alice", rating: 1200}}
//	{type: "make_move", data: {game_id: "...", move: "e2e4"}}
//
// Outbound frames use the same envelope with server event types: waiting,
// match_found, move_made, draw_offered, game_ended, error.
//
// Game actions are dispatched to the game service from the connection's read
// goroutine, so slow actions on one session never stall other sessions. All
// room broadcasts funnel through the hub's run loop, which keeps every
// client in a session observing the same event order.
//
// Errors from an action are delivered only to the client that submitted it;
// the opponent never sees a rejected move.
package websocket
