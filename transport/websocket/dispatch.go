package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/lucasmn/chessroyale/game/rules"
	"github.com/lucasmn/chessroyale/game/service"
	"github.com/lucasmn/chessroyale/game/session"
)

type findMatchPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

type gamePayload struct {
	GameID string `json:"game_id"`
	Move   string `json:"move,omitempty"`
}

type opponentInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

type matchFoundPayload struct {
	GameID   string       `json:"game_id"`
	Side     session.Side `json:"side"`
	FEN      string       `json:"fen"`
	Opponent opponentInfo `json:"opponent"`
}

type gameEventPayload struct {
	GameID  string         `json:"game_id"`
	MoveUCI string         `json:"move_uci,omitempty"`
	MoveSAN string         `json:"move_san,omitempty"`
	FEN     string         `json:"fen"`
	Turn    session.Side   `json:"turn,omitempty"`
	Status  session.Status `json:"status"`
	Reason  string         `json:"reason,omitempty"`
	Result  string         `json:"result,omitempty"`
	Message string         `json:"message,omitempty"`
	Ratings any            `json:"ratings,omitempty"`
}

// dispatch routes one inbound envelope. It runs on the client's read
// goroutine so a slow session never blocks other connections.
func (c *Client) dispatch(env *Envelope) {
	switch env.Type {
	case "find_match":
		c.handleFindMatch(env.Data)
	case "cancel_match":
		c.handleCancelMatch()
	case "join_game":
		c.handleJoinGame(env.Data)
	case "make_move":
		c.handleAction(env.Data, service.ActionMove)
	case "resign":
		c.handleAction(env.Data, service.ActionResign)
	case "offer_draw":
		c.handleAction(env.Data, service.ActionOfferDraw)
	case "accept_draw":
		c.handleAction(env.Data, service.ActionAcceptDraw)
	default:
		c.Notify("error", map[string]string{"message": "unknown message type: " + env.Type})
	}
}

func (c *Client) handleFindMatch(data json.RawMessage) {
	var req findMatchPayload
	if err := json.Unmarshal(data, &req); err != nil || req.UserID == "" {
		c.Notify("error", map[string]string{"message": "find_match requires user_id"})
		return
	}
	if req.Rating <= 0 {
		req.Rating = c.hub.defaultRating
	}
	if c.identity != "" && c.identity != req.UserID {
		c.Notify("error", map[string]string{"message": "connection already bound to another identity"})
		return
	}

	if c.identity == "" {
		c.identity = req.UserID
		c.name = req.Username
		c.rating = req.Rating
		c.hub.register <- c
	}

	participant := &session.Participant{
		ID:     req.UserID,
		Name:   req.Username,
		Rating: req.Rating,
		Conn:   c,
	}

	result, err := c.hub.service.RequestMatch(context.Background(), participant)
	if err != nil {
		c.Notify("error", map[string]string{"message": errorMessage(err)})
		return
	}

	if !result.Paired {
		c.Notify("waiting", map[string]string{"message": "Looking for opponent..."})
		return
	}

	c.Notify("match_found", matchFoundPayload{
		GameID: result.SessionID,
		Side:   result.Side,
		FEN:    result.FEN,
		Opponent: opponentInfo{
			ID:     result.Opponent.ID,
			Name:   result.Opponent.Name,
			Rating: result.Opponent.Rating,
		},
	})

	if result.Opponent.Conn != nil {
		result.Opponent.Conn.Notify("match_found", matchFoundPayload{
			GameID:   result.SessionID,
			Side:     result.Side.Opponent(),
			FEN:      result.FEN,
			Opponent: opponentInfo{ID: req.UserID, Name: req.Username, Rating: req.Rating},
		})
	}
}

func (c *Client) handleCancelMatch() {
	if c.identity == "" {
		return
	}
	c.hub.service.CancelMatch(context.Background(), c.identity)
}

func (c *Client) handleJoinGame(data json.RawMessage) {
	var req gamePayload
	if err := json.Unmarshal(data, &req); err != nil || req.GameID == "" {
		c.Notify("error", map[string]string{"message": "join_game requires game_id"})
		return
	}
	c.hub.join <- &roomJoin{client: c, sessionID: req.GameID}
}

func (c *Client) handleAction(data json.RawMessage, kind service.ActionKind) {
	if c.identity == "" {
		c.Notify("error", map[string]string{"message": "find_match first"})
		return
	}

	var req gamePayload
	if err := json.Unmarshal(data, &req); err != nil || req.GameID == "" {
		c.Notify("error", map[string]string{"message": "game_id is required"})
		return
	}

	result, err := c.hub.service.Submit(context.Background(), req.GameID, c.identity,
		service.Action{Kind: kind, Move: req.Move})
	if err != nil {
		// Rejections go to the acting client only; the opponent never
		// hears about them.
		c.Notify("error", map[string]string{"message": errorMessage(err)})
		return
	}

	c.deliver(result)
}

// deliver fans an accepted action out: draw offers go to the other side
// only, everything else is broadcast to the session room.
func (c *Client) deliver(result *service.ActionResult) {
	if result.Kind == service.ActionOfferDraw && !result.Ended {
		offered := result.White
		other := result.Black
		if result.DrawOfferBy == session.SideBlack {
			offered, other = other, offered
		}
		if other.Conn != nil {
			other.Conn.Notify("draw_offered", map[string]any{
				"game_id": result.SessionID,
				"by":      result.DrawOfferBy,
				"name":    offered.Name,
			})
		}
		return
	}

	event := "move_made"
	payload := gameEventPayload{
		GameID:  result.SessionID,
		MoveUCI: result.MoveUCI,
		MoveSAN: result.MoveSAN,
		FEN:     result.FEN,
		Status:  result.Status,
		Message: result.Message,
	}
	if result.Status == session.StatusActive {
		payload.Turn = result.Turn
	}

	if result.Ended {
		payload.Reason = string(result.Reason)
		payload.Result = string(result.Result)
		payload.Ratings = result.Ratings
		if result.Kind != service.ActionMove {
			event = "game_ended"
		}
	}

	c.hub.BroadcastToSession(result.SessionID, event, payload)

	// A terminal move gets both frames: the move itself and the ending.
	if result.Ended && result.Kind == service.ActionMove {
		c.hub.BroadcastToSession(result.SessionID, "game_ended", payload)
	}
}

// errorMessage maps service errors onto the participant-facing strings.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return "Game not found"
	case errors.Is(err, service.ErrUnauthorized):
		return "You are not a player in this game"
	case errors.Is(err, service.ErrOutOfTurn):
		return "Not your turn"
	case errors.Is(err, rules.ErrIllegalMove):
		return "Invalid move"
	case errors.Is(err, service.ErrSessionNotActive):
		return "Game is over"
	case errors.Is(err, service.ErrNoDrawOffer):
		return "No draw offer to accept"
	case errors.Is(err, service.ErrShuttingDown):
		return "Server is shutting down"
	default:
		return "Request failed"
	}
}
