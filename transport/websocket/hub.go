package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lucasmn/chessroyale/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Envelope is the JSON frame exchanged with clients.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Client represents one WebSocket connection. Identity is bound by the
// first find_match frame and stays fixed for the connection's lifetime.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	identity string
	name     string
	rating   int

	// sessionID is the room this client has joined and closed marks a
	// dropped connection; both are owned by the hub loop.
	sessionID string
	closed    bool
}

// Notify implements session.Notifier: it delivers a single event to this
// client, dropping it if the client's send buffer is full.
func (c *Client) Notify(event string, payload any) {
	data, err := json.Marshal(outbound{Type: event, Data: payload})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

type roomJoin struct {
	client    *Client
	sessionID string
}

type roomMessage struct {
	sessionID string
	event     string
	payload   any
}

// Hub maintains the set of connected clients and the per-session rooms.
type Hub struct {
	service service.GameService

	// defaultRating is assigned to participants who request a match
	// without a rating of their own.
	defaultRating int

	// Connected clients by identity and session rooms; owned by Run.
	clients map[string]*Client
	rooms   map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	join       chan *roomJoin
	broadcast  chan *roomMessage
}

// NewHub creates a hub dispatching inbound actions to the game service.
func NewHub(svc service.GameService, defaultRating int) *Hub {
	return &Hub{
		service:       svc,
		defaultRating: defaultRating,
		clients:       make(map[string]*Client),
		rooms:         make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		join:          make(chan *roomJoin),
		broadcast:     make(chan *roomMessage, 64),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.dropClient(client)

		case join := <-h.join:
			h.joinRoom(join.client, join.sessionID)

		case message := <-h.broadcast:
			h.broadcastToRoom(message)
		}
	}
}

// ServeWS handles a WebSocket upgrade request.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession queues an event for every client in a session's room.
func (h *Hub) BroadcastToSession(sessionID, event string, payload any) {
	h.broadcast <- &roomMessage{sessionID: sessionID, event: event, payload: payload}
}

func (h *Hub) registerClient(client *Client) {
	if existing, ok := h.clients[client.identity]; ok && existing != client {
		// A reconnect replaces the stale connection for this identity.
		h.dropClient(existing)
	}
	h.clients[client.identity] = client
	log.Printf("Client registered: %s (%d connected)", client.identity, len(h.clients))
}

// dropClient removes a client from all hub maps and closes its send
// channel exactly once.
func (h *Hub) dropClient(client *Client) {
	if client.closed {
		return
	}
	client.closed = true

	if current, ok := h.clients[client.identity]; ok && current == client {
		delete(h.clients, client.identity)
	}
	if clients, ok := h.rooms[client.sessionID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, client.sessionID)
		}
	}
	close(client.send)
}

func (h *Hub) joinRoom(client *Client, sessionID string) {
	if client.sessionID != "" {
		if clients, ok := h.rooms[client.sessionID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.rooms, client.sessionID)
			}
		}
	}

	client.sessionID = sessionID
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[*Client]bool)
	}
	h.rooms[sessionID][client] = true
}

func (h *Hub) broadcastToRoom(message *roomMessage) {
	data, err := json.Marshal(outbound{Type: message.event, Data: message.payload})
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	for client := range h.rooms[message.sessionID] {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full; drop the connection.
			h.dropClient(client)
		}
	}
}

// readPump pumps frames from the connection into the dispatcher.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		if c.identity != "" {
			c.hub.service.DropParticipant(c.identity)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.Notify("error", map[string]string{"message": "malformed message"})
			continue
		}

		c.dispatch(&env)
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
