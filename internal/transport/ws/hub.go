// Package ws streams search progress to browser clients over WebSocket.
//
// A Hub keeps the set of connected clients and fans every published
// message out to all of them. Clients may send {"type":"cancel"} to stop
// the running search.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Message types.
const (
	TypeProgress = "progress"
	TypeResult   = "result"
	TypeCancel   = "cancel"
)

// ErrClosed is returned by Publish once the hub has stopped.
var ErrClosed = errors.New("hub closed")

// Message is the JSON envelope for every frame in either direction.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Sender  string          `json:"sender,omitempty"`
}

// Client is one connected socket.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]bool

	// Broadcast takes encoded frames for every client.
	Broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64

	// Cancel, if set before serving, is called when a client asks to stop.
	Cancel func()
	Logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		Logger:     logger,
	}
}

// Clients is the number of registered clients.
func (h *Hub) Clients() int { return int(h.count.Load()) }

// Run is the hub's event loop. It returns when ctx is done, closing every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.drop(client)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Add(1)
			h.logf("[ws] client connected from %s", client.conn.RemoteAddr())

		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
			}

		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow client
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

// Publish encodes payload under typ and queues it for every client.
func (h *Hub) Publish(typ string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Message{Type: typ, Payload: raw, Sender: "optimizer"})
	if err != nil {
		return err
	}
	select {
	case h.Broadcast <- frame:
		return nil
	case <-h.done:
		return ErrClosed
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ServeWs(h, w, r)
}

// ServeWs handles the HTTP request that initiates a WebSocket connection.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logf("[ws] upgrade: %v", err)
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logf("[ws] read: %v", err)
			}
			return
		}
		if msg.Type == TypeCancel && c.hub.Cancel != nil {
			c.hub.logf("[ws] cancel requested by %s", c.conn.RemoteAddr())
			c.hub.Cancel()
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) logf(format string, args ...any) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
	}
}
