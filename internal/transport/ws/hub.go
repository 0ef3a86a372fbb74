package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans session events out to the respondent's live connections.
// A respondent may have several tabs open, so a session maps to a set of
// connections.
type Hub struct {
	sessions map[string]map[*Connection]struct{}

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string
	Send      chan []byte
}

// NewConnection creates a connection with a buffered send queue
func NewConnection(sessionID string) *Connection {
	return &Connection{SessionID: sessionID, Send: make(chan []byte, 256)}
}

// BroadcastMessage is a message for every connection of one session
type BroadcastMessage struct {
	SessionID string
	Data      []byte
}

// NewHub creates a WebSocket hub and starts its loop
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		sessions:   make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case conn := <-h.register:
			if h.sessions[conn.SessionID] == nil {
				h.sessions[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.sessions[conn.SessionID][conn] = struct{}{}
			h.logger.Debug("websocket connected",
				zap.String("session_id", conn.SessionID),
				zap.Int("connections", len(h.sessions[conn.SessionID])),
			)

		case conn := <-h.unregister:
			if h.remove(conn) {
				h.logger.Debug("websocket disconnected", zap.String("session_id", conn.SessionID))
			}

		case msg := <-h.broadcast:
			for conn := range h.sessions[msg.SessionID] {
				select {
				case conn.Send <- msg.Data:
				default:
					// Drop message if buffer full
					h.logger.Warn("websocket send buffer full, dropping message", zap.String("session_id", msg.SessionID))
				}
			}

		case id := <-h.disconnect:
			for conn := range h.sessions[id] {
				h.remove(conn)
			}

		case <-h.done:
			for _, conns := range h.sessions {
				for conn := range conns {
					close(conn.Send)
				}
			}
			h.sessions = nil
			return
		}
	}
}

// remove drops conn and closes its send queue; it reports whether conn was live
func (h *Hub) remove(conn *Connection) bool {
	conns, ok := h.sessions[conn.SessionID]
	if !ok {
		return false
	}
	if _, ok := conns[conn]; !ok {
		return false
	}
	delete(conns, conn)
	close(conn.Send)
	if len(conns) == 0 {
		delete(h.sessions, conn.SessionID)
	}
	return true
}

// Register adds a connection. It reports false once the hub is stopped.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish sends a message to every connection of a session (implements service.Broadcaster)
func (h *Hub) Publish(sessionID string, msgType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode websocket payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	data, _ := json.Marshal(&Message{Type: MessageType(msgType), Payload: body})

	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Data: data}:
	case <-h.done:
	}
}

// DisconnectSession closes every connection of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	select {
	case h.disconnect <- sessionID:
	case <-h.done:
	}
}

// Stop closes all connections and ends the hub loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}
