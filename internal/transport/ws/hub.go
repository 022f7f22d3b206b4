package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgSummaryReady MessageType = "summary_ready"
	MsgError        MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans result events out to the clients watching that result
type Hub struct {
	// resultID -> subscribers
	conns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once

	log *zap.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	ResultID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	ResultID string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log *zap.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, subs := range h.conns {
				for conn := range subs {
					close(conn.Send)
				}
				delete(h.conns, id)
			}
			h.mu.Unlock()
			return

		case conn := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.conns[conn.ResultID]; ok {
				if _, ok := subs[conn]; ok {
					delete(subs, conn)
					close(conn.Send)
					if len(subs) == 0 {
						delete(h.conns, conn.ResultID)
					}
					h.log.Debug("result subscriber disconnected", zap.String("result_id", conn.ResultID))
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Error("failed to encode ws message", zap.Error(err))
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.ResultID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection. It reports false once the hub is closed, in
// which case conn.Send is left untouched.
func (h *Hub) Register(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return false
	default:
	}

	if h.conns[conn.ResultID] == nil {
		h.conns[conn.ResultID] = make(map[*Connection]struct{})
	}
	h.conns[conn.ResultID][conn] = struct{}{}
	h.log.Debug("result subscriber connected", zap.String("result_id", conn.ResultID))
	return true
}

// Send queues data for one registered connection without blocking. It
// reports false when the connection is gone or its buffer is full. Send
// channels are only closed under the write lock after removal, so checking
// membership under the read lock makes the send safe.
func (h *Hub) Send(conn *Connection, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.conns[conn.ResultID][conn]; !ok {
		return false
	}
	select {
	case conn.Send <- data:
		return true
	default:
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

// Close stops the hub and closes every subscriber's send channel
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Subscribers returns the number of clients watching a result
func (h *Hub) Subscribers(resultID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[resultID])
}

// BroadcastToResult sends a message to everyone watching a result (implements service.Broadcaster)
func (h *Hub) BroadcastToResult(resultID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to encode ws payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	msg := &BroadcastMessage{
		ResultID: resultID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}
