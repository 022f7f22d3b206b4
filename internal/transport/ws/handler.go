package ws

import (
	"complykit/internal/model"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// SummaryReader looks up the current summary for a result
type SummaryReader interface {
	Get(ctx context.Context, resultID string) (*model.Summary, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub       *Hub
	summaries SummaryReader
	log       *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, summaries SummaryReader, log *zap.Logger) *Handler {
	return &Handler{
		hub:       hub,
		summaries: summaries,
		log:       log,
	}
}

// ResultWS handles GET /v1/ws/results/{id}. Result ids are unguessable, so
// knowing one is enough to watch its summary.
func (h *Handler) ResultWS(w http.ResponseWriter, r *http.Request) {
	resultID := mux.Vars(r)["id"]
	if resultID == "" {
		http.Error(w, "missing result id", http.StatusBadRequest)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &Connection{
		ResultID: resultID,
		Send:     make(chan []byte, 16),
		Hub:      h.hub,
	}
	if !h.hub.Register(conn) {
		wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		wsConn.Close()
		return
	}

	// A summary that finished before the client connected is sent right away.
	if summary, err := h.summaries.Get(r.Context(), resultID); err != nil {
		h.log.Warn("summary lookup failed", zap.String("result_id", resultID), zap.Error(err))
	} else if summary != nil && summary.Status != model.SummaryPending {
		if data, err := encode(MsgSummaryReady, summary); err == nil {
			h.hub.Send(conn, data)
		}
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func encode(msgType MessageType, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: data})
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket read error", zap.Error(err))
			}
			break
		}
		// Clients only listen; incoming frames are ignored
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
