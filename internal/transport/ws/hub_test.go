package ws

import (
	"complykit/internal/model"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSummaries map[string]*model.Summary

func (s stubSummaries) Get(_ context.Context, resultID string) (*model.Summary, error) {
	return s[resultID], nil
}

func startServer(t *testing.T, summaries SummaryReader) (*Hub, string) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	t.Cleanup(hub.Close)

	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/results/{id}", NewHandler(hub, summaries, zap.NewNop()).ResultWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastReachesResultSubscribers(t *testing.T) {
	hub, base := startServer(t, stubSummaries{})

	conn, _, err := websocket.DefaultDialer.Dial(base+"/v1/ws/results/r1", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("r1") == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToResult("other", "summary_ready", map[string]string{"resultId": "other"})
	hub.BroadcastToResult("r1", "summary_ready", &model.Summary{ResultID: "r1", Status: model.SummaryReady, Text: "done"})

	msg := readMessage(t, conn)
	assert.Equal(t, MsgSummaryReady, msg.Type)

	var summary model.Summary
	require.NoError(t, json.Unmarshal(msg.Payload, &summary))
	assert.Equal(t, "r1", summary.ResultID)
	assert.Equal(t, "done", summary.Text)
}

func TestHandler_SendsFinishedSummaryOnConnect(t *testing.T) {
	_, base := startServer(t, stubSummaries{
		"r2": {ResultID: "r2", Status: model.SummaryFailed, Text: "fallback"},
	})

	conn, _, err := websocket.DefaultDialer.Dial(base+"/v1/ws/results/r2", nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	assert.Equal(t, MsgSummaryReady, msg.Type)
	assert.Contains(t, string(msg.Payload), "fallback")
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub, base := startServer(t, stubSummaries{})

	conn, _, err := websocket.DefaultDialer.Dial(base+"/v1/ws/results/r3", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Subscribers("r3") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers("r3") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ClosedHubRejectsRegistrationAndSends(t *testing.T) {
	hub := NewHub(zap.NewNop())

	live := &Connection{ResultID: "r4", Send: make(chan []byte, 1), Hub: hub}
	require.True(t, hub.Register(live))
	assert.True(t, hub.Send(live, []byte("x")))
	<-live.Send

	hub.Close()
	hub.Close()

	late := &Connection{ResultID: "r4", Send: make(chan []byte, 1), Hub: hub}
	assert.False(t, hub.Register(late))
	assert.False(t, hub.Send(late, []byte("x")))

	// Once the hub has dropped it, sending to a closed channel is refused instead of panicking
	require.Eventually(t, func() bool { return hub.Subscribers("r4") == 0 }, time.Second, 10*time.Millisecond)
	assert.NotPanics(t, func() { assert.False(t, hub.Send(live, []byte("x"))) })
}

func TestHandler_ConnectAfterShutdownIsClosed(t *testing.T) {
	hub, base := startServer(t, stubSummaries{
		"r5": {ResultID: "r5", Status: model.SummaryReady, Text: "done"},
	})
	hub.Close()

	conn, _, err := websocket.DefaultDialer.Dial(base+"/v1/ws/results/r5", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
	assert.Zero(t, hub.Subscribers("r5"))
}
