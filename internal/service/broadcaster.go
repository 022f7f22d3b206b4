package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToResult(resultID string, msgType string, payload interface{})
}

// Message types pushed to result subscribers
const (
	MsgSummaryReady = "summary_ready"
)

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToResult(string, string, interface{}) {}
