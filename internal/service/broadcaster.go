package service

// Message types pushed to a session's live connections
const (
	MsgSessionUpdated   = "session_updated"
	MsgAnswersDiscarded = "answers_discarded"
	MsgSessionCompleted = "session_completed"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	Publish(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}
