package models

// CaptionUpdate is published on every material change to the displayable
// caption.
type CaptionUpdate struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	Caption   string `json:"caption"`
	Timestamp int64  `json:"timestamp"`
}

// SessionLogEntry carries a free-text lifecycle or diagnostic message.
// Content is non-contractual; used for operator troubleshooting.
type SessionLogEntry struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// FatalNotice is published exactly once when the platform is judged
// incapable of speech recognition.
type FatalNotice struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
