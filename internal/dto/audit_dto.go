package dto

// AuditMessage is published on the internal bus after every committed turn
// and persisted by the audit consumer.
type AuditMessage struct {
	SessionID string `json:"session_id"`
	Stage     string `json:"stage"`
	Event     string `json:"event"`
	Detail    string `json:"detail"`
}
