package domain

import "time"

// AuthEventType classifies an entry of the authentication audit trail.
type AuthEventType string

const (
	EventRegistered     AuthEventType = "registered"
	EventLoginSucceeded AuthEventType = "login_succeeded"
	EventLoginFailed    AuthEventType = "login_failed"
	EventLoggedOut      AuthEventType = "logged_out"
	EventAccessDenied   AuthEventType = "access_denied"
)

// AuthEvent is an audit record emitted by the auth gate.
type AuthEvent struct {
	Type       AuthEventType `json:"type"`
	SubjectID  string        `json:"subject_id,omitempty"`
	Email      string        `json:"email,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// ShardKey returns the value used to keep one account's events in order.
func (e AuthEvent) ShardKey() string {
	if e.SubjectID != "" {
		return e.SubjectID
	}
	return e.Email
}
