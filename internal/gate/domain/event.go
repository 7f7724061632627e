package domain

import "time"

// EventKind classifies an auth trail entry.
type EventKind string

const (
	EventLoginSucceeded  EventKind = "login_succeeded"
	EventLoginFailed     EventKind = "login_failed"
	EventOTPSent         EventKind = "otp_sent"
	EventOTPRejected     EventKind = "otp_rejected"
	EventRefreshFailed   EventKind = "refresh_failed"
	EventInviteCompleted EventKind = "invite_completed"
	EventSignedOut       EventKind = "signed_out"
)

// AuthEvent is one entry in the persisted auth trail. Detail carries a short
// operator-facing note; it must never contain token material.
type AuthEvent struct {
	ID        string
	Kind      EventKind
	Email     string
	Detail    string
	CreatedAt time.Time
}
