package email

import (
	"context"
	"time"
)

// SendRequest is one outgoing email.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default, e.g. "Volunteer Connect <noreply@volunteerconnect.ca>"
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
