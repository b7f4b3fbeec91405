package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"volunteerconnect/internal/adapters/email"
	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/domain/contact"
	"volunteerconnect/internal/domain/record"
)

// SendMessageInput carries the contact form.
type SendMessageInput struct {
	FullName     string
	EmailAddress string
	Subject      string
	Message      string
}

// SendMessageDeps holds dependencies for SendMessage.
type SendMessageDeps struct {
	Store  kv.Store
	Sender email.Sender
	Inbox  string
	Now    func() time.Time
}

// ExecuteSendMessage stores a contact-form message and forwards it to the site inbox.
// POST: returns the new message key; a failed forward is logged, the message stays stored
func ExecuteSendMessage(ctx context.Context, input SendMessageInput, deps SendMessageDeps) (string, error) {
	m := contact.NewMessage(input.FullName, input.EmailAddress, input.Subject, input.Message)
	if err := m.Validate(); err != nil {
		return "", err
	}

	key, err := kv.NewKey(ctx, deps.Store, record.KindMessage, deps.Now())
	if err != nil {
		return "", err
	}
	if err := putSerialized(ctx, deps.Store, key, m); err != nil {
		return "", err
	}
	slog.Info("message_event", "event", "message_stored", "key", key)

	if deps.Sender != nil {
		req, err := email.MessageNotification(deps.Inbox, email.MessageData{
			Name:    m.FullName(),
			Email:   m.EmailAddress(),
			Subject: m.Subject(),
			Body:    m.Body(),
		})
		if err == nil {
			_, err = deps.Sender.Send(ctx, req)
		}
		if err != nil {
			slog.Error("message_email_failed", "key", key, "error", err)
		}
	}
	return key, nil
}
