package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"volunteerconnect/internal/adapters/email"
	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/domain/record"
	"volunteerconnect/internal/domain/signup"
)

// SignUpInput carries the volunteer sign-up form.
type SignUpInput struct {
	FullName      string
	EmailAddress  string
	PreferredRole string
	Opportunity   string // title of the opportunity signed up from, optional
}

// SignUpDeps holds dependencies for SignUp.
type SignUpDeps struct {
	Store  kv.Store
	Sender email.Sender
	Inbox  string
	Now    func() time.Time
}

// ExecuteSignUp stores a volunteer sign-up and emails a confirmation plus an
// inbox notice.
// POST: returns the new signUp key; email failures are logged and do not undo the sign-up
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) (string, error) {
	s := signup.New("", "", "")
	if err := s.SetFullName(input.FullName); err != nil {
		return "", err
	}
	if err := s.SetEmailAddress(input.EmailAddress); err != nil {
		return "", err
	}
	if err := s.SetPreferredRole(input.PreferredRole); err != nil {
		return "", err
	}

	key, err := kv.NewKey(ctx, deps.Store, record.KindSignUp, deps.Now())
	if err != nil {
		return "", err
	}
	if err := putSerialized(ctx, deps.Store, key, s); err != nil {
		return "", err
	}
	slog.Info("signup_event", "event", "signup_stored", "key", key, "role", s.PreferredRole())

	if deps.Sender != nil {
		reqs, err := email.SignUpEmails(deps.Inbox, email.SignUpData{
			Name:        s.FullName(),
			Email:       s.EmailAddress(),
			Role:        s.PreferredRole(),
			Opportunity: input.Opportunity,
		})
		if err == nil {
			_, err = deps.Sender.SendBatch(ctx, reqs)
		}
		if err != nil {
			slog.Error("signup_email_failed", "key", key, "error", err)
		}
	}
	return key, nil
}
