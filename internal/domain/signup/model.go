package signup

import (
	"fmt"

	"volunteerconnect/internal/domain/record"
)

// Arity is the number of fields in a serialized SignUp.
const Arity = 3

// SignUp is a volunteer's registration for an opportunity.
type SignUp struct {
	fullName      string
	emailAddress  string
	preferredRole string
}

// New builds a SignUp without validating.
func New(fullName, emailAddress, preferredRole string) *SignUp {
	return &SignUp{fullName: fullName, emailAddress: emailAddress, preferredRole: preferredRole}
}

func (s *SignUp) FullName() string      { return s.fullName }
func (s *SignUp) EmailAddress() string  { return s.emailAddress }
func (s *SignUp) PreferredRole() string { return s.preferredRole }

// SetFullName validates and sets the name.
func (s *SignUp) SetFullName(v string) error {
	if err := record.CheckName("fullName", v); err != nil {
		return err
	}
	s.fullName = v
	return nil
}

// SetEmailAddress validates and sets the email address.
func (s *SignUp) SetEmailAddress(v string) error {
	if err := record.CheckEmail("emailAddress", v); err != nil {
		return err
	}
	s.emailAddress = v
	return nil
}

// SetPreferredRole validates and sets the role the volunteer would like.
func (s *SignUp) SetPreferredRole(v string) error {
	if err := record.CheckText("preferredRole", v); err != nil {
		return err
	}
	s.preferredRole = v
	return nil
}

// Validate runs every field check against the current values.
func (s *SignUp) Validate() error {
	if err := record.CheckName("fullName", s.fullName); err != nil {
		return err
	}
	if err := record.CheckEmail("emailAddress", s.emailAddress); err != nil {
		return err
	}
	return record.CheckText("preferredRole", s.preferredRole)
}

// Serialize returns fullName,emailAddress,preferredRole; ok is false if any is empty.
func (s *SignUp) Serialize() (string, bool) {
	return record.Join(record.KindSignUp, s.fullName, s.emailAddress, s.preferredRole)
}

// Deserialize replaces the fields, leaving s unchanged on arity mismatch.
func (s *SignUp) Deserialize(text string) error {
	parts, err := record.Split(record.KindSignUp, text, Arity)
	if err != nil {
		return err
	}
	s.fullName, s.emailAddress, s.preferredRole = parts[0], parts[1], parts[2]
	return nil
}

func (s *SignUp) String() string {
	return fmt.Sprintf("Full Name: %s\nEmail Address: %s\nPreferred Role: %s", s.fullName, s.emailAddress, s.preferredRole)
}
