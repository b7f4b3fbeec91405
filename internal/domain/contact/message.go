package contact

import (
	"fmt"

	"volunteerconnect/internal/domain/record"
)

// MessageArity is the number of fields in a serialized Message.
const MessageArity = 4

// Message is a submission of the public contact form.
type Message struct {
	fullName     string
	emailAddress string
	subject      string
	message      string
}

// NewMessage builds a Message without validating.
func NewMessage(fullName, emailAddress, subject, message string) *Message {
	return &Message{fullName: fullName, emailAddress: emailAddress, subject: subject, message: message}
}

func (m *Message) FullName() string     { return m.fullName }
func (m *Message) EmailAddress() string { return m.emailAddress }
func (m *Message) Subject() string      { return m.subject }
func (m *Message) Body() string         { return m.message }

// Validate checks every field's format.
func (m *Message) Validate() error {
	if err := record.CheckName("fullName", m.fullName); err != nil {
		return err
	}
	if err := record.CheckEmail("emailAddress", m.emailAddress); err != nil {
		return err
	}
	if err := record.CheckText("subject", m.subject); err != nil {
		return err
	}
	return record.CheckText("message", m.message)
}

// Serialize returns fullName,emailAddress,subject,message; ok is false if any is empty.
func (m *Message) Serialize() (string, bool) {
	return record.Join(record.KindMessage, m.fullName, m.emailAddress, m.subject, m.message)
}

// Deserialize replaces the fields from text, leaving m unchanged on arity mismatch.
func (m *Message) Deserialize(text string) error {
	parts, err := record.Split(record.KindMessage, text, MessageArity)
	if err != nil {
		return err
	}
	m.fullName, m.emailAddress, m.subject, m.message = parts[0], parts[1], parts[2], parts[3]
	return nil
}

func (m *Message) String() string {
	return fmt.Sprintf("Full Name: %s\nEmail Address: %s\nSubject: %s\nMessage: %s", m.fullName, m.emailAddress, m.subject, m.message)
}
