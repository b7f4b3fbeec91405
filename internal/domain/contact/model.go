package contact

import (
	"fmt"

	"volunteerconnect/internal/domain/record"
)

// Arity is the number of fields in a serialized Contact.
const Arity = 3

// Contact is an address-book entry shown on the contact list.
type Contact struct {
	fullName      string
	contactNumber string
	emailAddress  string
}

// New builds a Contact without validating; blank fields are allowed until serialization.
func New(fullName, contactNumber, emailAddress string) *Contact {
	return &Contact{fullName: fullName, contactNumber: contactNumber, emailAddress: emailAddress}
}

// FullName returns the contact's name.
func (c *Contact) FullName() string { return c.fullName }

// ContactNumber returns the contact's phone number.
func (c *Contact) ContactNumber() string { return c.contactNumber }

// EmailAddress returns the contact's email address.
func (c *Contact) EmailAddress() string { return c.emailAddress }

// SetFullName validates and sets the name.
// POST: unchanged on error
func (c *Contact) SetFullName(v string) error {
	if err := record.CheckName("fullName", v); err != nil {
		return err
	}
	c.fullName = v
	return nil
}

// SetContactNumber validates and sets the phone number.
// POST: unchanged on error
func (c *Contact) SetContactNumber(v string) error {
	if err := record.CheckPhone("contactNumber", v); err != nil {
		return err
	}
	c.contactNumber = v
	return nil
}

// SetEmailAddress validates and sets the email address.
// POST: unchanged on error
func (c *Contact) SetEmailAddress(v string) error {
	if err := record.CheckEmail("emailAddress", v); err != nil {
		return err
	}
	c.emailAddress = v
	return nil
}

// Update applies all three setters, stopping at the first invalid field.
func (c *Contact) Update(fullName, contactNumber, emailAddress string) error {
	next := *c
	if err := next.SetFullName(fullName); err != nil {
		return err
	}
	if err := next.SetContactNumber(contactNumber); err != nil {
		return err
	}
	if err := next.SetEmailAddress(emailAddress); err != nil {
		return err
	}
	*c = next
	return nil
}

// Serialize returns the comma-joined fields; ok is false if any field is empty.
func (c *Contact) Serialize() (string, bool) {
	return record.Join(record.KindContact, c.fullName, c.contactNumber, c.emailAddress)
}

// Deserialize replaces the fields from text.
// POST: on arity mismatch returns a validation error and the Contact is unchanged
func (c *Contact) Deserialize(text string) error {
	parts, err := record.Split(record.KindContact, text, Arity)
	if err != nil {
		return err
	}
	c.fullName, c.contactNumber, c.emailAddress = parts[0], parts[1], parts[2]
	return nil
}

// String renders the contact for humans.
func (c *Contact) String() string {
	return fmt.Sprintf("Full Name: %s\nContact Number: %s\nEmail Address: %s", c.fullName, c.contactNumber, c.emailAddress)
}
