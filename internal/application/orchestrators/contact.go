package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/domain/contact"
	"volunteerconnect/internal/domain/record"
)

// ContactInput carries the edit form.
type ContactInput struct {
	FullName      string
	ContactNumber string
	EmailAddress  string
}

// ContactDeps holds dependencies for the contact orchestrators.
type ContactDeps struct {
	Store kv.Store
	Now   func() time.Time
}

// ExecuteAddContact validates input and stores it under a new contact key.
// PRE: none
// POST: returns the new key; the store is unchanged on a validation error
func ExecuteAddContact(ctx context.Context, input ContactInput, deps ContactDeps) (string, error) {
	c := contact.New("", "", "")
	if err := c.Update(input.FullName, input.ContactNumber, input.EmailAddress); err != nil {
		return "", err
	}
	key, err := kv.NewKey(ctx, deps.Store, record.KindContact, deps.Now())
	if err != nil {
		return "", err
	}
	if err := putSerialized(ctx, deps.Store, key, c); err != nil {
		return "", err
	}
	slog.Info("contact_event", "event", "contact_added", "key", key)
	return key, nil
}

// ExecuteEditContact replaces the contact stored under key.
// PRE: key names an existing contact
// POST: returns record.ErrNotFound for an unknown key; the stored value is
// unchanged on a validation error
func ExecuteEditContact(ctx context.Context, key string, input ContactInput, deps ContactDeps) error {
	c, err := LoadContact(ctx, deps.Store, key)
	if err != nil {
		return err
	}
	if err := c.Update(input.FullName, input.ContactNumber, input.EmailAddress); err != nil {
		return err
	}
	if err := putSerialized(ctx, deps.Store, key, c); err != nil {
		return err
	}
	slog.Info("contact_event", "event", "contact_updated", "key", key)
	return nil
}

// ExecuteDeleteContact removes the contact stored under key.
// PRE: key was generated for a contact
// POST: the key is absent from the store
func ExecuteDeleteContact(ctx context.Context, key string, deps ContactDeps) error {
	if !record.HasKind(key, record.KindContact) {
		return fmt.Errorf("contact %q: %w", key, record.ErrNotFound)
	}
	if err := deps.Store.Remove(ctx, key); err != nil {
		return err
	}
	slog.Info("contact_event", "event", "contact_deleted", "key", key)
	return nil
}

// LoadContact reads and decodes the contact stored under key.
func LoadContact(ctx context.Context, store kv.Store, key string) (*contact.Contact, error) {
	if !record.HasKind(key, record.KindContact) {
		return nil, fmt.Errorf("contact %q: %w", key, record.ErrNotFound)
	}
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("contact %q: %w", key, record.ErrNotFound)
	}
	c := contact.New("", "", "")
	if err := c.Deserialize(raw); err != nil {
		return nil, err
	}
	return c, nil
}

// serializer is a record with a delimited textual form.
type serializer interface {
	Serialize() (string, bool)
}

func putSerialized(ctx context.Context, store kv.Store, key string, r serializer) error {
	text, ok := r.Serialize()
	if !ok {
		return record.Invalid(key, "record has empty fields")
	}
	return store.Put(ctx, key, text)
}
