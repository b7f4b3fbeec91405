package projections

import (
	"context"
	"strings"

	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/application/orchestrators"
)

// AddHash is the edit page's sub-hash for a new contact.
const AddHash = "#add"

// ContactForm is what the edit page shows.
type ContactForm struct {
	Key           string // empty when adding
	Adding        bool
	FullName      string
	ContactNumber string
	EmailAddress  string
}

// GetContactFormDeps holds dependencies for GetContactForm.
type GetContactFormDeps struct {
	Store kv.Store
}

// QueryGetContactForm prepares the edit form for a sub-hash: "#add" (or no
// hash) yields an empty form, "#<key>" the stored contact.
// POST: returns record.ErrNotFound when the key holds no contact
func QueryGetContactForm(ctx context.Context, hash string, deps GetContactFormDeps) (ContactForm, error) {
	key := strings.TrimPrefix(hash, "#")
	if hash == "" || hash == AddHash || key == "" {
		return ContactForm{Adding: true}, nil
	}
	c, err := orchestrators.LoadContact(ctx, deps.Store, key)
	if err != nil {
		return ContactForm{}, err
	}
	return ContactForm{
		Key:           key,
		FullName:      c.FullName(),
		ContactNumber: c.ContactNumber(),
		EmailAddress:  c.EmailAddress(),
	}, nil
}
