package projections

import (
	"context"
	"log/slog"

	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/application/listutil"
	"volunteerconnect/internal/domain/contact"
	"volunteerconnect/internal/domain/record"
)

// ContactRow is one line of the contact list.
type ContactRow struct {
	Index         int
	Key           string
	FullName      string
	ContactNumber string
	EmailAddress  string
}

// GetContactListQuery carries the list controls.
type GetContactListQuery struct {
	Params listutil.Params
}

// GetContactListResult carries the rows of the requested page.
type GetContactListResult struct {
	Rows   []ContactRow
	Page   listutil.PageInfo
	Search string
}

// GetContactListDeps holds dependencies for GetContactList.
type GetContactListDeps struct {
	Store kv.Store
}

// QueryGetContactList lists stored contacts, oldest first.
// PRE: none
// POST: only keys of the contact kind appear; undecodable values are skipped
// INVARIANT: store state is not mutated
func QueryGetContactList(ctx context.Context, query GetContactListQuery, deps GetContactListDeps) (GetContactListResult, error) {
	keys, err := kv.KeysOfKind(ctx, deps.Store, record.KindContact)
	if err != nil {
		return GetContactListResult{}, err
	}

	rows := make([]ContactRow, 0, len(keys))
	for _, key := range keys {
		raw, ok, err := deps.Store.Get(ctx, key)
		if err != nil {
			return GetContactListResult{}, err
		}
		if !ok {
			continue
		}
		c := contact.New("", "", "")
		if err := c.Deserialize(raw); err != nil {
			slog.Warn("contact_row_skipped", "key", key, "error", err)
			continue
		}
		rows = append(rows, ContactRow{
			Index:         len(rows) + 1,
			Key:           key,
			FullName:      c.FullName(),
			ContactNumber: c.ContactNumber(),
			EmailAddress:  c.EmailAddress(),
		})
	}

	page, info := listutil.Window(rows, query.Params, func(r ContactRow) []string {
		return []string{r.FullName, r.ContactNumber, r.EmailAddress}
	})
	return GetContactListResult{Rows: page, Page: info, Search: query.Params.Search}, nil
}
