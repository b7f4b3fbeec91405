package projections

import (
	"context"
	"log/slog"

	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/application/listutil"
	"volunteerconnect/internal/domain/record"
	"volunteerconnect/internal/domain/signup"
)

// SignUpRow is one line of the sign-up list.
type SignUpRow struct {
	Index         int
	Key           string
	FullName      string
	EmailAddress  string
	PreferredRole string
}

// GetSignUpListQuery carries the list controls.
type GetSignUpListQuery struct {
	Params listutil.Params
}

// GetSignUpListResult carries the rows of the requested page.
type GetSignUpListResult struct {
	Rows   []SignUpRow
	Page   listutil.PageInfo
	Search string
}

// GetSignUpListDeps holds dependencies for GetSignUpList.
type GetSignUpListDeps struct {
	Store kv.Store
}

// QueryGetSignUpList lists stored volunteer sign-ups, oldest first.
// INVARIANT: store state is not mutated
func QueryGetSignUpList(ctx context.Context, query GetSignUpListQuery, deps GetSignUpListDeps) (GetSignUpListResult, error) {
	keys, err := kv.KeysOfKind(ctx, deps.Store, record.KindSignUp)
	if err != nil {
		return GetSignUpListResult{}, err
	}

	var rows []SignUpRow
	for _, key := range keys {
		raw, ok, err := deps.Store.Get(ctx, key)
		if err != nil {
			return GetSignUpListResult{}, err
		}
		if !ok {
			continue
		}
		s := signup.New("", "", "")
		if err := s.Deserialize(raw); err != nil {
			slog.Warn("signup_row_skipped", "key", key, "error", err)
			continue
		}
		rows = append(rows, SignUpRow{
			Index:         len(rows) + 1,
			Key:           key,
			FullName:      s.FullName(),
			EmailAddress:  s.EmailAddress(),
			PreferredRole: s.PreferredRole(),
		})
	}

	page, info := listutil.Window(rows, query.Params, func(r SignUpRow) []string {
		return []string{r.FullName, r.EmailAddress, r.PreferredRole}
	})
	return GetSignUpListResult{Rows: page, Page: info, Search: query.Params.Search}, nil
}
