package projections

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/application/listutil"
	"volunteerconnect/internal/domain/opportunity"
	"volunteerconnect/internal/domain/record"
)

var allRows = listutil.Params{Page: 1, PerPage: listutil.DefaultPerPage}

func seededStore(t *testing.T) *kv.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := kv.NewMemoryStore()
	values := map[string]string{
		"contact_200": "Bo Chen,9055551234,bo@example.com",
		"contact_100": "Ann Lee,905-555-1234,ann@example.com",
		"contact_300": "broken",
		"signUp_150":  "Cy Diaz,cy@example.com,Greeter",
		"user":        "alice,Alice Anders,alice@example.com",
	}
	for k, v := range values {
		if err := s.Put(ctx, k, v); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestQueryGetContactList(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	res, err := QueryGetContactList(ctx, GetContactListQuery{Params: allRows}, GetContactListDeps{Store: store})
	if err != nil {
		t.Fatalf("QueryGetContactList: %v", err)
	}
	var keys []string
	for _, r := range res.Rows {
		keys = append(keys, r.Key)
	}
	if !reflect.DeepEqual(keys, []string{"contact_100", "contact_200"}) {
		t.Fatalf("keys = %v", keys)
	}
	if res.Rows[0].Index != 1 || res.Rows[1].FullName != "Bo Chen" {
		t.Errorf("rows = %+v", res.Rows)
	}
}

func TestQueryGetContactList_DeletedKeyNotListed(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	if err := store.Remove(ctx, "contact_100"); err != nil {
		t.Fatal(err)
	}

	res, err := QueryGetContactList(ctx, GetContactListQuery{Params: allRows}, GetContactListDeps{Store: store})
	if err != nil {
		t.Fatalf("QueryGetContactList: %v", err)
	}
	for _, r := range res.Rows {
		if r.Key == "contact_100" {
			t.Fatal("deleted contact is still listed")
		}
	}
	if res.Page.Total != 1 {
		t.Errorf("Total = %d, want 1", res.Page.Total)
	}
}

func TestQueryGetContactList_Search(t *testing.T) {
	res, err := QueryGetContactList(context.Background(),
		GetContactListQuery{Params: listutil.ParseParams(url.Values{"q": {"BO@"}})},
		GetContactListDeps{Store: seededStore(t)})
	if err != nil {
		t.Fatalf("QueryGetContactList: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].FullName != "Bo Chen" || res.Search != "BO@" {
		t.Errorf("result = %+v", res)
	}
}

func TestQueryGetSignUpList(t *testing.T) {
	res, err := QueryGetSignUpList(context.Background(), GetSignUpListQuery{Params: allRows}, GetSignUpListDeps{Store: seededStore(t)})
	if err != nil {
		t.Fatalf("QueryGetSignUpList: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].PreferredRole != "Greeter" {
		t.Errorf("rows = %+v", res.Rows)
	}
}

func TestQueryGetContactForm(t *testing.T) {
	ctx := context.Background()
	deps := GetContactFormDeps{Store: seededStore(t)}

	for _, hash := range []string{"", "#add", "#"} {
		form, err := QueryGetContactForm(ctx, hash, deps)
		if err != nil || !form.Adding {
			t.Errorf("QueryGetContactForm(%q) = %+v, %v", hash, form, err)
		}
	}

	form, err := QueryGetContactForm(ctx, "#contact_100", deps)
	if err != nil || form.Adding || form.Key != "contact_100" || form.EmailAddress != "ann@example.com" {
		t.Errorf("edit form = %+v, %v", form, err)
	}

	if _, err := QueryGetContactForm(ctx, "#contact_999", deps); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("missing key err = %v", err)
	}
}

func testCatalog(t *testing.T) *opportunity.Catalog {
	t.Helper()
	c := opportunity.NewCatalog()
	items := []opportunity.Opportunity{
		{Title: "Bake Sale", Date: time.Date(2025, 2, 3, 13, 0, 0, 0, time.UTC), Type: opportunity.Fundraiser},
		{Title: "Park Cleanup", Date: time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC), Type: opportunity.Cleanup},
		{Title: "Resume Workshop", Date: time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), Type: opportunity.Workshop},
	}
	for _, o := range items {
		if err := c.Add(o); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func TestQueryGetCalendarMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	month := QueryGetCalendarMonth(GetCalendarMonthQuery{
		Hash:   "#2025-02",
		Hidden: []string{"cleanup"},
		Now:    now,
	}, GetCalendarMonthDeps{Catalog: testCatalog(t)})

	if month.Label != "February 2025" || month.Prev != "2025-01" || month.Next != "2025-03" {
		t.Errorf("header = %q %q %q", month.Label, month.Prev, month.Next)
	}
	if len(month.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(month.Rows))
	}
	cell := month.Rows[1][1]
	if cell.Day != 3 || len(cell.Placements) != 2 {
		t.Fatalf("Feb 3 cell = %+v", cell)
	}
	for _, p := range cell.Placements {
		if want := p.Opportunity.Type.Name != "Cleanup"; p.Visible != want {
			t.Errorf("%s visible = %v, want %v", p.Opportunity.Title, p.Visible, want)
		}
	}
	if month.Hidden != "Cleanup" {
		t.Errorf("Hidden = %q", month.Hidden)
	}
	for _, f := range month.Filters {
		switch f.Name {
		case "Cleanup":
			if f.Visible || f.Toggle != "" {
				t.Errorf("cleanup filter = %+v", f)
			}
		case "Fundraiser":
			if !f.Visible || f.Toggle != "Fundraiser,Cleanup" {
				t.Errorf("fundraiser filter = %+v", f)
			}
		}
	}
}

func TestQueryGetCalendarMonth_DefaultsToNow(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	month := QueryGetCalendarMonth(GetCalendarMonthQuery{Hash: "#garbage", Now: now}, GetCalendarMonthDeps{Catalog: testCatalog(t)})
	if month.Month != "2025-03" {
		t.Errorf("Month = %q, want 2025-03", month.Month)
	}
}

func TestParseHidden(t *testing.T) {
	got := ParseHidden(url.Values{"hide": {"Cleanup, Workshop", ""}})
	if !reflect.DeepEqual(got, []string{"Cleanup", "Workshop"}) {
		t.Errorf("ParseHidden = %v", got)
	}
}

func TestQueryGetOpportunities(t *testing.T) {
	now := time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)
	cards := QueryGetOpportunities(now, GetOpportunitiesDeps{Catalog: testCatalog(t)})
	if len(cards) != 3 {
		t.Fatalf("cards = %d", len(cards))
	}
	if cards[0].Title != "Park Cleanup" || cards[0].Upcoming {
		t.Errorf("first card = %+v", cards[0])
	}
	if !cards[1].Upcoming || cards[1].Colour != "#87FFAC" {
		t.Errorf("second card = %+v", cards[1])
	}
}
