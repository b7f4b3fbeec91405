package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"volunteerconnect/internal/adapters/email"
	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/domain/record"
	"volunteerconnect/internal/domain/user"
)

const testRoster = `{"users":[
	{"UserName":"alice","DisplayName":"Alice Anders","EmailAddress":"alice@example.com","Password":"pw123456"},
	{"UserName":"bobby","DisplayName":"Bobby Brown","EmailAddress":"bobby@example.com","Password":"hunter22"}
]}`

var fixedTime = time.Date(2025, 2, 3, 13, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// mapAssets serves fixed asset bodies and counts fetches.
type mapAssets struct {
	files   map[string]string
	fetches int
}

func (m *mapAssets) Fetch(_ context.Context, path string) (string, error) {
	m.fetches++
	body, ok := m.files[path]
	if !ok {
		return "", record.ErrNetwork
	}
	return body, nil
}

type fakeTimer struct{ armed bool }

func (f *fakeTimer) Arm()    { f.armed = true }
func (f *fakeTimer) Disarm() { f.armed = false }

func loginDeps() (LoginDeps, *mapAssets, *fakeTimer) {
	assets := &mapAssets{files: map[string]string{RosterPath: testRoster}}
	timer := &fakeTimer{}
	return LoginDeps{
		Assets:   assets,
		Registry: user.NewRegistry(),
		Session:  kv.NewMemoryStore(),
		Timer:    timer,
	}, assets, timer
}

func TestExecuteLogin(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		input    LoginInput
		wantErr  error
		loggedIn bool
	}{
		{"valid", LoginInput{"alice", "pw123456"}, nil, true},
		{"wrong password", LoginInput{"alice", "nope"}, ErrInvalidCredentials, false},
		{"case sensitive name", LoginInput{"Alice", "pw123456"}, ErrInvalidCredentials, false},
		{"unknown user", LoginInput{"carol", "pw123456"}, ErrInvalidCredentials, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _, timer := loginDeps()
			u, err := ExecuteLogin(ctx, tt.input, deps)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			current, _ := CurrentUser(ctx, deps.Session)
			if (current != nil) != tt.loggedIn || timer.armed != tt.loggedIn {
				t.Fatalf("logged in = %v armed = %v, want %v", current != nil, timer.armed, tt.loggedIn)
			}
			if tt.loggedIn && (u.DisplayName() != "Alice Anders" || current.UserName() != "alice") {
				t.Errorf("user = %v, session user = %v", u, current)
			}
		})
	}
}

func TestExecuteLogin_LoadsRosterOnce(t *testing.T) {
	ctx := context.Background()
	deps, assets, _ := loginDeps()
	ExecuteLogin(ctx, LoginInput{"alice", "wrong"}, deps)
	ExecuteLogin(ctx, LoginInput{"alice", "pw123456"}, deps)

	if assets.fetches != 1 {
		t.Errorf("roster fetched %d times, want 1", assets.fetches)
	}
	if deps.Registry.Len() != 2 {
		t.Errorf("registry has %d users, want 2", deps.Registry.Len())
	}
}

func TestExecuteLogin_SharedRosterHashedOnce(t *testing.T) {
	ctx := context.Background()
	cache := user.NewRosterCache()
	for i := 0; i < 3; i++ {
		deps, _, _ := loginDeps()
		deps.Roster = cache
		if _, err := ExecuteLogin(ctx, LoginInput{"alice", "pw123456"}, deps); err != nil {
			t.Fatalf("tab %d login: %v", i, err)
		}
		if deps.Registry.Len() != 2 {
			t.Errorf("tab %d registry has %d users, want 2", i, deps.Registry.Len())
		}
	}
	if n := cache.Hashed(); n != 1 {
		t.Errorf("roster hashed %d times, want 1", n)
	}
}

func TestExecuteLogin_RosterUnavailable(t *testing.T) {
	deps, assets, _ := loginDeps()
	delete(assets.files, RosterPath)
	if _, err := ExecuteLogin(context.Background(), LoginInput{"alice", "pw123456"}, deps); !errors.Is(err, record.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestExecuteLogout(t *testing.T) {
	ctx := context.Background()
	deps, _, timer := loginDeps()
	if _, err := ExecuteLogin(ctx, LoginInput{"alice", "pw123456"}, deps); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := ExecuteLogout(ctx, LogoutDeps{Session: deps.Session, Timer: timer}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := deps.Session.Get(ctx, user.SessionKey); ok || timer.armed {
		t.Errorf("session still present=%v armed=%v", ok, timer.armed)
	}
}

func TestContactLifecycle(t *testing.T) {
	ctx := context.Background()
	deps := ContactDeps{Store: kv.NewMemoryStore(), Now: fixedNow}

	key, err := ExecuteAddContact(ctx, ContactInput{"Ann Lee", "905-555-1234", "ann@example.com"}, deps)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if key != record.Key(record.KindContact, fixedTime) {
		t.Errorf("key = %q", key)
	}

	second, err := ExecuteAddContact(ctx, ContactInput{"Bo Chen", "9055551234", "bo@example.com"}, deps)
	if err != nil || second == key {
		t.Fatalf("second add = %q, %v", second, err)
	}

	if err := ExecuteEditContact(ctx, key, ContactInput{"Ann Lee-Smith", "905-555-1234", "ann@example.com"}, deps); err != nil {
		t.Fatalf("edit: %v", err)
	}
	c, err := LoadContact(ctx, deps.Store, key)
	if err != nil || c.FullName() != "Ann Lee-Smith" {
		t.Fatalf("LoadContact = %v, %v", c, err)
	}

	err = ExecuteEditContact(ctx, key, ContactInput{"Ann", "not a phone", "ann@example.com"}, deps)
	var ve *record.ValidationError
	if !errors.As(err, &ve) || ve.Field != "contactNumber" {
		t.Fatalf("invalid edit err = %v", err)
	}
	if c, _ := LoadContact(ctx, deps.Store, key); c.FullName() != "Ann Lee-Smith" {
		t.Error("invalid edit changed the stored contact")
	}

	if err := ExecuteDeleteContact(ctx, key, deps); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := LoadContact(ctx, deps.Store, key); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("deleted contact err = %v, want ErrNotFound", err)
	}
}

func TestExecuteAddContact_Invalid(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	_, err := ExecuteAddContact(ctx, ContactInput{"  ", "905-555-1234", "ann@example.com"}, ContactDeps{Store: store, Now: fixedNow})
	if !errors.Is(err, record.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if keys, _ := store.Keys(ctx); len(keys) != 0 {
		t.Errorf("store = %v, want empty", keys)
	}
}

func TestExecuteDeleteContact_RejectsOtherKinds(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	store.Put(ctx, user.SessionKey, "alice,Alice Anders,alice@example.com")
	err := ExecuteDeleteContact(ctx, user.SessionKey, ContactDeps{Store: store, Now: fixedNow})
	if !errors.Is(err, record.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, ok, _ := store.Get(ctx, user.SessionKey); !ok {
		t.Error("non-contact key was removed")
	}
}

func TestExecuteSignUp(t *testing.T) {
	ctx := context.Background()
	sender := email.NewNoopSender()
	deps := SignUpDeps{Store: kv.NewMemoryStore(), Sender: sender, Inbox: "inbox@volunteerconnect.ca", Now: fixedNow}

	key, err := ExecuteSignUp(ctx, SignUpInput{"Ann Lee", "ann@example.com", "Greeter", "Park Cleanup"}, deps)
	if err != nil {
		t.Fatalf("ExecuteSignUp: %v", err)
	}
	raw, ok, _ := deps.Store.Get(ctx, key)
	if !ok || raw != "Ann Lee,ann@example.com,Greeter" {
		t.Errorf("stored = %q, %v", raw, ok)
	}
	if sent := sender.Sent(); len(sent) != 2 {
		t.Errorf("sent %d emails, want 2", len(sent))
	}

	if _, err := ExecuteSignUp(ctx, SignUpInput{"Ann Lee", "ann@", "Greeter", ""}, deps); !errors.Is(err, record.ErrValidation) {
		t.Errorf("invalid email err = %v", err)
	}
}

func TestExecuteSendMessage(t *testing.T) {
	ctx := context.Background()
	sender := email.NewNoopSender()
	deps := SendMessageDeps{Store: kv.NewMemoryStore(), Sender: sender, Inbox: "inbox@volunteerconnect.ca", Now: fixedNow}

	key, err := ExecuteSendMessage(ctx, SendMessageInput{"Ann Lee", "ann@example.com", "Hello", "Can I help?"}, deps)
	if err != nil {
		t.Fatalf("ExecuteSendMessage: %v", err)
	}
	if !record.HasKind(key, record.KindMessage) {
		t.Errorf("key = %q", key)
	}
	sent := sender.Sent()
	if len(sent) != 1 || sent[0].ReplyTo != "ann@example.com" {
		t.Errorf("sent = %+v", sent)
	}

	if _, err := ExecuteSendMessage(ctx, SendMessageInput{"Ann Lee", "ann@example.com", "", "body"}, deps); !errors.Is(err, record.ErrValidation) {
		t.Errorf("missing subject err = %v", err)
	}
}
