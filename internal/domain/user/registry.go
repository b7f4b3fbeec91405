package user

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"volunteerconnect/internal/domain/record"
)

// RosterEntry is one user in the static roster document.
type RosterEntry struct {
	UserName     string `json:"UserName"`
	DisplayName  string `json:"DisplayName"`
	EmailAddress string `json:"EmailAddress"`
	Password     string `json:"Password"`
}

// Roster is the static user document fetched at login time.
type Roster struct {
	Users []RosterEntry `json:"users"`
}

// ParseRoster decodes a roster document.
func ParseRoster(data []byte) (Roster, error) {
	var r Roster
	if err := json.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("decode roster: %w", record.Invalid("roster", err.Error()))
	}
	return r, nil
}

// Registry holds the users known to one tab. It is filled from the roster and
// never written back.
type Registry struct {
	mu    sync.RWMutex
	users []*User
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a user whose name and email are not yet taken.
// POST: returns ErrDuplicateUserName or ErrDuplicateEmail on collision
func (r *Registry) Add(u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.userName == u.userName {
			return ErrDuplicateUserName
		}
		if existing.emailAddress == u.emailAddress {
			return ErrDuplicateEmail
		}
	}
	r.users = append(r.users, u)
	return nil
}

// Load hashes and adds every roster entry. Entries are trusted as-is;
// duplicates of users already present are skipped.
func (r *Registry) Load(roster Roster) error {
	users, err := hashRoster(roster)
	if err != nil {
		return err
	}
	r.AddUsers(users)
	return nil
}

// AddUsers adds copies of users, skipping duplicates of users already present.
func (r *Registry) AddUsers(users []*User) {
	for _, u := range users {
		c := *u
		if err := r.Add(&c); err != nil {
			slog.Debug("roster_entry_skipped", "user_name", u.userName, "reason", err.Error())
		}
	}
}

func hashRoster(roster Roster) ([]*User, error) {
	users := make([]*User, 0, len(roster.Users))
	for _, e := range roster.Users {
		u := &User{userName: e.UserName, displayName: e.DisplayName, emailAddress: e.EmailAddress}
		if err := u.setHash(e.Password); err != nil {
			return nil, fmt.Errorf("hash roster password for %s: %w", e.UserName, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// RosterCache hashes a roster document once and hands the result to every
// tab's registry. Only the most recent document is kept.
type RosterCache struct {
	mu     sync.Mutex
	raw    string
	users  []*User
	hashed int
}

// NewRosterCache returns an empty cache.
func NewRosterCache() *RosterCache {
	return &RosterCache{}
}

// Users returns the hashed users of the roster document raw.
// POST: a document equal to the cached one is neither parsed nor hashed again
func (c *RosterCache) Users(raw string) ([]*User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.users != nil && raw == c.raw {
		return c.users, nil
	}
	roster, err := ParseRoster([]byte(raw))
	if err != nil {
		return nil, err
	}
	users, err := hashRoster(roster)
	if err != nil {
		return nil, err
	}
	c.raw, c.users = raw, users
	c.hashed++
	slog.Debug("roster_hashed", "users", len(users))
	return users, nil
}

// Hashed reports how many roster documents have been hashed.
func (c *RosterCache) Hashed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hashed
}

// DoesUserExist returns the user whose name and password both match exactly, or nil.
func (r *Registry) DoesUserExist(userName, password string) *User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.userName == userName && u.CheckPassword(password) {
			return u
		}
	}
	return nil
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
