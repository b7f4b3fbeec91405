package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/domain/record"
	"volunteerconnect/internal/domain/user"
)

// RosterPath is where the user roster is served from.
const RosterPath = "data/user.json"

// AssetFetcher loads a site asset by root-relative path.
type AssetFetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// SessionTimer is the inactivity timer armed by a login.
type SessionTimer interface {
	Arm()
	Disarm()
}

// LoginInput carries the login form.
type LoginInput struct {
	UserName string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Assets   AssetFetcher
	Registry *user.Registry
	Roster   *user.RosterCache // shared across tabs; nil hashes the roster for this call only
	Session  kv.Store
	Timer    SessionTimer
}

var ErrInvalidCredentials = errors.New("invalid username or password")

// ExecuteLogin checks credentials against the roster and stores the signed-in
// user in session storage.
// PRE: deps.Registry is owned by the calling tab
// POST: on success session storage holds user.SessionKey and the timer is armed
// INVARIANT: the roster is loaded into the registry at most once per tab
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (*user.User, error) {
	if deps.Registry.Len() == 0 {
		raw, err := deps.Assets.Fetch(ctx, RosterPath)
		if err != nil {
			return nil, fmt.Errorf("load roster: %w", err)
		}
		cache := deps.Roster
		if cache == nil {
			cache = user.NewRosterCache()
		}
		users, err := cache.Users(raw)
		if err != nil {
			return nil, fmt.Errorf("load roster: %w", err)
		}
		deps.Registry.AddUsers(users)
		slog.Debug("roster_loaded", "users", deps.Registry.Len())
	}

	u := deps.Registry.DoesUserExist(input.UserName, input.Password)
	if u == nil {
		slog.Info("auth_event", "event", "login_failed", "user_name", input.UserName)
		return nil, ErrInvalidCredentials
	}

	serialized, ok := u.Serialize()
	if !ok {
		return nil, record.Invalid("user", "roster entry has empty fields")
	}
	if err := deps.Session.Put(ctx, user.SessionKey, serialized); err != nil {
		return nil, err
	}
	if deps.Timer != nil {
		deps.Timer.Arm()
	}

	slog.Info("auth_event", "event", "login_success", "user_name", u.UserName())
	return u, nil
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Session kv.Store
	Timer   SessionTimer
}

// ExecuteLogout clears the session identity.
// POST: session storage no longer holds user.SessionKey; the timer is stopped
func ExecuteLogout(ctx context.Context, deps LogoutDeps) error {
	if deps.Timer != nil {
		deps.Timer.Disarm()
	}
	if err := deps.Session.Remove(ctx, user.SessionKey); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}

// CurrentUser decodes the signed-in user from session storage.
// POST: returns nil, nil when nobody is signed in
func CurrentUser(ctx context.Context, session kv.Store) (*user.User, error) {
	raw, ok, err := session.Get(ctx, user.SessionKey)
	if err != nil || !ok {
		return nil, err
	}
	u := user.New()
	if err := u.Deserialize(raw); err != nil {
		return nil, err
	}
	return u, nil
}
