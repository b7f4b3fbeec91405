package authguard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/domain/user"
	"volunteerconnect/internal/page"
)

// DefaultTimeout is how long a logged-in session may sit idle.
const DefaultTimeout = 15 * time.Minute

// Navigator moves the tab to another page.
type Navigator interface {
	NavigateTo(ctx context.Context, kind page.Kind, hash string) error
}

// Guard gates pages on the session identity and expires idle sessions.
type Guard struct {
	session kv.Store
	nav     Navigator
	timeout time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // bumped on every arm and disarm; a timer only expires its own generation
	subs  []func()
}

// New creates a guard over session storage. A non-positive timeout uses DefaultTimeout.
func New(session kv.Store, nav Navigator, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guard{session: session, nav: nav, timeout: timeout}
}

// Check reports whether a session identity exists. When it does not, the
// tab is sent to the login page.
// POST: returns true iff session storage holds user.SessionKey; a false
// result has already navigated to page.Login
func (g *Guard) Check(ctx context.Context) bool {
	if g.LoggedIn(ctx) {
		return true
	}
	slog.Info("auth_event", "event", "unauthorized")
	if err := g.nav.NavigateTo(ctx, page.Login, ""); err != nil {
		slog.Error("auth_redirect_failed", "error", err)
	}
	return false
}

// LoggedIn reports whether a session identity exists without redirecting.
// Storage errors count as logged out.
func (g *Guard) LoggedIn(ctx context.Context) bool {
	_, ok, err := g.session.Get(ctx, user.SessionKey)
	if err != nil {
		slog.Error("session_read_failed", "error", err)
		return false
	}
	return ok
}

// Arm starts the inactivity timer, replacing any running one.
func (g *Guard) Arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armLocked()
}

// Touch records activity, pushing the expiry back by the full timeout.
// It does nothing while the timer is not armed.
func (g *Guard) Touch() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.armLocked()
	}
}

// armLocked replaces the running timer with a fresh one of a new generation.
// A timer that already fired keeps its old generation, so its pending
// expire finds itself stale and leaves the session alone.
func (g *Guard) armLocked() {
	if g.timer != nil {
		g.timer.Stop()
	}
	g.gen++
	gen := g.gen
	g.timer = time.AfterFunc(g.timeout, func() { g.expire(gen) })
}

// Disarm stops the inactivity timer.
func (g *Guard) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// Armed reports whether the inactivity timer is running.
func (g *Guard) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timer != nil
}

// Subscribe registers fn to run when a session expires.
func (g *Guard) Subscribe(fn func()) {
	g.mu.Lock()
	g.subs = append(g.subs, fn)
	g.mu.Unlock()
}

// expire clears the session identity and signals subscribers.
// PRE: gen is the generation the firing timer was armed with
// POST: a stale generation changes nothing
func (g *Guard) expire(gen uint64) {
	g.mu.Lock()
	if gen != g.gen || g.timer == nil {
		g.mu.Unlock()
		slog.Debug("auth_event", "event", "stale_expiry")
		return
	}
	g.timer = nil
	subs := append([]func(){}, g.subs...)

	// The session is cleared before unlocking so a concurrent Arm starts
	// from a clean slate.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.session.Remove(ctx, user.SessionKey); err != nil {
		slog.Error("session_clear_failed", "error", err)
	}
	g.mu.Unlock()
	slog.Warn("auth_event", "event", "session_expired", "idle", g.timeout.String())

	for _, fn := range subs {
		fn()
	}
}
