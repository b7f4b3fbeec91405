package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/application/orchestrators"
	"volunteerconnect/internal/authguard"
	"volunteerconnect/internal/domain/user"
	"volunteerconnect/internal/page"
	"volunteerconnect/internal/router"
)

// sessionExpiredNotice is flashed to a tab whose login timed out.
const sessionExpiredNotice = "Your session has expired. Please log in again."

// Flash is a one-shot message carried across a POST/redirect/GET.
type Flash struct {
	Error   string
	Notice  string
	Success string
	Form    map[string]string // submitted values to refill the form with
	Target  string            // fragment the flash belongs to; empty matches any page
}

// Value returns the submitted value of a form field.
func (f *Flash) Value(field string) string {
	if f == nil {
		return ""
	}
	return f.Form[field]
}

// Tab is the server-side counterpart of one browser tab: its page registry,
// router, document, storage and auth guard.
type Tab struct {
	ID      string
	Pages   *page.Registry
	Router  *router.Router
	Doc     *router.Document
	Session kv.Store // cleared when the tab goes away
	Local   kv.Store // shared by every tab of the same device
	Guard   *authguard.Guard
	Users   *user.Registry

	mu       sync.Mutex
	flash    *Flash
	lastSeen time.Time
}

// SetFlash replaces the tab's pending flash.
func (t *Tab) SetFlash(f Flash) {
	t.mu.Lock()
	t.flash = &f
	t.mu.Unlock()
}

// peekFlash returns the pending flash without consuming it.
func (t *Tab) peekFlash() *Flash {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flash
}

// consumeFlash drops f if it is still the pending flash.
func (t *Tab) consumeFlash(f *Flash) {
	t.mu.Lock()
	if t.flash == f {
		t.flash = nil
	}
	t.mu.Unlock()
}

// activity records a request: a logged-in tab restarts its inactivity timer.
func (t *Tab) activity(ctx context.Context) {
	t.mu.Lock()
	t.lastSeen = time.Now()
	t.mu.Unlock()

	if !t.Guard.LoggedIn(ctx) {
		return
	}
	if t.Guard.Armed() {
		t.Guard.Touch()
	} else {
		t.Guard.Arm()
	}
}

func (t *Tab) idleSince() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSeen
}

// headerState feeds the header its login state.
func (t *Tab) headerState(ctx context.Context) (bool, string) {
	u, err := orchestrators.CurrentUser(ctx, t.Session)
	if err != nil {
		slog.Warn("session_user_unreadable", "tab", t.ID, "error", err)
		return false, ""
	}
	if u == nil {
		return false, ""
	}
	return true, u.DisplayName()
}

// close stops the tab's timer. Memory-backed session storage is dropped with the tab.
func (t *Tab) close() {
	t.Guard.Disarm()
	if m, ok := t.Session.(*kv.MemoryStore); ok {
		m.Clear()
	}
}

// TabFactory builds a new tab for a session and device id.
type TabFactory func(ctx context.Context, tabID, deviceID string) (*Tab, error)

// TabStore holds the open tabs and evicts idle ones.
type TabStore struct {
	build TabFactory
	ttl   time.Duration

	mu   sync.Mutex
	tabs map[string]*Tab
	done chan struct{}
	once sync.Once
}

// NewTabStore creates a store that evicts tabs idle for longer than ttl.
// A non-positive ttl disables eviction.
func NewTabStore(build TabFactory, ttl time.Duration) *TabStore {
	s := &TabStore{
		build: build,
		ttl:   ttl,
		tabs:  make(map[string]*Tab),
		done:  make(chan struct{}),
	}
	if ttl > 0 {
		go s.janitor(min(ttl, time.Minute))
	}
	return s
}

// Get returns the tab for tabID, creating it on first use.
func (s *TabStore) Get(ctx context.Context, tabID, deviceID string) (*Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tabs[tabID]; ok {
		return t, nil
	}
	t, err := s.build(ctx, tabID, deviceID)
	if err != nil {
		return nil, err
	}
	t.lastSeen = time.Now()
	s.tabs[tabID] = t
	slog.Debug("tab_opened", "tab", tabID, "open_tabs", len(s.tabs))
	return t, nil
}

// Len returns the number of open tabs.
func (s *TabStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tabs)
}

// Evict closes every tab idle since before cutoff and returns how many were closed.
func (s *TabStore) Evict(cutoff time.Time) int {
	s.mu.Lock()
	var stale []*Tab
	for id, t := range s.tabs {
		if t.idleSince().Before(cutoff) {
			stale = append(stale, t)
			delete(s.tabs, id)
		}
	}
	s.mu.Unlock()

	for _, t := range stale {
		t.close()
	}
	if len(stale) > 0 {
		slog.Debug("tabs_evicted", "count", len(stale))
	}
	return len(stale)
}

// Close stops the janitor and closes every tab.
func (s *TabStore) Close() {
	s.once.Do(func() { close(s.done) })
	s.Evict(time.Now().Add(time.Hour))
}

func (s *TabStore) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Evict(time.Now().Add(-s.ttl))
		}
	}
}
