package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"volunteerconnect/internal/adapters/email"
	"volunteerconnect/internal/adapters/http/middleware"
	"volunteerconnect/internal/adapters/http/perf"
	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/authguard"
	"volunteerconnect/internal/domain/opportunity"
	"volunteerconnect/internal/domain/user"
	"volunteerconnect/internal/page"
	"volunteerconnect/internal/router"
)

// LayoutPath is the page shell every document is rendered into.
const LayoutPath = "views/index.html"

// Options configures the site handler.
type Options struct {
	Site    fs.FS          // site assets: views/, data/, static/
	Fetcher router.Fetcher // where the router loads fragments; defaults to Site

	LocalStore   func(deviceID string) kv.Store
	SessionStore func(tabID string) kv.Store // defaults to an in-memory store per tab

	Catalog *opportunity.Catalog
	Sender  email.Sender
	Inbox   string

	Collector      *perf.Collector
	CSRFKey        []byte // 32 bytes; random when empty
	SecureCookies  bool
	TrustedOrigins []string
	RateLimit      int // requests per second per IP; 0 disables
	SlowRequest    time.Duration
	SessionTimeout time.Duration
	TabTTL         time.Duration

	Now      func() time.Time
	Location *time.Location
}

// App serves the site.
type App struct {
	opts    Options
	fetcher router.Fetcher
	layout  *template.Template
	tabs    *TabStore
	roster  *user.RosterCache
	now     func() time.Time
}

// NewCSRFKey decodes a hex CSRF key, or generates a random one when hexKey is empty.
func NewCSRFKey(hexKey string) ([]byte, error) {
	if hexKey != "" {
		key, err := hex.DecodeString(hexKey)
		if err != nil || len(key) != 32 {
			return nil, errors.New("csrf key must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	slog.Warn("csrf_key_random", "detail", "sessions won't survive restart")
	return key, nil
}

// New builds the App from opts.
// PRE: opts.Site holds LayoutPath; opts.LocalStore and opts.Catalog are set
func New(opts Options) (*App, error) {
	if opts.Site == nil || opts.LocalStore == nil || opts.Catalog == nil {
		return nil, errors.New("web: Site, LocalStore and Catalog are required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Sender == nil {
		opts.Sender = email.NewNoopSender()
	}
	if opts.SessionStore == nil {
		opts.SessionStore = func(string) kv.Store { return kv.NewMemoryStore() }
	}
	if len(opts.CSRFKey) == 0 {
		key, err := NewCSRFKey("")
		if err != nil {
			return nil, err
		}
		opts.CSRFKey = key
	}

	layout, err := template.ParseFS(opts.Site, LayoutPath)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	a := &App{
		opts:    opts,
		fetcher: opts.Fetcher,
		layout:  layout,
		roster:  user.NewRosterCache(),
		now:     func() time.Time { return opts.Now().In(opts.Location) },
	}
	if a.fetcher == nil {
		a.fetcher = router.NewFSFetcher(opts.Site)
	}
	a.tabs = NewTabStore(a.newTab, opts.TabTTL)
	return a, nil
}

// Close releases every open tab.
func (a *App) Close() {
	a.tabs.Close()
}

// newTab assembles a tab: registry, document, router, storage and guard.
func (a *App) newTab(_ context.Context, tabID, deviceID string) (*Tab, error) {
	t := &Tab{
		ID:      tabID,
		Pages:   page.NewRegistry(),
		Doc:     router.NewDocument(docFuncs),
		Session: a.opts.SessionStore(tabID),
		Local:   a.opts.LocalStore(deviceID),
		Users:   user.NewRegistry(),
	}
	t.Router = router.New(t.Pages, a.fetcher, t.Doc,
		router.WithHeaderState(t.headerState),
		router.WithRecorder(a.opts.Collector),
	)
	t.Guard = authguard.New(t.Session, t.Router, a.opts.SessionTimeout)
	t.Guard.Subscribe(func() {
		t.SetFlash(Flash{Notice: sessionExpiredNotice})
	})
	a.registerPages(t)
	if err := t.Pages.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// tabFor returns the tab of the request's session cookie.
func (a *App) tabFor(r *http.Request) (*Tab, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return nil, errors.New("request has no identity")
	}
	return a.tabs.Get(r.Context(), id.Tab, id.Device)
}

// Handler wires routes and middleware.
func (a *App) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SecurityHeaders)
	if a.opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(ctx, a.opts.RateLimit, time.Second)))
	}
	r.Use(middleware.Timing(a.opts.Collector, a.opts.SlowRequest))
	r.Use(middleware.Metrics())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/debug/perf", a.handlePerf)

	assets := http.FileServer(http.FS(a.opts.Site))
	r.Handle("/views/*", assets)
	r.Handle("/data/*", assets)
	r.Handle("/static/*", assets)

	r.Group(func(r chi.Router) {
		if !a.opts.SecureCookies {
			r.Use(plaintext)
		}
		r.Use(middleware.CSRF(a.opts.CSRFKey, a.opts.TrustedOrigins, a.opts.SecureCookies))
		r.Use(middleware.Identify(a.opts.SecureCookies))

		r.Get("/", a.handleIndex)
		r.Get("/search", a.handleSearch)
		r.Post("/actions/login", a.handleLogin)
		r.Post("/actions/logout", a.handleLogout)
		r.Post("/actions/contacts", a.handleAddContact)
		r.Post("/actions/contacts/{key}", a.handleEditContact)
		r.Post("/actions/contacts/{key}/delete", a.handleDeleteContact)
		r.Post("/actions/signups", a.handleSignUp)
		r.Post("/actions/messages", a.handleSendMessage)
	})

	return r
}

// plaintext tells gorilla/csrf the site is served over plain HTTP.
func plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
