package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"volunteerconnect/internal/page"
)

// HeaderState reports the login state the header renders.
type HeaderState func(ctx context.Context) (loggedIn bool, userName string)

// Router resolves location fragments to pages, loads their fragments into
// the document, injects the header, then runs the page's display callback.
type Router struct {
	pages    *page.Registry
	fetcher  Fetcher
	doc      *Document
	header   HeaderState
	recorder NavigationRecorder

	mu       sync.Mutex
	state    State
	location string
	gen      uint64
	cancel   context.CancelFunc
	lastErr  error
}

// Option configures a Router.
type Option func(*Router)

// WithHeaderState sets how the header learns whether someone is logged in.
func WithHeaderState(h HeaderState) Option {
	return func(r *Router) { r.header = h }
}

// NavigationRecorder receives the timing of every finished navigation.
type NavigationRecorder interface {
	RecordNavigation(path, outcome string, d time.Duration)
}

// WithRecorder reports navigation timings to rec.
func WithRecorder(rec NavigationRecorder) Option {
	return func(r *Router) { r.recorder = rec }
}

// New creates an idle router.
// PRE: pages holds a descriptor for page.NotFound and page.Home
func New(pages *page.Registry, fetcher Fetcher, doc *Document, opts ...Option) *Router {
	r := &Router{pages: pages, fetcher: fetcher, doc: doc}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Location returns the current fragment without its leading '#'.
func (r *Router) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

// Err returns the error that left the router Failed, if any.
func (r *Router) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Document returns the document the router renders into.
func (r *Router) Document() *Document {
	return r.doc
}

// Resolve maps a fragment to its descriptor and sub-hash. An empty path is
// the home page; an unknown path is the not-found page.
func (r *Router) Resolve(fragment string) (page.Descriptor, string, error) {
	path, sub := ParseFragment(fragment)
	if path == "" {
		d, err := r.pages.ByKind(page.Home)
		return d, sub, err
	}
	if d, ok := r.pages.LookupByPath(path); ok {
		return d, sub, nil
	}
	slog.Debug("route_not_found", "path", path)
	d, err := r.pages.ByKind(page.NotFound)
	return d, "", err
}

// HandleFragment reacts to an external change of the location fragment.
func (r *Router) HandleFragment(ctx context.Context, fragment string) error {
	d, sub, err := r.Resolve(fragment)
	if err != nil {
		return err
	}
	return r.load(ctx, d, sub)
}

// NavigateTo sets the location to kind's path plus hash and loads it through
// the same path as an external fragment change.
func (r *Router) NavigateTo(ctx context.Context, kind page.Kind, hash string) error {
	d, err := r.pages.ByKind(kind)
	if err != nil {
		return err
	}
	return r.HandleFragment(ctx, d.Path+hash)
}

// Reload displays the current location again.
func (r *Router) Reload(ctx context.Context) error {
	return r.HandleFragment(ctx, r.Location())
}

// begin starts a navigation, cancelling any in flight.
func (r *Router) begin(ctx context.Context, location string) (context.Context, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	navCtx, cancel := context.WithCancel(ctx)
	r.gen++
	r.cancel = cancel
	r.state = Resolving
	r.location = location
	r.lastErr = nil
	return navCtx, r.gen
}

// errSuperseded marks work belonging to a navigation that is no longer current.
var errSuperseded = errors.New("navigation superseded")

// commit applies a document change only while gen is the current navigation.
func (r *Router) commit(gen uint64, apply func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return errSuperseded
	}
	return apply()
}

func (r *Router) current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen == gen
}

// settle records the final state of navigation gen, unless a newer one started.
// A Failed navigation leaves ErrorNotice in the main region.
func (r *Router) settle(gen uint64, state State, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return false
	}
	if state == Failed {
		r.doc.SetNotice(ErrorNotice)
	}
	r.state = state
	r.lastErr = err
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return true
}

// load fetches d's fragment, splices it in, injects the header and runs
// d's display callback, in that order.
// POST: on fetch failure the not-found page is loaded instead; if that fails
// too the router is Failed and the main region holds ErrorNotice
func (r *Router) load(ctx context.Context, d page.Descriptor, hash string) error {
	start := time.Now()
	navCtx, gen := r.begin(ctx, d.Path+hash)
	slog.Debug("route_loading", "page", d.Name, "path", d.Path, "hash", hash)

	src, err := r.fetch(navCtx, "page", PagePath(d.Path))
	if err == nil {
		err = r.commit(gen, func() error { return r.doc.SetMain(d.Kind.Title(), src) })
	} else if !r.current(gen) {
		err = errSuperseded
	}
	if errors.Is(err, errSuperseded) {
		r.observe(d, OutcomeSuperseded, start)
		return nil
	}
	if err != nil {
		return r.fail(ctx, gen, d, err, start)
	}

	r.injectHeader(navCtx, gen, d.Path)

	if !r.settle(gen, Loaded, nil) {
		r.observe(d, OutcomeSuperseded, start)
		return nil
	}
	r.observe(d, OutcomeLoaded, start)

	if err := d.Display(ctx, hash); err != nil {
		slog.Error("page_display_failed", "page", d.Name, "hash", hash, "error", err)
		return fmt.Errorf("display %s: %w", d.Name, err)
	}
	return nil
}

func (r *Router) fail(ctx context.Context, gen uint64, d page.Descriptor, err error, start time.Time) error {
	if d.Kind != page.NotFound {
		slog.Warn("route_fallback", "page", d.Name, "error", err)
		r.observe(d, OutcomeFallback, start)
		notFound, lookupErr := r.pages.ByKind(page.NotFound)
		if lookupErr == nil {
			return r.load(ctx, notFound, "")
		}
		err = errors.Join(err, lookupErr)
	}

	slog.Error("route_failed", "page", d.Name, "error", err)
	r.settle(gen, Failed, err)
	r.observe(d, OutcomeFailed, start)
	return fmt.Errorf("load %s: %w", d.Name, err)
}

// injectHeader renders the shared header. Failures are logged and never
// block the page.
func (r *Router) injectHeader(ctx context.Context, gen uint64, path string) {
	src, err := r.fetch(ctx, "header", HeaderPath)
	if err != nil {
		slog.Warn("header_load_failed", "error", err)
		return
	}
	data := HeaderData{ActiveID: ActiveLinkID(path)}
	if r.header != nil {
		data.LoggedIn, data.UserName = r.header(ctx)
	}
	err = r.commit(gen, func() error { return r.doc.SetHeader(src, data) })
	if err != nil && !errors.Is(err, errSuperseded) {
		slog.Warn("header_render_failed", "error", err)
	}
}

func (r *Router) fetch(ctx context.Context, fragment, path string) (string, error) {
	start := time.Now()
	src, err := r.fetcher.Fetch(ctx, path)
	fragmentFetchDuration.WithLabelValues(fragment).Observe(time.Since(start).Seconds())
	return src, err
}

func (r *Router) observe(d page.Descriptor, outcome string, start time.Time) {
	navigationsTotal.WithLabelValues(d.Path, outcome).Inc()
	if r.recorder != nil {
		r.recorder.RecordNavigation(d.Path, outcome, time.Since(start))
	}
}
