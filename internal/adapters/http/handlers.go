package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"volunteerconnect/internal/page"
	"volunteerconnect/internal/router"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts markdown to HTML, falling back to escaped text.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// pageURL builds the address of a fragment, plus optional name/value query pairs.
// Pairs with an empty value are omitted.
func pageURL(fragment string, pairs ...string) string {
	q := url.Values{}
	q.Set("hash", fragment)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	return "/?" + q.Encode()
}

// docFuncs are available to every page fragment and the header.
var docFuncs = template.FuncMap{
	"renderMarkdown": renderMarkdown,
	"pageURL":        pageURL,
}

type viewKey struct{}

// view carries what a page display needs from the request that triggered it.
type view struct {
	query url.Values
	flash *Flash
	now   time.Time
}

func withView(ctx context.Context, v view) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}

func viewFrom(ctx context.Context) view {
	v, _ := ctx.Value(viewKey{}).(view)
	if v.query == nil {
		v.query = url.Values{}
	}
	if v.now.IsZero() {
		v.now = time.Now()
	}
	return v
}

// flashFor returns the pending flash when it belongs to the page at path.
func (v view) flashFor(path string) *Flash {
	if v.flash == nil || (v.flash.Target != "" && v.flash.Target != path) {
		return nil
	}
	return v.flash
}

// pageData is what every page fragment renders from.
type pageData struct {
	Flash *Flash
	Data  any
}

// shellData is what the layout renders from.
type shellData struct {
	Title  string
	Header template.HTML
	Main   template.HTML
}

// handleIndex navigates the tab to ?hash= and renders its document.
// When navigation ends at another location (a guard redirect, the home
// default, an unknown page) the browser is sent there with 303 so its
// address always matches the router.
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	tab, err := a.tabFor(r)
	if err != nil {
		internalError(w, err)
		return
	}
	requested := strings.TrimPrefix(r.URL.Query().Get("hash"), "#")

	flash := tab.peekFlash()
	ctx := withView(r.Context(), view{query: r.URL.Query(), flash: flash, now: a.now()})
	tab.activity(ctx)
	tab.Doc.SetCSRFField(csrf.TemplateField(r))

	if err := tab.Router.HandleFragment(ctx, requested); err != nil {
		slog.Warn("navigation_error", "tab", tab.ID, "hash", requested, "error", err)
	}

	location := tab.Router.Location()
	if location != requested {
		q := r.URL.Query()
		q.Set("hash", location)
		http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
		return
	}

	path, _ := router.ParseFragment(location)
	if flash != nil && (flash.Target == "" || flash.Target == path) {
		tab.consumeFlash(flash)
	}

	status := http.StatusOK
	switch {
	case tab.Router.State() == router.Failed:
		status = http.StatusInternalServerError
	case path == page.NotFound.Path():
		status = http.StatusNotFound
	}
	a.renderShell(w, tab, status)
}

// handleSearch sends the browser to the page named by ?q=, matched by route,
// registry name or title. An unmatched name leaves the tab where it was.
func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	tab, err := a.tabFor(r)
	if err != nil {
		internalError(w, err)
		return
	}
	term := r.URL.Query().Get("q")
	if d, ok := tab.Pages.Search(term); ok {
		slog.Debug("page_search", "tab", tab.ID, "term", term, "page", d.Name)
		http.Redirect(w, r, pageURL(d.Path), http.StatusSeeOther)
		return
	}
	back := tab.Router.Location()
	if back == "" {
		back = page.Home.Path()
	}
	path, _ := router.ParseFragment(back)
	tab.SetFlash(Flash{Notice: fmt.Sprintf("No page called %q.", strings.TrimSpace(term)), Target: path})
	http.Redirect(w, r, pageURL(back), http.StatusSeeOther)
}

// renderShell writes the layout around the tab's document.
func (a *App) renderShell(w http.ResponseWriter, tab *Tab, status int) {
	var buf bytes.Buffer
	err := a.layout.ExecuteTemplate(&buf, "index.html", shellData{
		Title:  tab.Doc.Title(),
		Header: tab.Doc.Header(),
		Main:   tab.Doc.Main(),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handlePerf reports the last 15 minutes of request, query and navigation timings.
func (a *App) handlePerf(w http.ResponseWriter, r *http.Request) {
	if a.opts.Collector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	snap := a.opts.Collector.Snapshot(time.Now().Add(-15*time.Minute), 10)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		slog.Error("perf_encode_failed", "error", err)
	}
}
