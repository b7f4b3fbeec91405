package router

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"
)

// ErrorNotice replaces the main region when no page, not even the 404 page, can be loaded.
const ErrorNotice = `<div class="alert alert-danger" role="alert">This page could not be loaded. Please try again later.</div>`

// HeaderData is what the header fragment renders from.
type HeaderData struct {
	ActiveID string
	LoggedIn bool
	UserName string
}

// Document holds the rendered header and main region of one tab.
// Fragments are html/template sources; they are executed with the document's
// functions plus csrfField, which yields the current request's hidden token input.
type Document struct {
	mu      sync.RWMutex
	funcs   template.FuncMap
	csrf    template.HTML
	header  template.HTML
	mainSrc string
	main    template.HTML
	title   string
}

// NewDocument creates an empty document. funcs are available to every fragment.
func NewDocument(funcs template.FuncMap) *Document {
	return &Document{funcs: funcs}
}

// SetCSRFField sets the hidden input rendered by {{csrfField}}.
func (d *Document) SetCSRFField(field template.HTML) {
	d.mu.Lock()
	d.csrf = field
	d.mu.Unlock()
}

// SetMain replaces the main region with a freshly fetched fragment, rendered
// with no data.
// POST: on error the main region is unchanged
func (d *Document) SetMain(title, src string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	html, err := d.executeLocked("main", src, nil)
	if err != nil {
		return err
	}
	d.title = title
	d.mainSrc = src
	d.main = html
	return nil
}

// Render re-executes the current main fragment with data.
// POST: on error the main region is unchanged
func (d *Document) Render(data any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	html, err := d.executeLocked("main", d.mainSrc, data)
	if err != nil {
		return err
	}
	d.main = html
	return nil
}

// SetNotice replaces the main region with static markup.
func (d *Document) SetNotice(notice template.HTML) {
	d.mu.Lock()
	d.mainSrc = ""
	d.main = notice
	d.mu.Unlock()
}

// SetHeader renders the header fragment with data.
func (d *Document) SetHeader(src string, data HeaderData) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	html, err := d.executeLocked("header", src, data)
	if err != nil {
		return err
	}
	d.header = html
	return nil
}

// Header returns the rendered header.
func (d *Document) Header() template.HTML {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.header
}

// Main returns the rendered main region.
func (d *Document) Main() template.HTML {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.main
}

// Title returns the title of the page currently displayed.
func (d *Document) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

func (d *Document) executeLocked(name, src string, data any) (template.HTML, error) {
	csrf := d.csrf
	funcs := template.FuncMap{"csrfField": func() template.HTML { return csrf }}
	for k, v := range d.funcs {
		funcs[k] = v
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %s fragment: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s fragment: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
