package page

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"volunteerconnect/internal/domain/record"
)

// DisplayFunc runs after a page's fragment and the header are in place.
// hash is the sub-hash including its leading '#', or empty.
type DisplayFunc func(ctx context.Context, hash string) error

// Descriptor describes one routable page.
type Descriptor struct {
	Kind      Kind
	Name      string
	Path      string
	OnDisplay DisplayFunc
}

// New builds the descriptor for kind with its canonical name and path.
// A nil onDisplay displays the fragment unchanged.
func New(kind Kind, onDisplay DisplayFunc) Descriptor {
	return Descriptor{Kind: kind, Name: kind.Name(), Path: kind.Path(), OnDisplay: onDisplay}
}

// Display invokes OnDisplay when present.
func (d Descriptor) Display(ctx context.Context, hash string) error {
	if d.OnDisplay == nil {
		return nil
	}
	return d.OnDisplay(ctx, hash)
}

// Registry maps page names to descriptors. It is owned by one tab.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Register inserts d, or overwrites the descriptor already registered under d.Name.
// POST: LookupByName(d.Name) returns d; registration order of an existing name is kept
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Name]; !exists {
		r.order = append(r.order, d.Name)
	}
	r.byName[d.Name] = d
}

// LookupByPath scans in registration order for the first descriptor whose
// path equals segment.
func (r *Registry) LookupByPath(segment string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if d := r.byName[name]; d.Path == segment {
			return d, true
		}
	}
	return Descriptor{}, false
}

// LookupByName returns the descriptor registered under name.
func (r *Registry) LookupByName(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Search resolves a typed page name, as entered in the header search box.
// term matches a route segment, a registry name or a page title, ignoring
// case and surrounding space; spaces in term also match the hyphens of a path.
// The not-found page is never a search result.
func (r *Registry) Search(term string) (Descriptor, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return Descriptor{}, false
	}
	if d, ok := r.LookupByPath(strings.ReplaceAll(term, " ", "-")); ok && d.Kind != NotFound {
		return d, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		d := r.byName[name]
		if d.Kind == NotFound {
			continue
		}
		if strings.ToLower(d.Name) == term || strings.ToLower(d.Kind.Title()) == term {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ByKind returns the descriptor registered for kind.
func (r *Registry) ByKind(kind Kind) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if d := r.byName[name]; d.Kind == kind {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("page %s: %w", kind, record.ErrNotFound)
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Validate checks that every kind has exactly one descriptor and that
// names and paths are unique.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perKind := make(map[Kind]int, kindCount)
	paths := make(map[string]string, len(r.order))
	for _, name := range r.order {
		d := r.byName[name]
		if !d.Kind.Valid() {
			return fmt.Errorf("page %q has undeclared kind %d", name, int(d.Kind))
		}
		perKind[d.Kind]++
		if prev, dup := paths[d.Path]; dup {
			return fmt.Errorf("pages %q and %q share path %q", prev, name, d.Path)
		}
		paths[d.Path] = name
	}
	for _, k := range Kinds() {
		switch n := perKind[k]; {
		case n == 0:
			return fmt.Errorf("page %s is not registered", k)
		case n > 1:
			return fmt.Errorf("page %s is registered %d times", k, n)
		}
	}
	return nil
}
