package router

import "strings"

// State is the router's lifecycle state.
type State int

const (
	Idle State = iota
	Resolving
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ParseFragment splits a location fragment into its path segment and sub-hash.
// A leading '#' is optional; the sub-hash keeps its '#'.
//
//	"#contact-list#k" -> ("contact-list", "#k")
//	"edit"            -> ("edit", "")
func ParseFragment(fragment string) (path, subHash string) {
	fragment = strings.TrimPrefix(fragment, "#")
	path, sub, found := strings.Cut(fragment, "#")
	if found {
		subHash = "#" + sub
	}
	return path, subHash
}

// ActiveLinkID is the id of the nav link highlighted for path: the first
// letter lowercased, spaces removed, suffixed with "NavLink".
func ActiveLinkID(path string) string {
	if path == "" {
		return ""
	}
	id := strings.ToLower(path[:1]) + strings.ReplaceAll(path[1:], " ", "")
	return id + "NavLink"
}
