package page

import "fmt"

// Kind enumerates every page the site serves.
type Kind int

const (
	Home Kind = iota
	About
	Opportunities
	Events
	Contact
	ContactList
	Edit
	SignUp
	SignUpList
	Donate
	Login
	NotFound
	kindCount
)

// kindInfo is the lookup table resolving each kind to its name, route and title.
var kindInfo = [kindCount]struct {
	name  string
	path  string
	title string
}{
	Home:          {"HomePage", "home", "Home"},
	About:         {"AboutPage", "about", "About"},
	Opportunities: {"OpportunitiesPage", "opportunities", "Opportunities"},
	Events:        {"EventsPage", "events", "Events"},
	Contact:       {"ContactPage", "contact", "Contact"},
	ContactList:   {"ContactListPage", "contact-list", "Contact List"},
	Edit:          {"EditPage", "edit", "Edit"},
	SignUp:        {"SignUpPage", "sign-up", "Sign Up"},
	SignUpList:    {"SignUpListPage", "sign-up-list", "Sign-ups"},
	Donate:        {"DonatePage", "donate", "Donate"},
	Login:         {"LoginPage", "login", "Login"},
	NotFound:      {"HTTP404Page", "404", "Page Not Found"},
}

// Kinds returns every page kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Name is the unique registry name for k.
func (k Kind) Name() string {
	if !k.Valid() {
		return ""
	}
	return kindInfo[k].name
}

// Path is the route segment for k.
func (k Kind) Path() string {
	if !k.Valid() {
		return ""
	}
	return kindInfo[k].path
}

// Title is the document title shown while k is displayed.
func (k Kind) Title() string {
	if !k.Valid() {
		return ""
	}
	return kindInfo[k].title
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindInfo[k].name
}
