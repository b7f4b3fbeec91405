package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const identityContextKey contextKey = "identity"

// Cookie names. The tab cookie lives as long as the browser session; the
// device cookie names the browser's local-storage namespace for a year.
const (
	TabCookieName    = "vc_tab"
	DeviceCookieName = "vc_device"
	deviceMaxAge     = 365 * 24 * 60 * 60
)

// Identity names the browser session (tab) and browser (device) of a request.
type Identity struct {
	Tab    string
	Device string
}

// Identify returns middleware that reads the tab and device cookies, issuing
// fresh ones when absent or malformed, and stores the Identity in context.
// Issued cookies are marked Secure when secure is set.
// POST: every request reaching next carries a non-empty Identity
func Identify(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := Identity{
				Tab:    cookieID(r, TabCookieName),
				Device: cookieID(r, DeviceCookieName),
			}
			if id.Tab == "" {
				id.Tab = uuid.NewString()
				setCookie(w, TabCookieName, id.Tab, 0, secure)
			}
			if id.Device == "" {
				id.Device = uuid.NewString()
				setCookie(w, DeviceCookieName, id.Device, deviceMaxAge, secure)
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
		})
	}
}

// IdentityFromContext extracts the request's Identity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// ContextWithIdentity returns a context carrying id.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// cookieID returns the cookie's value when it is a well-formed UUID.
func cookieID(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// setCookie issues an HttpOnly cookie. maxAge 0 makes it a session cookie.
func setCookie(w http.ResponseWriter, name, value string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}
