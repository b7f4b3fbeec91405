package record

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Delimiter separates fields in a record's textual form. A field containing
// the delimiter does not survive a round trip.
const Delimiter = ","

// Storage key kinds.
const (
	KindContact = "contact"
	KindSignUp  = "signUp"
	KindMessage = "message"
)

// Join renders fields in order as delimited text.
// POST: ok is false iff at least one field is empty; the failure is logged
func Join(kind string, fields ...string) (string, bool) {
	for _, f := range fields {
		if f == "" {
			slog.Error("record_serialize_failed", "kind", kind, "reason", "missing_field")
			return "", false
		}
	}
	return strings.Join(fields, Delimiter), true
}

// Split breaks delimited text into exactly arity fields.
// POST: returns a ValidationError when the field count differs from arity
func Split(kind, text string, arity int) ([]string, error) {
	parts := strings.Split(text, Delimiter)
	if len(parts) != arity {
		slog.Error("record_deserialize_failed", "kind", kind, "want_fields", arity, "got_fields", len(parts))
		return nil, Invalid(kind, fmt.Sprintf("expected %d fields, got %d", arity, len(parts)))
	}
	return parts, nil
}

// Key builds a storage key of the form <kind>_<epoch-millis>.
func Key(kind string, at time.Time) string {
	return fmt.Sprintf("%s_%d", kind, at.UnixMilli())
}

// ParseKey splits a storage key into its kind and millisecond timestamp.
func ParseKey(key string) (kind string, millis int64, ok bool) {
	i := strings.LastIndex(key, "_")
	if i <= 0 || i == len(key)-1 {
		return "", 0, false
	}
	millis, err := strconv.ParseInt(key[i+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return key[:i], millis, true
}

// HasKind reports whether key was generated for kind.
func HasKind(key, kind string) bool {
	k, _, ok := ParseKey(key)
	return ok && k == kind
}
