package kv

import (
	"context"
	"fmt"
	"sort"
	"time"

	"volunteerconnect/internal/domain/record"
)

// Store is string key-value storage. Local storage survives restarts;
// session storage lives as long as one tab.
type Store interface {
	Put(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// maxKeyProbes bounds how far NewKey advances past the requested instant.
const maxKeyProbes = 1000

// NewKey returns an unused <kind>_<millis> key at or after now.
// PRE: kind is non-empty
// POST: the returned key was absent from s when probed; the millisecond
// component is advanced until a free key is found
func NewKey(ctx context.Context, s Store, kind string, now time.Time) (string, error) {
	at := now
	for i := 0; i < maxKeyProbes; i++ {
		key := record.Key(kind, at)
		_, taken, err := s.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("probe key %s: %w", key, err)
		}
		if !taken {
			return key, nil
		}
		at = at.Add(time.Millisecond)
	}
	return "", fmt.Errorf("no free %s key after %d probes", kind, maxKeyProbes)
}

// KeysOfKind filters Keys down to those generated for kind, oldest first.
func KeysOfKind(ctx context.Context, s Store, kind string) ([]string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if record.HasKind(k, kind) {
			out = append(out, k)
		}
	}
	sortByMillis(out)
	return out, nil
}

func sortByMillis(keys []string) {
	millis := func(k string) int64 {
		_, ms, _ := record.ParseKey(k)
		return ms
	}
	sort.SliceStable(keys, func(i, j int) bool { return millis(keys[i]) < millis(keys[j]) })
}
