package kv

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"volunteerconnect/internal/adapters/storage"
	"volunteerconnect/internal/domain/record"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.MigrateDB(context.Background(), db))
	return db
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := DialRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// stores returns a fresh instance of every Store implementation.
func stores(t *testing.T) map[string]Store {
	_, client := setupRedis(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(openSQLite(t), "device-a"),
		"redis":  NewRedisStore(client, "tab-a", time.Minute),
	}
}

func TestStore_PutGetRemove(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "contact_1", "Ann Lee,905-555-1234,ann@example.com"))

			v, ok, err := s.Get(ctx, "contact_1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "Ann Lee,905-555-1234,ann@example.com", v)

			require.NoError(t, s.Put(ctx, "contact_1", "changed"))
			v, _, err = s.Get(ctx, "contact_1")
			require.NoError(t, err)
			assert.Equal(t, "changed", v)

			require.NoError(t, s.Remove(ctx, "contact_1"))
			_, ok, err = s.Get(ctx, "contact_1")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, s.Remove(ctx, "contact_1"), "removing an absent key")
		})
	}
}

func TestStore_KeysSorted(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)

			for _, k := range []string{"signUp_2", "contact_9", "contact_10"} {
				require.NoError(t, s.Put(ctx, k, "v"))
			}
			keys, err = s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"contact_10", "contact_9", "signUp_2"}, keys)
		})
	}
}

func TestNewKey_AdvancesPastTakenMillis(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.UnixMilli(1_700_000_000_000)

	first, err := NewKey(ctx, s, record.KindContact, now)
	require.NoError(t, err)
	assert.Equal(t, "contact_1700000000000", first)
	require.NoError(t, s.Put(ctx, first, "x"))

	second, err := NewKey(ctx, s, record.KindContact, now)
	require.NoError(t, err)
	assert.Equal(t, "contact_1700000000001", second)

	other, err := NewKey(ctx, s, record.KindSignUp, now)
	require.NoError(t, err)
	assert.Equal(t, "signUp_1700000000000", other)
}

func TestKeysOfKind_OrdersByTimestamp(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, k := range []string{"contact_10", "contact_9", "signUp_5", "user", "contact_x"} {
		require.NoError(t, s.Put(ctx, k, "v"))
	}

	keys, err := KeysOfKind(ctx, s, record.KindContact)
	require.NoError(t, err)
	assert.Equal(t, []string{"contact_9", "contact_10"}, keys)
}

func TestSQLiteStore_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	a := NewSQLiteStore(db, "device-a")
	b := NewSQLiteStore(db, "device-b")

	require.NoError(t, a.Put(ctx, "contact_1", "mine"))

	_, ok, err := b.Get(ctx, "contact_1")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_TTLAndPrefix(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	s := NewRedisStore(client, "tab-a", time.Minute)
	other := NewRedisStore(client, "tab-b", time.Minute)

	require.NoError(t, s.Put(ctx, "user", "alice,Alice A,alice@example.com"))
	assert.True(t, mr.Exists(RedisKeyPrefix+"tab-a:user"))

	keys, err := other.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	mr.FastForward(2 * time.Minute)
	_, ok, err := s.Get(ctx, "user")
	require.NoError(t, err)
	assert.False(t, ok, "key should expire after the TTL")
}

func TestDialRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = DialRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
