package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"volunteerconnect/internal/adapters/storage"
)

// SQLiteStore implements Store over the local_storage table. Each device
// gets its own namespace so browsers never see each other's records.
type SQLiteStore struct {
	db        storage.SQLDB
	namespace string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store bound to namespace.
// PRE: db has been migrated with storage.MigrateDB; namespace is non-empty
func NewSQLiteStore(db storage.SQLDB, namespace string) *SQLiteStore {
	return &SQLiteStore{db: db, namespace: namespace}
}

// Namespace returns the device namespace this store reads and writes.
func (s *SQLiteStore) Namespace() string {
	return s.namespace
}

// Put upserts value under key.
// POST: a later Get(key) returns value
// INVARIANT: no other key in the namespace is modified
func (s *SQLiteStore) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_storage (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`, s.namespace, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put local_storage %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key.
// POST: ok is false and err is nil when the key is absent
// INVARIANT: store state is not mutated
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM local_storage WHERE namespace = ? AND key = ?
	`, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get local_storage %s: %w", key, err)
	}
	return value, true, nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM local_storage WHERE namespace = ? AND key = ?
	`, s.namespace, key)
	if err != nil {
		return fmt.Errorf("remove local_storage %s: %w", key, err)
	}
	return nil
}

// Keys lists the namespace's keys in lexical order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM local_storage WHERE namespace = ? ORDER BY key
	`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("list local_storage: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
