package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore keeps entries in the query_cache table created by the
// database migrations.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) Result[[]byte] {
	var (
		value   []byte
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM query_cache WHERE key = ?`, key,
	).Scan(&value, &expires)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Miss[[]byte]()
	case err != nil:
		return Fail[[]byte](fmt.Errorf("query cache get: %w", err))
	}
	if expires > 0 && s.now().UnixMilli() >= expires {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM query_cache WHERE key = ?`, key); err != nil {
			return Fail[[]byte](fmt.Errorf("query cache expire: %w", err))
		}
		return Miss[[]byte]()
	}
	return Hit(value)
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = s.now().Add(ttl).UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_cache (key, namespace, value, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, namespaceOf(key), value, expires,
	)
	if err != nil {
		return fmt.Errorf("query cache set: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InvalidateNamespace(ctx context.Context, namespace string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM query_cache WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("query cache invalidate %s: %w", namespace, err)
	}
	return nil
}
