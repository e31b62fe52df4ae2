package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/vql"
)

// RecordStore persists records in their flattened search-service shape.
type RecordStore interface {
	Create(ctx context.Context, entity domain.Entity, body map[string]any) (json.RawMessage, error)
	Get(ctx context.Context, entity domain.Entity, id string) (json.RawMessage, error)
	Update(ctx context.Context, entity domain.Entity, id string, patch map[string]any) (json.RawMessage, error)
	Delete(ctx context.Context, entity domain.Entity, id string) error
	Search(ctx context.Context, entity domain.Entity, q *vql.Query) ([]json.RawMessage, error)
	Count(ctx context.Context, entity domain.Entity, q *vql.Query) (int64, error)
	Reset(ctx context.Context) error
}

// SQLiteRecordStore implements RecordStore backed by SQLite.
type SQLiteRecordStore struct {
	db *sql.DB
}

// NewSQLiteRecordStore creates a new SQLiteRecordStore.
func NewSQLiteRecordStore(db *sql.DB) *SQLiteRecordStore {
	return &SQLiteRecordStore{db: db}
}

// Create inserts body, assigning a uuid and created_at when absent.
func (s *SQLiteRecordStore) Create(ctx context.Context, entity domain.Entity, body map[string]any) (json.RawMessage, error) {
	if body == nil {
		body = map[string]any{}
	}
	id, _ := body["uuid"].(string)
	if id == "" {
		id = uuid.NewString()
		body["uuid"] = id
	}
	ts := now()
	if _, ok := body["created_at"]; !ok {
		body["created_at"] = ts
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("record body: %v", err)}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (entity, uuid, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		string(entity), id, string(raw), ts, ts,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%s %s: %w", entity.Singular(), id, ErrConflict)
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return raw, nil
}

// Get returns the stored body of one record.
func (s *SQLiteRecordStore) Get(ctx context.Context, entity domain.Entity, id string) (json.RawMessage, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM records WHERE entity = ? AND uuid = ?`, string(entity), id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", entity.Singular(), id, ErrNotFound)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return json.RawMessage(body), nil
}

// Update merges patch into the stored body. A nil value removes the key.
// The uuid cannot be changed.
func (s *SQLiteRecordStore) Update(ctx context.Context, entity domain.Entity, id string, patch map[string]any) (json.RawMessage, error) {
	if v, ok := patch["uuid"]; ok && v != id {
		return nil, &ValidationError{Message: "uuid cannot be changed"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM records WHERE entity = ? AND uuid = ?`, string(entity), id,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", entity.Singular(), id, ErrNotFound)
		}
		return nil, fmt.Errorf("load record: %w", err)
	}

	body := map[string]any{}
	if err := json.Unmarshal([]byte(current), &body); err != nil {
		return nil, fmt.Errorf("decode stored record: %w", err)
	}
	for k, v := range patch {
		if v == nil {
			delete(body, k)
			continue
		}
		body[k] = v
	}
	body["uuid"] = id

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("record body: %v", err)}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET body = ?, updated_at = ? WHERE entity = ? AND uuid = ?`,
		string(raw), now(), string(entity), id,
	); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return raw, nil
}

// Delete removes one record.
func (s *SQLiteRecordStore) Delete(ctx context.Context, entity domain.Entity, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE entity = ? AND uuid = ?`, string(entity), id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity.Singular(), id, ErrNotFound)
	}
	return nil
}

// Reset deletes every record.
func (s *SQLiteRecordStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}
	return nil
}
