package store

import "database/sql"

// Store holds the sub-stores used by the application.
type Store struct {
	DB      *sql.DB
	Records *SQLiteRecordStore
}

// New creates a Store with all sub-stores initialized.
func New(db *sql.DB) *Store {
	return &Store{
		DB:      db,
		Records: NewSQLiteRecordStore(db),
	}
}
