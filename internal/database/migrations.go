package database

// migrations holds one statement group per schema version; version N is
// migrations[N-1].
var migrations = [][]string{
	// 1: record snapshot used for writes and as the fallback search path.
	{
		`CREATE TABLE records (
			entity TEXT NOT NULL,
			uuid TEXT NOT NULL,
			body TEXT NOT NULL CHECK (json_valid(body)),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (entity, uuid)
		)`,
		`CREATE INDEX idx_records_entity_created ON records(entity, created_at)`,
	},

	// 2: shared result cache for the sqlite cache backend.
	{
		`CREATE TABLE query_cache (
			key TEXT PRIMARY KEY,
			namespace TEXT NOT NULL,
			value BLOB NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX idx_query_cache_namespace ON query_cache(namespace)`,
	},
}
