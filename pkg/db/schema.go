package db

const (
	// SchemaV1 creates the version bookkeeping table and the key-value table
	// that holds the serialized book collection.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS moalif_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS kv_store (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at REAL DEFAULT (unixepoch())
);
`
)
