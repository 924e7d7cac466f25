package localdb

const (
	// SchemaVersion is the schema this build reads and writes.
	SchemaVersion int64 = 1

	component = "lovenote"

	schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS spaces (
    id TEXT PRIMARY KEY,
    space_name TEXT NOT NULL,
    secret TEXT NOT NULL UNIQUE,
    partner1_name TEXT NOT NULL,
    partner2_name TEXT NOT NULL,
    anniversary_date TEXT,
    partner1_birthday TEXT,
    partner2_birthday TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    space_id TEXT NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
    author_name TEXT NOT NULL,
    content TEXT NOT NULL,
    post_type TEXT NOT NULL DEFAULT 'text',
    mood_type TEXT,
    is_private BOOLEAN NOT NULL DEFAULT FALSE,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_space_created ON posts (space_id, created_at);

CREATE TABLE IF NOT EXISTS likes (
    id TEXT PRIMARY KEY,
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    author_name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (post_id, author_name)
);

CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    author_name TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS comments_post_created ON comments (post_id, created_at);
`
)
