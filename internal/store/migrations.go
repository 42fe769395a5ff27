package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id            TEXT PRIMARY KEY,
	date          TEXT NOT NULL,
	description   TEXT NOT NULL,
	time          TEXT,
	is_completed  INTEGER NOT NULL DEFAULT 0 CHECK(is_completed IN (0, 1)),
	template_id   TEXT,
	template_name TEXT,
	created_at    TEXT NOT NULL,
	completed_at  TEXT
);

CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(date);

CREATE TABLE IF NOT EXISTS daily_ratings (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL UNIQUE,
	rating     INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ratings_date ON daily_ratings(date);

CREATE TABLE IF NOT EXISTS templates (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	icon       TEXT NOT NULL DEFAULT '',
	is_default INTEGER NOT NULL DEFAULT 0 CHECK(is_default IN (0, 1)),
	tasks      TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS app_settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
