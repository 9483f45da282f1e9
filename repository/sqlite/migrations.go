package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	version int
	sql     string
}

// migrations mirrors assets/migrations for PostgreSQL. Dates are stored
// as YYYY-MM-DD text and timestamps as fixed-width UTC text so both sort
// lexically.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	email         TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	first_name    TEXT NOT NULL DEFAULT '',
	last_name     TEXT NOT NULL DEFAULT '',
	is_staff      INTEGER NOT NULL DEFAULT 0,
	is_superuser  INTEGER NOT NULL DEFAULT 0,
	is_active     INTEGER NOT NULL DEFAULT 1,
	date_joined   TEXT NOT NULL,
	last_login    TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	start_date  TEXT NOT NULL,
	end_date    TEXT,
	status      TEXT NOT NULL DEFAULT 'pending',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_created_by ON projects(created_by);
CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);

CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	assigned_to  TEXT REFERENCES users(id) ON DELETE SET NULL,
	created_by   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	priority     TEXT NOT NULL DEFAULT 'medium',
	status       TEXT NOT NULL DEFAULT 'pending',
	due_date     TEXT NOT NULL,
	completed_at TEXT,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_created_by ON tasks(created_by);
CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

CREATE TABLE IF NOT EXISTS admin_log (
	id          TEXT PRIMARY KEY,
	actor_id    TEXT NOT NULL,
	object_type TEXT NOT NULL,
	object_id   TEXT NOT NULL,
	object_repr TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_admin_log_actor ON admin_log(actor_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}

// migrate applies outstanding migrations and reports how many ran.
func migrate(db *sqlx.DB) (int, error) {
	current := 0

	var tableCount int
	if err := db.Get(&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'"); err != nil {
		return 0, fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount > 0 {
		if err := db.Get(&current, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return 0, fmt.Errorf("reading schema version: %w", err)
		}
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := db.Exec(m.sql); err != nil {
			return applied, fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		applied++
	}
	return applied, nil
}
