// Package store persists the session record across process restarts.
// Each field lives under its own key; there is no cross-field
// atomicity. Persistence is best-effort: a failed read degrades to
// "absent" and a failed write is logged and dropped, so callers never
// see a storage error. Worst case the user re-lands on the home page or
// the default organization on next launch.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lotas/lernbruecke/internal/applog"
	"github.com/lotas/lernbruecke/internal/types"
)

// Session is the persisted session record. Exactly four fields exist:
// user profile, session cookie, last visited URL, selected organization
// id. The auth gateway is the only writer of user and cookie; the
// bridge and the org picker write the other two.
type Session interface {
	User() (types.User, bool)
	SaveUser(types.User)
	Cookie() (string, bool)
	SaveCookie(string)
	LastURL() (string, bool)
	SaveLastURL(string)
	OrganizationID() (string, bool)
	SaveOrganizationID(string)
	// Clear removes all four fields. Used by logout only.
	Clear()
}

// History records every completed navigation of the browser surface.
type History interface {
	RecordVisit(url string, at time.Time)
	RecentVisits(n int) []types.Visit
}

// Storage keys, namespaced so the kv table can grow other entries later
// without colliding with session state.
const (
	keyUser           = "session/user"
	keyCookie         = "session/cookie"
	keyLastURL        = "session/last_url"
	keyOrganizationID = "session/organization_id"
)

var sessionKeys = []string{keyUser, keyCookie, keyLastURL, keyOrganizationID}

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "session kv table",
		SQL: `
CREATE TABLE IF NOT EXISTS session_state (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
	},
	{
		Version:     2,
		Description: "navigation history",
		SQL: `
CREATE TABLE IF NOT EXISTS visits (
    id          INTEGER PRIMARY KEY,
    url         TEXT NOT NULL,
    visited_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS visits_visited_at ON visits(visited_at);`,
	},
}

// DB is the SQLite-backed implementation of Session and History.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, creating parent
// directories, enabling WAL, and applying pending migrations.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &DB{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		if err := db.QueryRow(
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if exists > 0 {
			continue
		}
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := db.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// DefaultPath returns ~/.local/share/lernbruecke/lernbruecke.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "lernbruecke", "lernbruecke.db"), nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) get(key string) (string, bool) {
	var v string
	err := d.db.QueryRow("SELECT value FROM session_state WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		// Corrupt or inaccessible storage reads as absent.
		applog.Error("store.read", err, "key", key)
		return "", false
	}
	return v, true
}

func (d *DB) put(key, value string) {
	_, err := d.db.Exec(`
INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		applog.Error("store.write", err, "key", key)
	}
}

// User returns the stored profile. A malformed stored value reads as
// absent, never as an error.
func (d *DB) User() (types.User, bool) {
	raw, ok := d.get(keyUser)
	if !ok {
		return types.User{}, false
	}
	var u types.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		applog.Error("store.user.decode", err)
		return types.User{}, false
	}
	return u, true
}

func (d *DB) SaveUser(u types.User) {
	raw, err := json.Marshal(u)
	if err != nil {
		applog.Error("store.user.encode", err)
		return
	}
	d.put(keyUser, string(raw))
}

func (d *DB) Cookie() (string, bool)  { return d.get(keyCookie) }
func (d *DB) SaveCookie(c string)     { d.put(keyCookie, c) }
func (d *DB) LastURL() (string, bool) { return d.get(keyLastURL) }
func (d *DB) SaveLastURL(u string)    { d.put(keyLastURL, u) }

func (d *DB) OrganizationID() (string, bool) { return d.get(keyOrganizationID) }
func (d *DB) SaveOrganizationID(id string)   { d.put(keyOrganizationID, id) }

// Clear removes all session fields. Navigation history survives a
// logout; it carries no credentials.
func (d *DB) Clear() {
	for _, key := range sessionKeys {
		if _, err := d.db.Exec("DELETE FROM session_state WHERE key = ?", key); err != nil {
			applog.Error("store.clear", err, "key", key)
		}
	}
}

// RecordVisit appends one navigation event to the visit log.
func (d *DB) RecordVisit(url string, at time.Time) {
	if url == "" {
		return
	}
	if _, err := d.db.Exec(
		"INSERT INTO visits (url, visited_at) VALUES (?, ?)", url, at.UTC(),
	); err != nil {
		applog.Error("store.visit", err, "url", url)
	}
}

// RecentVisits returns up to n visits, newest first. Failures read as
// an empty history.
func (d *DB) RecentVisits(n int) []types.Visit {
	rows, err := d.db.Query(
		"SELECT url, visited_at FROM visits ORDER BY visited_at DESC, id DESC LIMIT ?", n,
	)
	if err != nil {
		applog.Error("store.visits", err)
		return nil
	}
	defer rows.Close()

	var out []types.Visit
	for rows.Next() {
		var v types.Visit
		if err := rows.Scan(&v.URL, &v.VisitedAt); err != nil {
			applog.Error("store.visits.scan", err)
			return out
		}
		out = append(out, v)
	}
	return out
}
