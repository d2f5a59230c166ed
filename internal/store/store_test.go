package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lotas/lernbruecke/internal/types"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRoundTrip(t *testing.T) {
	db := testDB(t)

	if _, ok := db.Cookie(); ok {
		t.Fatal("fresh store should have no cookie")
	}

	db.SaveCookie("session=abc123")
	db.SaveLastURL("https://learningbases.com/explore")
	db.SaveOrganizationID("org-1")
	db.SaveUser(types.User{ID: "1", Email: "a@b.com", FirstName: "A", LastName: "B", Role: "user"})

	if c, ok := db.Cookie(); !ok || c != "session=abc123" {
		t.Errorf("Cookie() = %q, %v", c, ok)
	}
	if u, ok := db.LastURL(); !ok || u != "https://learningbases.com/explore" {
		t.Errorf("LastURL() = %q, %v", u, ok)
	}
	if id, ok := db.OrganizationID(); !ok || id != "org-1" {
		t.Errorf("OrganizationID() = %q, %v", id, ok)
	}
	user, ok := db.User()
	if !ok || user.ID != "1" || user.Email != "a@b.com" {
		t.Errorf("User() = %+v, %v", user, ok)
	}
}

func TestOverwrite(t *testing.T) {
	db := testDB(t)

	db.SaveLastURL("https://learningbases.com/a")
	db.SaveLastURL("https://learningbases.com/b")

	if u, _ := db.LastURL(); u != "https://learningbases.com/b" {
		t.Errorf("LastURL() = %q, want last write", u)
	}
}

func TestClear(t *testing.T) {
	db := testDB(t)

	db.SaveUser(types.User{ID: "1"})
	db.SaveCookie("session=abc")
	db.SaveLastURL("https://learningbases.com")
	db.SaveOrganizationID("org-1")

	db.Clear()

	if _, ok := db.User(); ok {
		t.Error("user survived Clear")
	}
	if _, ok := db.Cookie(); ok {
		t.Error("cookie survived Clear")
	}
	if _, ok := db.LastURL(); ok {
		t.Error("last URL survived Clear")
	}
	if _, ok := db.OrganizationID(); ok {
		t.Error("organization id survived Clear")
	}
}

func TestCorruptUserReadsAsAbsent(t *testing.T) {
	db := testDB(t)

	// Write garbage straight into the kv table.
	if _, err := db.db.Exec(
		"INSERT INTO session_state (key, value) VALUES (?, ?)", keyUser, "{not json",
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, ok := db.User(); ok {
		t.Error("corrupt user value should read as absent")
	}
}

func TestReopenKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db.SaveCookie("session=keep")
	db.Close()

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	if c, ok := db2.Cookie(); !ok || c != "session=keep" {
		t.Errorf("Cookie() after reopen = %q, %v", c, ok)
	}
}

func TestVisitHistory(t *testing.T) {
	db := testDB(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db.RecordVisit("https://learningbases.com/a", base)
	db.RecordVisit("https://learningbases.com/b", base.Add(time.Minute))
	db.RecordVisit("", base.Add(2*time.Minute)) // ignored

	visits := db.RecentVisits(10)
	if len(visits) != 2 {
		t.Fatalf("RecentVisits returned %d entries, want 2", len(visits))
	}
	if visits[0].URL != "https://learningbases.com/b" {
		t.Errorf("newest visit = %q, want /b first", visits[0].URL)
	}

	if got := db.RecentVisits(1); len(got) != 1 {
		t.Errorf("RecentVisits(1) returned %d entries", len(got))
	}
}

func TestMemoryMatchesDB(t *testing.T) {
	m := NewMemory()

	m.SaveCookie("session=x")
	m.SaveOrganizationID("org-9")
	if c, ok := m.Cookie(); !ok || c != "session=x" {
		t.Errorf("Memory.Cookie() = %q, %v", c, ok)
	}

	m.Clear()
	if _, ok := m.OrganizationID(); ok {
		t.Error("organization id survived Memory.Clear")
	}

	m.RecordVisit("https://learningbases.com/a", time.Now())
	m.RecordVisit("https://learningbases.com/b", time.Now())
	visits := m.RecentVisits(1)
	if len(visits) != 1 || visits[0].URL != "https://learningbases.com/b" {
		t.Errorf("Memory.RecentVisits = %+v", visits)
	}
}
