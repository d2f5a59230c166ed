package backup

import (
	"bytes"
	"testing"
	"time"

	"github.com/lotas/lernbruecke/internal/store"
	"github.com/lotas/lernbruecke/internal/types"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := store.NewMemory()
	src.SaveUser(types.User{ID: "1", Email: "a@b.com", FirstName: "A", LastName: "B", Role: "user"})
	src.SaveCookie("session=abc123")
	src.SaveLastURL("https://learningbases.com/app/courses")
	src.SaveOrganizationID("org-1")
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	src.RecordVisit("https://learningbases.com/a", base)
	src.RecordVisit("https://learningbases.com/b", base.Add(time.Minute))

	data, err := Export(src, src)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("lbses10\x00")) {
		t.Error("archive missing magic header")
	}

	dst := store.NewMemory()
	if err := Import(data, dst, dst); err != nil {
		t.Fatalf("Import: %v", err)
	}

	if u, ok := dst.User(); !ok || u.ID != "1" {
		t.Errorf("imported user = %+v, %v", u, ok)
	}
	if c, _ := dst.Cookie(); c != "session=abc123" {
		t.Errorf("imported cookie = %q", c)
	}
	if url, _ := dst.LastURL(); url != "https://learningbases.com/app/courses" {
		t.Errorf("imported last URL = %q", url)
	}
	if id, _ := dst.OrganizationID(); id != "org-1" {
		t.Errorf("imported organization = %q", id)
	}

	visits := dst.RecentVisits(10)
	if len(visits) != 2 {
		t.Fatalf("imported %d visits, want 2", len(visits))
	}
	if visits[0].URL != "https://learningbases.com/b" {
		t.Errorf("visit order lost: newest = %q", visits[0].URL)
	}
}

func TestImportPartialArchiveLeavesRestAlone(t *testing.T) {
	src := store.NewMemory()
	src.SaveLastURL("https://learningbases.com/only-url")

	data, err := Export(src, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := store.NewMemory()
	dst.SaveCookie("session=keep")
	if err := Import(data, dst, nil); err != nil {
		t.Fatalf("Import: %v", err)
	}

	if c, _ := dst.Cookie(); c != "session=keep" {
		t.Errorf("empty archive field overwrote cookie: %q", c)
	}
	if url, _ := dst.LastURL(); url != "https://learningbases.com/only-url" {
		t.Errorf("last URL = %q", url)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	dst := store.NewMemory()

	if err := Import([]byte("short"), dst, nil); err == nil {
		t.Error("short data accepted")
	}
	if err := Import(bytes.Repeat([]byte{0xAB}, 64), dst, nil); err == nil {
		t.Error("wrong magic accepted")
	}
}
