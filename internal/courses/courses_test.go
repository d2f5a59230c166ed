package courses

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lotas/lernbruecke/internal/auth"
	"github.com/lotas/lernbruecke/internal/store"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *store.Memory) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mem := store.NewMemory()
	c := NewClient(mem)
	c.BaseURL = srv.URL
	return c, mem
}

func TestListUsesSelectedOrganization(t *testing.T) {
	c, mem := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Organization-Id"); got != "org-sel" {
			t.Errorf("X-Organization-Id = %q", got)
		}
		if got := r.Header.Get("Cookie"); got != "session=abc" {
			t.Errorf("Cookie = %q", got)
		}
		w.Write([]byte(`[{"id":"c1","slug":"go-basics","title":"Go Basics"}]`))
	})
	mem.SaveCookie("session=abc")
	mem.SaveOrganizationID("org-sel")

	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "go-basics" {
		t.Errorf("courses = %+v", got)
	}
}

func TestCategoriesFallBackToDefaultOrganization(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/api/organizations/" + auth.DefaultOrganizationID + "/course-categories"
		if r.URL.Path != wantPath {
			t.Errorf("path = %q, want %q", r.URL.Path, wantPath)
		}
		w.Write([]byte(`[]`))
	})

	if _, err := c.Categories(context.Background()); err != nil {
		t.Fatalf("Categories: %v", err)
	}
}

func TestDetail(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/courses/go-basics" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":"c1","slug":"go-basics","title":"Go Basics",
			"enrollmentCount":12,
			"sections":[{"id":"s1","title":"Intro","orderIndex":0}]}`))
	})

	d, err := c.Detail(context.Background(), "go-basics")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if d.EnrollmentCount != 12 || len(d.Sections) != 1 {
		t.Errorf("detail = %+v", d)
	}
}

func TestDetailStatusError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Detail(context.Background(), "missing")
	var apiErr *auth.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("err = %v, want APIError 404", err)
	}
}

func TestEnrollRequiresSession(t *testing.T) {
	c := NewClient(store.NewMemory())
	_, err := c.Enroll(context.Background(), "c1")
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestEnrollPostsCourseID(t *testing.T) {
	c, mem := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/enrollments" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"courseId":"c1"`) {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`{"id":"e1","courseId":"c1","progress":0}`))
	})
	mem.SaveCookie("session=abc")

	e, err := c.Enroll(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if e.ID != "e1" {
		t.Errorf("enrollment = %+v", e)
	}
}
