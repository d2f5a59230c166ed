package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lotas/lernbruecke/internal/store"
)

func TestFetchReplaysCookie(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html><head><title>Course Page</title></head>
<body>
<article>
<h1>Course Page</h1>
<p>This is the main content of the page. It has enough text to be considered readable content by the readability algorithm. The quick brown fox jumps over the lazy dog. This paragraph needs to be long enough for the extractor to pick it up as meaningful content.</p>
<p>Second paragraph with more meaningful content so the parser understands this is a real page and not just navigation or boilerplate. Several sentences are needed here to make that work reliably.</p>
</article>
</body></html>`))
	}))
	defer srv.Close()

	mem := store.NewMemory()
	mem.SaveCookie("session=abc")

	page, err := Fetch(context.Background(), mem, srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotCookie != "session=abc" {
		t.Errorf("cookie replayed = %q", gotCookie)
	}
	if page.Title == "" || page.Excerpt == "" {
		t.Errorf("page = %+v", page)
	}
	if strings.Contains(page.Excerpt, "\n") {
		t.Error("excerpt not flattened to one line")
	}
}

func TestFetchRefusesNonWebURLs(t *testing.T) {
	mem := store.NewMemory()
	for _, u := range []string{
		"about:blank",
		"file:///etc/passwd",
		"data:text/html,hello",
		"javascript:void(0)",
	} {
		if _, err := Fetch(context.Background(), mem, u); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), store.NewMemory(), srv.URL); err == nil {
		t.Error("expected error for HTTP 404")
	}
}
