package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lotas/lernbruecke/internal/store"
	"github.com/lotas/lernbruecke/internal/types"
)

func testGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *store.Memory) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mem := store.NewMemory()
	g := New(mem)
	g.BaseURL = srv.URL
	return g, mem
}

func TestLoginSuccess(t *testing.T) {
	var gotBody string
	g, mem := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Organization-Id"); got != DefaultOrganizationID {
			t.Errorf("X-Organization-Id = %q", got)
		}
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)

		w.Header().Set("Set-Cookie", "session=abc123")
		w.Write([]byte(`{"id":"1","email":"a@b.com","firstName":"A","lastName":"B","role":"user"}`))
	})

	sess, err := g.Login(context.Background(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if !strings.Contains(gotBody, `"usernameOrEmail":"a@b.com"`) {
		t.Errorf("request body = %s", gotBody)
	}
	if sess.User.ID != "1" || sess.Cookie != "session=abc123" {
		t.Errorf("session = %+v", sess)
	}

	user, ok := mem.User()
	if !ok || user.ID != "1" {
		t.Errorf("stored user = %+v, %v", user, ok)
	}
	if c, _ := mem.Cookie(); c != "session=abc123" {
		t.Errorf("stored cookie = %q", c)
	}
	if !g.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after login")
	}
	if _, ok := mem.LastURL(); ok {
		t.Error("login must not touch last URL")
	}
}

func TestLoginRejected(t *testing.T) {
	g, mem := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := g.Login(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, ok := mem.User(); ok {
		t.Error("rejected login must not persist a user")
	}
}

func TestSignupSeedsExploreURL(t *testing.T) {
	g, mem := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/register" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Set-Cookie", "session=new")
		w.Write([]byte(`{"id":"2","email":"new@b.com","firstName":"N","lastName":"U","role":"user"}`))
	})

	sess, err := g.Signup(context.Background(), "N", "U", "newbie", "new@b.com", "secret")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if sess.Cookie != "session=new" {
		t.Errorf("cookie = %q", sess.Cookie)
	}

	url, ok := mem.LastURL()
	if !ok || !strings.HasSuffix(url, ExplorePath) {
		t.Errorf("last URL = %q, %v; want explore seed", url, ok)
	}
}

func TestSignupValidationMessage(t *testing.T) {
	g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"email already taken"}`))
	})

	_, err := g.Signup(context.Background(), "A", "B", "ab", "a@b.com", "pw")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Message != "email already taken" {
		t.Errorf("message = %q", verr.Message)
	}
}

func TestSignupValidationWithoutMessage(t *testing.T) {
	g, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := g.Signup(context.Background(), "A", "B", "ab", "a@b.com", "pw")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Error() != "signup failed" {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestLogoutAlwaysClears(t *testing.T) {
	mem := store.NewMemory()
	mem.SaveUser(types.User{ID: "1"})
	mem.SaveCookie("session=abc")
	mem.SaveLastURL("https://learningbases.com/app")
	mem.SaveOrganizationID("org-1")

	g := New(mem)
	g.Logout()

	if g.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after logout")
	}
	if _, ok := mem.Cookie(); ok {
		t.Error("cookie survived logout")
	}
	if _, ok := mem.OrganizationID(); ok {
		t.Error("organization id survived logout")
	}
}

func TestAdoptSession(t *testing.T) {
	mem := store.NewMemory()
	g := New(mem)

	g.AdoptSession(types.User{ID: "7", Email: "o@b.com"}, "session=oauth")

	if !g.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after adopt")
	}
	if c, _ := mem.Cookie(); c != "session=oauth" {
		t.Errorf("stored cookie = %q", c)
	}
}
