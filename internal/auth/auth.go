// Package auth talks to the platform's login and register endpoints and
// is the only writer of the stored user profile and session cookie.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lotas/lernbruecke/internal/applog"
	"github.com/lotas/lernbruecke/internal/store"
	"github.com/lotas/lernbruecke/internal/types"
)

// DefaultBaseURL is the production platform.
const DefaultBaseURL = "https://learningbases.com"

// DefaultOrganizationID identifies the platform's default organization.
// Login and register always run in its context; authenticated calls use
// the stored selection instead once one exists.
const DefaultOrganizationID = "fb5f5a11-9cd2-43a8-964e-240c9ff9ea22"

// ExplorePath is where fresh signups land: new users have an empty home
// feed, so the first session starts on the explore page.
const ExplorePath = "/explore"

// Gateway performs login, signup and logout against the platform and
// persists the outcome in the session store.
type Gateway struct {
	BaseURL        string
	OrganizationID string
	HTTPClient     *http.Client
	Store          store.Session
}

// New returns a Gateway with production defaults over the given store.
func New(s store.Session) *Gateway {
	return &Gateway{
		BaseURL:        DefaultBaseURL,
		OrganizationID: DefaultOrganizationID,
		HTTPClient:     http.DefaultClient,
		Store:          s,
	}
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type signupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (g *Gateway) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("X-Organization-Id", g.OrganizationID)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", path, err)
	}
	return resp, nil
}

// Login authenticates with the platform. On success the user profile
// from the body and the session cookie from the Set-Cookie header are
// persisted together and returned.
func (g *Gateway) Login(ctx context.Context, usernameOrEmail, password string) (*types.Session, error) {
	resp, err := g.post(ctx, "/api/login", loginRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		applog.Info("auth.login.rejected", "status", resp.StatusCode)
		return nil, ErrInvalidCredentials
	}

	var user types.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	cookie := resp.Header.Get("Set-Cookie")

	g.Store.SaveUser(user)
	g.Store.SaveCookie(cookie)
	applog.Info("auth.login", "user", user.ID)

	return &types.Session{User: user, Cookie: cookie}, nil
}

// Signup registers a new account. On success it persists the session
// like Login does and additionally seeds the last-visited URL to the
// explore page.
func (g *Gateway) Signup(ctx context.Context, firstName, lastName, username, email, password string) (*types.Session, error) {
	resp, err := g.post(ctx, "/api/register", signupRequest{
		FirstName: firstName,
		LastName:  lastName,
		Username:  username,
		Email:     email,
		Password:  password,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&body) // best effort
		applog.Info("auth.signup.rejected", "status", resp.StatusCode)
		return nil, &ValidationError{Message: body.Message}
	}

	var user types.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}
	cookie := resp.Header.Get("Set-Cookie")

	g.Store.SaveUser(user)
	g.Store.SaveCookie(cookie)
	g.Store.SaveLastURL(g.BaseURL + ExplorePath)
	applog.Info("auth.signup", "user", user.ID)

	return &types.Session{User: user, Cookie: cookie, LastURL: g.BaseURL + ExplorePath}, nil
}

// Logout clears the local session. It is local-only and never fails:
// the platform is not told, so a server-side session may stay valid
// until it expires on its own.
func (g *Gateway) Logout() {
	g.Store.Clear()
	applog.Info("auth.logout")
}

// IsAuthenticated reports whether a user profile is stored. It says
// nothing about whether the server still accepts the cookie; that is
// discovered lazily on the first page load.
func (g *Gateway) IsAuthenticated() bool {
	_, ok := g.Store.User()
	return ok
}

// AdoptSession persists a session established outside the login/signup
// endpoints, e.g. after the platform completed an OAuth code exchange
// inside the browser surface.
func (g *Gateway) AdoptSession(user types.User, cookie string) {
	g.Store.SaveUser(user)
	g.Store.SaveCookie(cookie)
	applog.Info("auth.adopt", "user", user.ID)
}
