// Package orgs fetches the organizations the authenticated user
// belongs to and drives the picker's switch state machine.
package orgs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lotas/lernbruecke/internal/auth"
	"github.com/lotas/lernbruecke/internal/store"
	"github.com/lotas/lernbruecke/internal/types"
)

// Client lists the user's organizations. There is no cache: the picker
// re-fetches every time it opens, and the list order is whatever the
// server returned.
type Client struct {
	BaseURL        string
	OrganizationID string // fallback context when nothing is selected
	HTTPClient     *http.Client
	Store          store.Session
}

func NewClient(s store.Session) *Client {
	return &Client{
		BaseURL:        auth.DefaultBaseURL,
		OrganizationID: auth.DefaultOrganizationID,
		HTTPClient:     http.DefaultClient,
		Store:          s,
	}
}

// List fetches the user's organizations using the stored session
// cookie and the current organization context.
func (c *Client) List(ctx context.Context) ([]types.Organization, error) {
	cookie, ok := c.Store.Cookie()
	if !ok || cookie == "" {
		return nil, auth.ErrUnauthenticated
	}
	orgID, ok := c.Store.OrganizationID()
	if !ok || orgID == "" {
		orgID = c.OrganizationID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/user/organizations", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("X-Organization-Id", orgID)
	req.Header.Set("Cookie", cookie)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("organizations request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &auth.APIError{Status: resp.StatusCode}
	}

	var orgs []types.Organization
	if err := json.NewDecoder(resp.Body).Decode(&orgs); err != nil {
		return nil, fmt.Errorf("decode organizations: %w", err)
	}
	return orgs, nil
}
