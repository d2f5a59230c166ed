// Package courses is a thin read-mostly client for the platform's
// course endpoints. The screens built on it just render what the
// server returned.
package courses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lotas/lernbruecke/internal/auth"
	"github.com/lotas/lernbruecke/internal/store"
	"github.com/lotas/lernbruecke/internal/types"
)

type Client struct {
	BaseURL        string
	OrganizationID string // fallback context
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

func (c *Client) orgContext() string {
	if id, ok := c.Store.OrganizationID(); ok && id != "" {
		return id
	}
	return c.OrganizationID
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("X-Organization-Id", c.orgContext())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie, ok := c.Store.Cookie(); ok && cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &auth.APIError{Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Categories lists the course categories of the current organization.
func (c *Client) Categories(ctx context.Context) ([]types.CourseCategory, error) {
	var out []types.CourseCategory
	path := fmt.Sprintf("/api/organizations/%s/course-categories", c.orgContext())
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List fetches the courses visible in the current organization.
func (c *Client) List(ctx context.Context) ([]types.Course, error) {
	var out []types.Course
	if err := c.do(ctx, http.MethodGet, "/api/courses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Detail fetches a single course by slug, with its outline.
func (c *Client) Detail(ctx context.Context, slug string) (*types.CourseDetail, error) {
	var out types.CourseDetail
	if err := c.do(ctx, http.MethodGet, "/api/courses/"+slug, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enroll enrolls the authenticated user in a course.
func (c *Client) Enroll(ctx context.Context, courseID string) (*types.Enrollment, error) {
	if _, ok := c.Store.Cookie(); !ok {
		return nil, auth.ErrUnauthenticated
	}
	body, err := json.Marshal(map[string]string{"courseId": courseID})
	if err != nil {
		return nil, fmt.Errorf("marshal enrollment: %w", err)
	}
	var out types.Enrollment
	if err := c.do(ctx, http.MethodPost, "/api/enrollments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
