// Package preview extracts a readable title and excerpt of the page
// the surface is currently on, for the native detail pane. The fetch
// replays the stored session cookie so authenticated pages render the
// same content the surface sees.
package preview

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/lotas/lernbruecke/internal/store"
)

// Page is the readable reduction of one page.
type Page struct {
	Title   string
	Excerpt string
}

const (
	fetchTimeout  = 15 * time.Second
	maxExcerptLen = 600
)

var skipPrefixes = []string{"about:", "file:", "chrome:", "data:", "javascript:"}

// Fetch downloads url and reduces it to a title and a short excerpt.
// Non-HTTP URLs are refused.
func Fetch(ctx context.Context, s store.Session, url string) (*Page, error) {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(url, prefix) {
			return nil, fmt.Errorf("not a web page: %s", url)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if cookie, ok := s.Cookie(); ok && cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return nil, fmt.Errorf("extract readable content from %s: %w", url, err)
	}

	return &Page{
		Title:   article.Title,
		Excerpt: excerpt(article.TextContent),
	}, nil
}

func excerpt(text string) string {
	text = strings.TrimSpace(strings.Join(strings.Fields(text), " "))
	if len(text) > maxExcerptLen {
		text = text[:maxExcerptLen] + "…"
	}
	return text
}
