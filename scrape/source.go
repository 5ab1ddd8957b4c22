package scrape

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Source is a single bureau document source: a display name tied to
// a fixed document URL
type Source struct {
	client *http.Client
	parser *Parser

	name string
	url  string
}

// NewSource creates a new bureau document source
func NewSource(
	name string,
	url string,
	timeout time.Duration,
	parser *Parser,
) *Source {
	return &Source{
		client: &http.Client{
			Timeout: timeout,
		},
		parser: parser,
		name:   name,
		url:    url,
	}
}

// Name returns the configured display name of the bureau
func (s *Source) Name() string {
	return s.name
}

// URL returns the bureau's document URL
func (s *Source) URL() string {
	return s.url
}

// Fetch downloads the bureau document and extracts its card and quotes
func (s *Source) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	snapshot, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to extract bureau data: %w", err)
	}

	return snapshot, nil
}
