package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Nominatim search endpoint
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

const userAgent = "kantorfx/1.0"

// Nominatim is an HTTP geocoder backed by a Nominatim search endpoint
type Nominatim struct {
	client  *http.Client
	baseURL string
}

// NewNominatim creates a new Nominatim geocoder
func NewNominatim(baseURL string, timeout time.Duration) *Nominatim {
	return &Nominatim{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// nominatimResult is a single entry of the Nominatim search response.
// Coordinates are returned as strings
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *Nominatim) Resolve(ctx context.Context, address string) (*Location, error) {
	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	endpoint := fmt.Sprintf("%s/search?%s", n.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	// Nominatim rejects requests without an identifying agent
	req.Header.Set("User-Agent", userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var results []nominatimResult

	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	if len(results) == 0 {
		return nil, nil //nolint:nilnil // valid empty result
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("unable to parse latitude: %w", err)
	}

	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("unable to parse longitude: %w", err)
	}

	return &Location{
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
