// Package kakao resolves place queries to coordinates via the Kakao local
// search API. Literal "lat,lng" input bypasses the network entirely.
package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/domain"
)

const baseURL = "https://dapi.kakao.com/v2/local/search"

// Client is the Kakao geocoding provider.
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a geocoder. Without an API key only "lat,lng" literals
// resolve.
func NewClient(apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
		logger: logger.With().Str("component", "kakao").Logger(),
	}
}

type searchResponse struct {
	Documents []struct {
		X string `json:"x"` // longitude
		Y string `json:"y"` // latitude
	} `json:"documents"`
}

// Resolve turns a query into coordinates. A "lat,lng" literal is parsed
// directly; anything else is geocoded through the address endpoint first,
// then the keyword endpoint.
func (c *Client) Resolve(ctx context.Context, query string) (domain.LatLng, error) {
	if ll, ok := parseLatLng(query); ok {
		return ll, nil
	}
	if c.apiKey == "" {
		return domain.LatLng{}, fmt.Errorf("kakao: no API key configured, cannot geocode %q", query)
	}

	var lastErr error
	for _, ep := range []string{"address", "keyword"} {
		ll, err := c.search(ctx, ep, query)
		if err == nil {
			return ll, nil
		}
		lastErr = err
	}
	return domain.LatLng{}, fmt.Errorf("kakao: no match for %q: %w", query, lastErr)
}

func (c *Client) search(ctx context.Context, endpoint, query string) (domain.LatLng, error) {
	u := fmt.Sprintf("%s/%s.json?query=%s", baseURL, endpoint, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.LatLng{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.LatLng{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.LatLng{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.LatLng{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Documents) == 0 {
		return domain.LatLng{}, fmt.Errorf("no documents")
	}

	doc := decoded.Documents[0]
	lat, err := strconv.ParseFloat(doc.Y, 64)
	if err != nil {
		return domain.LatLng{}, fmt.Errorf("bad latitude %q: %w", doc.Y, err)
	}
	lng, err := strconv.ParseFloat(doc.X, 64)
	if err != nil {
		return domain.LatLng{}, fmt.Errorf("bad longitude %q: %w", doc.X, err)
	}
	return domain.LatLng{Lat: lat, Lng: lng}, nil
}

func parseLatLng(s string) (domain.LatLng, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.LatLng{}, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return domain.LatLng{}, false
	}
	return domain.LatLng{Lat: lat, Lng: lng}, true
}
