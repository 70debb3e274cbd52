// Package geocode resolves free-text addresses to coordinates through a
// Nominatim-compatible search API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

// Geocoder looks up an address. found is false when the service has no match.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (point domain.Coordinates, found bool, err error)
}

// maxResponseBytes bounds how much of a search response is read.
const maxResponseBytes = 1 << 20

// Client calls the /search endpoint of a Nominatim instance.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	endpoint   string
	userAgent  string
}

// NewClient builds a client for endpoint, e.g. https://nominatim.openstreetmap.org/search.
// Nominatim's usage policy requires an identifying User-Agent.
func NewClient(httpClient *http.Client, logger *zap.Logger, endpoint, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		userAgent:  userAgent,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the first search hit for address.
func (c *Client) Geocode(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinates{}, false, nil
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("parse geocoder url: %w", err)
	}
	q := reqURL.Query()
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("build geocoder request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("geocoder request failed", zap.Error(err))
		return domain.Coordinates{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("geocoder returned error status", zap.Int("http_status", resp.StatusCode))
		return domain.Coordinates{}, false, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("read geocoder response: %w", err)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("decode geocoder response: %w", err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, true, nil
}
