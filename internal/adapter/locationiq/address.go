package locationiq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
)

var (
	ErrLocationNotFound = fmt.Errorf("location not found")
)

// Client geocodes free-text place names into coordinates. Used at route
// creation to attach optional points to origin and destination; geocoding
// failures never block publishing a route.
type Client struct {
	apiKey string
}

func New(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
	}
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

var domain = "https://us1.locationiq.com"

// Geocode fetches the coordinates for a place name using the LocationIQ API.
func (c *Client) Geocode(ctx context.Context, place string) (*models.GeoPoint, error) {
	ctx = wrap.WithAction(ctx, "locationiq_geocode")

	reqURL := fmt.Sprintf("%s/v1/search?key=%s&q=%s&format=json", domain, c.apiKey, url.QueryEscape(place))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to build LocationIQ request: %w", err))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("failed to make request to LocationIQ: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("unexpected response status %d", resp.StatusCode))
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to decode data from LocationIQ response: %w", err))
	}

	if len(results) == 0 {
		return nil, wrap.Error(ctx, ErrLocationNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to parse latitude: %w", err))
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to parse longitude: %w", err))
	}

	return &models.GeoPoint{Latitude: lat, Longitude: lon}, nil
}
