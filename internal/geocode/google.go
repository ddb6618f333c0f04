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

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleClient resolves addresses through the Google Geocoding API.
type GoogleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleClient creates a geocoding client with the given API key.
func NewGoogleClient(apiKey string) *GoogleClient {
	return &GoogleClient{
		apiKey:  apiKey,
		baseURL: googleGeocodeURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve looks up the address and returns the canonical form plus
// coordinates. ZERO_RESULTS maps to ErrAddressNotFound, everything else that
// goes wrong to ErrUnavailable.
func (c *GoogleClient) Resolve(ctx context.Context, address string) (Location, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("create geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var decoded googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Location{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return Location{}, ErrAddressNotFound
	default:
		return Location{}, fmt.Errorf("%w: provider status %s", ErrUnavailable, decoded.Status)
	}
	if len(decoded.Results) == 0 {
		return Location{}, ErrAddressNotFound
	}

	result := decoded.Results[0]
	return Location{
		Address: result.FormattedAddress,
		Lat:     strconv.FormatFloat(result.Geometry.Location.Lat, 'f', -1, 64),
		Lng:     strconv.FormatFloat(result.Geometry.Location.Lng, 'f', -1, 64),
	}, nil
}
