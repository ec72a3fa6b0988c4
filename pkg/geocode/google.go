package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultGoogleReverseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// googleReverseResponse is the JSON response from the Google Geocoding API
// in reverse mode.
type googleReverseResponse struct {
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"`
}

// GoogleProvider reverse geocodes via the Google Geocoding API.
type GoogleProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// GoogleOption configures the GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithGoogleBaseURL overrides the API endpoint.
func WithGoogleBaseURL(u string) GoogleOption {
	return func(p *GoogleProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithGoogleHTTPClient sets a custom HTTP client.
func WithGoogleHTTPClient(hc *http.Client) GoogleOption {
	return func(p *GoogleProvider) {
		p.httpClient = hc
	}
}

// WithGoogleTimeout sets the per-call HTTP timeout.
func WithGoogleTimeout(d time.Duration) GoogleOption {
	return func(p *GoogleProvider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// NewGoogleProvider creates a GoogleProvider with the given API key.
func NewGoogleProvider(apiKey string, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		baseURL:    defaultGoogleReverseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements ReverseProvider.
func (p *GoogleProvider) Name() string { return "google" }

// Available implements ReverseProvider.
func (p *GoogleProvider) Available() bool { return p.apiKey != "" }

// ReverseGeocode implements ReverseProvider.
func (p *GoogleProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*ReverseResult, error) {
	if p.apiKey == "" {
		return nil, eris.New("geocode: google api key not configured")
	}

	params := url.Values{
		"latlng":      {fmt.Sprintf("%f,%f", lat, lon)},
		"result_type": {"street_address|route"},
		"key":         {p.apiKey},
	}

	reqURL := p.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google build request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: google returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google read body")
	}

	var gr googleReverseResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, eris.Wrap(err, "geocode: google parse response")
	}

	switch gr.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResult
	default:
		return nil, eris.Errorf("geocode: google status %s", gr.Status)
	}
	if len(gr.Results) == 0 {
		return nil, ErrNoResult
	}

	result := &ReverseResult{DisplayName: gr.Results[0].FormattedAddress}
	for _, comp := range gr.Results[0].AddressComponents {
		for _, typ := range comp.Types {
			switch typ {
			case "route":
				result.Street = comp.LongName
			case "locality":
				result.City = comp.LongName
			case "sublocality", "neighborhood":
				if result.Suburb == "" {
					result.Suburb = comp.LongName
				}
			case "postal_code":
				result.PostalCode = comp.LongName
			}
		}
	}
	if result.Street == "" {
		return nil, ErrNoResult
	}
	return result, nil
}
