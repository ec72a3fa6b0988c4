package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// nominatimResponse is the JSON response from the Nominatim reverse API.
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road       string `json:"road"`
		Pedestrian string `json:"pedestrian"`
		Footway    string `json:"footway"`
		Suburb     string `json:"suburb"`
		City       string `json:"city"`
		Town       string `json:"town"`
		Village    string `json:"village"`
		Postcode   string `json:"postcode"`
	} `json:"address"`
	Error string `json:"error"`
}

// NominatimProvider reverse geocodes via the OSM Nominatim API. The public
// endpoint's usage policy caps clients at 1 request per second and requires
// an identifying User-Agent.
type NominatimProvider struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NominatimOption configures the NominatimProvider.
type NominatimOption func(*NominatimProvider)

// WithNominatimBaseURL overrides the API endpoint (e.g. a self-hosted instance).
func WithNominatimBaseURL(u string) NominatimOption {
	return func(p *NominatimProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithNominatimHTTPClient sets a custom HTTP client.
func WithNominatimHTTPClient(hc *http.Client) NominatimOption {
	return func(p *NominatimProvider) {
		p.httpClient = hc
	}
}

// WithNominatimTimeout sets the per-call HTTP timeout.
func WithNominatimTimeout(d time.Duration) NominatimOption {
	return func(p *NominatimProvider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// WithNominatimRateLimit sets the requests-per-second limit.
func WithNominatimRateLimit(rps float64) NominatimOption {
	return func(p *NominatimProvider) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewNominatimProvider creates a NominatimProvider identifying itself with
// userAgent.
func NewNominatimProvider(userAgent string, opts ...NominatimOption) *NominatimProvider {
	p := &NominatimProvider{
		baseURL:    defaultNominatimURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 8 * time.Second},
		limiter:    rate.NewLimiter(1, 1), // public Nominatim policy: 1 req/s
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements ReverseProvider.
func (p *NominatimProvider) Name() string { return "nominatim" }

// Available implements ReverseProvider.
func (p *NominatimProvider) Available() bool { return p.userAgent != "" }

// ReverseGeocode implements ReverseProvider.
func (p *NominatimProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*ReverseResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim rate limit")
	}

	params := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format": {"jsonv2"},
		"zoom":   {"17"}, // street level
	}

	reqURL := p.baseURL + "/reverse?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim build request")
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim read body")
	}

	var nr nominatimResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse response")
	}
	if nr.Error != "" {
		return nil, ErrNoResult
	}

	street := firstNonEmpty(nr.Address.Road, nr.Address.Pedestrian, nr.Address.Footway)
	if street == "" {
		return nil, ErrNoResult
	}

	return &ReverseResult{
		Street:      street,
		Suburb:      nr.Address.Suburb,
		City:        firstNonEmpty(nr.Address.City, nr.Address.Town, nr.Address.Village),
		PostalCode:  nr.Address.Postcode,
		DisplayName: nr.DisplayName,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
