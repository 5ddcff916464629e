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
	"time"

	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/geo"
)

const (
	defaultBaseURL            = "https://nominatim.openstreetmap.org"
	defaultTimeout            = 5 * time.Second
	errorBodyReadLimit  int64 = 1024
	defaultUserAgent          = "localbasket-backend"
)

// Client wraps a Nominatim-style reverse geocoding endpoint. Reverse
// geocoding is best-effort everywhere it is used: callers treat any error
// here as non-fatal.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout bounds every reverse lookup. A timeout is treated like any
// other lookup failure.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header the endpoint requires.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(agent)
		if trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// NewClient builds a reverse geocoding client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// AddressFields is the human-readable address derived from a point. Absent
// fields stay empty strings.
type AddressFields struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// Reverse resolves a point into address fields. Errors wrap
// DEPENDENCY_ERROR so callers can degrade gracefully.
func (c *Client) Reverse(ctx context.Context, point geo.DisplayPoint) (AddressFields, error) {
	if c == nil {
		return AddressFields{}, pkgerrors.New(pkgerrors.CodeDependency, "geocode client not configured")
	}

	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(point.Lng, 'f', -1, 64))

	endpoint := fmt.Sprintf("%s/reverse?%s", strings.TrimRight(c.baseURL, "/"), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return AddressFields{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build reverse geocode request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AddressFields{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute reverse geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return AddressFields{}, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"reverse geocode request failed")
	}

	var apiResp struct {
		DisplayName string `json:"display_name"`
		Address     struct {
			Road     string `json:"road"`
			City     string `json:"city"`
			Town     string `json:"town"`
			Village  string `json:"village"`
			Postcode string `json:"postcode"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return AddressFields{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode reverse geocode response")
	}

	fields := AddressFields{
		Address: apiResp.Address.Road,
		Pincode: apiResp.Address.Postcode,
	}
	if fields.Address == "" {
		fields.Address = apiResp.DisplayName
	}
	switch {
	case apiResp.Address.City != "":
		fields.City = apiResp.Address.City
	case apiResp.Address.Town != "":
		fields.City = apiResp.Address.Town
	default:
		fields.City = apiResp.Address.Village
	}

	return fields, nil
}
