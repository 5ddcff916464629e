package recommendations

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

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/config"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
)

const (
	defaultTimeout           = 5 * time.Second
	errorBodyReadLimit int64 = 1024
)

// Client talks to the external recommendation service. The service is an
// opaque dependency: it takes a user ID and returns ranked product IDs.
type Client struct {
	httpClient *http.Client
	baseURL    string
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

// NewClient builds a recommendation client. Returns nil when no base URL is
// configured; the service treats a nil client as a permanently failing
// dependency and falls back accordingly.
func NewClient(cfg config.RecommendationsConfig, opts ...Option) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// ForUser fetches ranked product IDs for the user. Errors wrap
// DEPENDENCY_ERROR so callers can degrade gracefully.
func (c *Client) ForUser(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "recommendation service not configured")
	}

	query := url.Values{}
	query.Set("user_id", userID.String())
	query.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/recommendations?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build recommendations request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute recommendations request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"recommendations request failed")
	}

	var apiResp struct {
		ProductIDs []uuid.UUID `json:"product_ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode recommendations response")
	}
	return apiResp.ProductIDs, nil
}
