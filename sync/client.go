// ABOUTME: HTTP client for the remote contact directory
// ABOUTME: Performs one GET {base}/contacts per sync and normalizes the result
package sync

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/models"
)

// Fetcher retrieves contacts from a directory.
type Fetcher interface {
	FetchContacts(ctx context.Context, baseURL, apiKey string) ([]models.Contact, error)
}

type Client struct {
	// HTTPClient performs the request. A nil client uses http.DefaultClient.
	HTTPClient *http.Client

	// Lenient treats an unrecognized payload shape as an empty contact list
	// with no error, the directory's historical behavior. By default such a
	// payload fails with MalformedResponse so it cannot pass for an empty
	// directory.
	Lenient bool
}

// NewClient creates a directory client from configuration. A zero timeout
// leaves the request unbounded.
func NewClient(cfg config.DirectoryConfig) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Lenient:    cfg.Lenient,
	}
}

// NormalizeBaseURL trims whitespace and removes a single trailing slash.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
}

// Target resolves the URL and key for a sync. A blank URL means the
// configured directory. The configured key is only ever paired with the
// configured directory; any other URL must come with its own key.
func Target(cfg config.DirectoryConfig, baseURL, apiKey string) (string, string) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = cfg.BaseURL
	}
	if strings.TrimSpace(apiKey) == "" && NormalizeBaseURL(baseURL) == NormalizeBaseURL(cfg.BaseURL) {
		apiKey = cfg.APIKey
	}
	return baseURL, apiKey
}

// FetchContacts makes exactly one request to the directory. It never retries.
func (c *Client) FetchContacts(ctx context.Context, baseURL, apiKey string) ([]models.Contact, error) {
	endpoint := NormalizeBaseURL(baseURL)
	if endpoint == "" {
		return nil, missingEndpoint()
	}

	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, missingCredential()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/contacts", nil)
	if err != nil {
		return nil, networkOrParse(err)
	}
	req.Header.Set("DOLAPIKEY", key)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, networkOrParse(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkOrParse(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, requestFailed(resp.StatusCode, string(body))
	}

	return decodeContacts(body, c.Lenient)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
