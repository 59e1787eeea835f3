package unlock

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	pkgError "github.com/AzielCF/az-telebox/pkg/error"
)

// Client fetches one-shot unlock links from the third-party access service.
// The response body is a bare string URL.
type Client struct {
	endpoint       string
	redirectPrefix string
	httpClient     *http.Client
}

type Config struct {
	Endpoint       string
	RedirectPrefix string
	Timeout        time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:       cfg.Endpoint,
		redirectPrefix: cfg.RedirectPrefix,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// FetchLink requests a fresh unlock link. The returned string is trimmed and
// must begin with the configured redirect prefix; anything else is treated as
// an untrusted upstream answer, never shown to the user.
func (c *Client) FetchLink(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", pkgError.UpstreamNetworkError("failed to build unlock-link request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgError.UpstreamNetworkError("unlock-link request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", pkgError.UpstreamNetworkError("unlock-link API answered "+resp.Status, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", pkgError.UpstreamNetworkError("failed to read unlock-link response", err)
	}

	link := strings.TrimSpace(string(body))
	if c.redirectPrefix == "" || !strings.HasPrefix(link, c.redirectPrefix) {
		return "", pkgError.UpstreamFormatError("unlock link outside the expected prefix")
	}

	return link, nil
}
