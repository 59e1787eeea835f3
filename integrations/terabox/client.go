package terabox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	pkgError "github.com/AzielCF/az-telebox/pkg/error"
)

// resolveResponse is the wire payload of the video-resolution API.
type resolveResponse struct {
	Status    string `json:"status"`
	MediaURL  string `json:"media_url"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Message   string `json:"message"`
}

// Result carries the resolved direct media URL plus optional metadata.
type Result struct {
	MediaURL  string
	Title     string
	Thumbnail string
}

// Client resolves Terabox share links into direct media URLs through the
// configured resolution API. Single attempt, no retries, fail fast.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Resolve exchanges a share link for a direct media URL. The link travels
// URL-encoded as a query value appended to the configured base endpoint.
func (c *Client) Resolve(ctx context.Context, link string) (Result, error) {
	fullURL := c.baseURL + url.QueryEscape(link)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return Result{}, pkgError.UpstreamNetworkError("failed to build resolve request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, pkgError.UpstreamNetworkError("resolve request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, pkgError.UpstreamNetworkError("resolve API answered "+resp.Status, nil)
	}

	var payload resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, pkgError.UpstreamProcessingError("malformed resolve response")
	}

	if payload.Status != "success" {
		msg := payload.Message
		if msg == "" {
			msg = "unexpected response from API"
		}
		return Result{}, pkgError.UpstreamProcessingError(msg)
	}

	if payload.MediaURL == "" {
		return Result{}, pkgError.UpstreamProcessingError("resolve response missing media_url")
	}

	return Result{
		MediaURL:  payload.MediaURL,
		Title:     payload.Title,
		Thumbnail: payload.Thumbnail,
	}, nil
}
