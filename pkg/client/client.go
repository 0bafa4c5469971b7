package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cxfksword/metashark-manifest/pkg/manifest"
	"github.com/hashicorp/go-retryablehttp"
)

type ErrorResponse struct {
	StatusCode int
	URL        string
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("unexpected status code: %d, url: %s", e.StatusCode, e.URL)
}

// IsNotFound reports whether err is the answer for a manifest that has not been published yet.
func IsNotFound(err error) bool {
	var errResp *ErrorResponse
	return errors.As(err, &errResp) && errResp.StatusCode == http.StatusNotFound
}

type Client struct {
	httpClient *retryablehttp.Client
}

type Option func(c *Client)

// WithRetries sets the number of additional attempts on 5xx answers and connection errors.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retries
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient = httpClient
	}
}

func New(opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil
	httpClient.RetryMax = 0
	httpClient.RetryWaitMin = 500 * time.Millisecond
	httpClient.HTTPClient.Timeout = 5 * time.Minute
	// hand the last response back instead of a generic "giving up" error
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c := &Client{httpClient: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchManifest(ctx context.Context, url string) (manifest.Manifest, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if resp == nil {
		return nil, err
	}
	defer resp.Body.Close()
	// the passthrough handler returns the last response together with the retry policy error
	if resp.StatusCode != http.StatusOK {
		return nil, &ErrorResponse{StatusCode: resp.StatusCode, URL: url}
	}
	if err != nil {
		return nil, err
	}
	return manifest.Decode(resp.Body)
}
