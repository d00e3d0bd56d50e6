// Package source fetches listing and article pages over HTTP.
package source

import (
	"context"
	"fmt"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	DefaultTimeout   = 10 * time.Second
)

// StatusError is returned when a page answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status code %d", e.URL, e.StatusCode)
}

type Options struct {
	UserAgent string
	Timeout   time.Duration
	// Bypass wraps the transport so the TLS handshake looks like a browser's, which gets
	// past Cloudflare's bot check on some sites.
	Bypass bool
}

// Client issues one blocking GET per call. It never retries.
type Client struct {
	http *resty.Client
}

func New(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := resty.New()
	if opts.Bypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("User-Agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)

	return &Client{http: httpClient}
}

// Get returns the body of url as text.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.String(), nil
}
