package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default client settings.
const (
	DefaultUserAgent = "tubetunes"
	DefaultTimeout   = 60 * time.Second

	// MaxDownloadBytes caps DownloadBytes. Thumbnails are far smaller.
	MaxDownloadBytes = 20 << 20
)

// Client wraps HTTP operations with a fixed User-Agent and timeout.
//
// It fetches small resources such as thumbnails; media itself is
// downloaded by yt-dlp.
//
// Example usage:
//
//	client := NewClient("tubetunes/1.0")
//	data, err := client.DownloadBytes(ctx, artifact.ThumbnailURL)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client with a 60 second timeout. An empty
// userAgent selects DefaultUserAgent.
func NewClient(userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: userAgent,
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// DownloadBytes downloads a small file into memory. Bodies larger than
// MaxDownloadBytes are rejected.
//
// Example:
//
//	imageData, err := client.DownloadBytes(ctx, thumbnailURL)
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > MaxDownloadBytes {
		return nil, fmt.Errorf("%s: body of %d bytes exceeds limit", url, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDownloadBytes {
		return nil, fmt.Errorf("%s: body exceeds %d bytes", url, MaxDownloadBytes)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp, nil
}
