// Package api is a client for the Pick This image-annotation service.
//
// The service exposes three read endpoints returning JSON arrays:
//
//	api/images  image_id=<id> or all=1
//	api/picks   image_key=<id>&all=1
//	api/users   user_id=<id> or all=1
//
// Records decode into Image, Pick and User. Fields the client does not know
// about are kept in each record's Extra map.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/rehttp"
)

// DefaultURL is the public development server.
const DefaultURL = "http://dev.pick-this.appspot.com/"

var (
	// ErrServer is wrapped by every non-200 response.
	ErrServer = errors.New("server error")

	// ErrDecode is wrapped when a response body is not the expected JSON.
	ErrDecode = errors.New("api decode error")

	// ErrImageIDRequired is returned by Picks without an image id.
	ErrImageIDRequired = errors.New("image id required")
)

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned %d", ErrServer, e.Endpoint, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrServer }

// Options configures a Client.
type Options struct {
	// BaseURL of the service. Defaults to DefaultURL.
	BaseURL string

	// Retries is the number of retries for transient failures
	// (502/503/504 and temporary network errors). Zero disables retries.
	Retries int

	// Timeout bounds each request including retries. Defaults to 30s.
	Timeout time.Duration

	// Transport overrides the underlying round tripper.
	Transport http.RoundTripper
}

// Client talks to the Pick This service.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client.
func New(opts Options) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	var rt http.RoundTripper = opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.Retries > 0 {
		rt = rehttp.NewTransport(rt,
			rehttp.RetryAll(
				rehttp.RetryMaxRetries(opts.Retries),
				rehttp.RetryAny(
					rehttp.RetryStatuses(http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout),
					rehttp.RetryTemporaryErr(),
				),
			),
			rehttp.ExpJitterDelay(200*time.Millisecond, 5*time.Second),
		)
	}

	return &Client{
		base: base,
		http: &http.Client{Transport: rt, Timeout: opts.Timeout},
	}, nil
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Images fetches one image, or every image when imageID is empty.
func (c *Client) Images(ctx context.Context, imageID string) ([]Image, error) {
	params := url.Values{}
	if imageID != "" {
		params.Set("image_id", imageID)
	} else {
		params.Set("all", "1")
	}
	var out []Image
	if err := c.get(ctx, "api/images", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Image fetches a single image record.
func (c *Client) Image(ctx context.Context, imageID string) (*Image, error) {
	if imageID == "" {
		return nil, ErrImageIDRequired
	}
	images, err := c.Images(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("image %s not found", imageID)
	}
	img := images[0]
	if img.ID == "" {
		img.ID = imageID
	}
	return &img, nil
}

// Picks fetches every pick made on an image.
func (c *Client) Picks(ctx context.Context, imageID string) ([]Pick, error) {
	if imageID == "" {
		return nil, ErrImageIDRequired
	}
	params := url.Values{}
	params.Set("image_key", imageID)
	params.Set("all", "1")
	var out []Pick
	if err := c.get(ctx, "api/picks", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Users fetches one user, or every user when userID is empty.
func (c *Client) Users(ctx context.Context, userID string) ([]User, error) {
	params := url.Values{}
	if userID != "" {
		params.Set("user_id", userID)
	} else {
		params.Set("all", "1")
	}
	var out []User
	if err := c.get(ctx, "api/users", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchImage downloads and decodes the picture behind an image link.
// Supported formats are PNG, JPEG and GIF.
func (c *Client) FetchImage(ctx context.Context, link string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: link, StatusCode: resp.StatusCode}
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	u := c.base.ResolveReference(&url.URL{Path: strings.Trim(endpoint, "/")})
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, endpoint, err)
	}
	return nil
}
