package icecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultTimeout bounds a single status request.
	DefaultTimeout = 5 * time.Second

	// maxBodySize caps how much of the status document we read.
	maxBodySize = 1 << 20
)

// Client polls an Icecast server's JSON status endpoint.
type Client struct {
	statusURL string
	mount     string
	userAgent string
	http      *http.Client
}

// New creates a Client for statusURL selecting mount. An empty mount
// selects the first source the server reports.
func New(statusURL, mount, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = "MyRadio/1.0"
	}
	return &Client{
		statusURL: statusURL,
		mount:     mount,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// Mount returns the mount point this client selects.
func (c *Client) Mount() string {
	return c.mount
}

// FetchStatus issues one status request. Every failure is returned as a
// *FetchError.
func (c *Client) FetchStatus(ctx context.Context) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: Unreachable, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &FetchError{Kind: BadStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classify(err)
	}

	var doc statusDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &FetchError{Kind: MalformedBody, Err: fmt.Errorf("decode status: %w", err)}
	}

	return &Status{
		Server: doc.Icestats,
		Source: c.selectSource(doc.Icestats.Sources),
	}, nil
}

func (c *Client) selectSource(sources SourceList) *Source {
	if len(sources) == 0 {
		return nil
	}
	if c.mount == "" {
		src := sources[0]
		return &src
	}
	for i := range sources {
		if sources[i].Mount == c.mount {
			src := sources[i]
			return &src
		}
	}
	return nil
}

func classify(err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &FetchError{Kind: Timeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &FetchError{Kind: Timeout, Err: err}
	}
	return &FetchError{Kind: Unreachable, Err: err}
}
