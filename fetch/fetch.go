// Package fetch implements the fetch/transform collaborator the layer
// reconciler uses to resolve string-valued data props.
//
// A Client fetches a URL, decodes the response by content type (JSON
// becomes structured data, everything else raw bytes), optionally runs
// a caller-supplied transform, and caches the result in an LRU so
// re-submitted descriptor lists do not refetch unchanged references.
//
// The reconciler never retries failed loads; callers wanting retry
// semantics wrap the Client.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	deck "github.com/ballon3/deck.gl"
)

// DefaultCacheSize is the default number of cached responses.
const DefaultCacheSize = 128

// defaultTimeout bounds a single fetch when the caller's context has
// no deadline of its own.
const defaultTimeout = 30 * time.Second

// Transform post-processes a decoded response before it is installed
// as a layer's data.
type Transform func(data any) (any, error)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithCacheSize sets the LRU capacity. Zero or negative disables
// caching.
func WithCacheSize(n int) Option {
	return func(c *Client) { c.cacheSize = n }
}

// WithTransform installs a transform applied to every decoded
// response.
func WithTransform(t Transform) Option {
	return func(c *Client) { c.transform = t }
}

// Client is an HTTP-backed deck.Fetcher with response caching.
type Client struct {
	http      *http.Client
	cache     *lru.Cache[string, any]
	cacheSize int
	transform Transform
}

// New creates a Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheSize > 0 {
		// Size is validated above; lru.New only fails on size <= 0.
		c.cache, _ = lru.New[string, any](c.cacheSize)
	}
	return c
}

// Fetch resolves one URL into layer data. Cached results are returned
// without touching the network.
func (c *Client) Fetch(ctx context.Context, url string) (any, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(url); ok {
			deck.Logger().Debug("fetch cache hit", slog.String("url", url))
			return v, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: building request for %q: %w", url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: %q: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading %q: %w", url, err)
	}

	data, err := decode(url, resp.Header.Get("Content-Type"), body)
	if err != nil {
		return nil, err
	}
	if c.transform != nil {
		data, err = c.transform(data)
		if err != nil {
			return nil, fmt.Errorf("fetch: transforming %q: %w", url, err)
		}
	}

	if c.cache != nil {
		c.cache.Add(url, data)
	}
	deck.Logger().Debug("fetched", slog.String("url", url), slog.Int("bytes", len(body)))
	return data, nil
}

// decode interprets a response body: JSON becomes structured data,
// everything else stays raw bytes for the layer variant to decode
// (e.g. image data for bitmap layers).
func decode(url, contentType string, body []byte) (any, error) {
	if strings.Contains(contentType, "json") || strings.HasSuffix(url, ".json") {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("fetch: decoding JSON from %q: %w", url, err)
		}
		return v, nil
	}
	return body, nil
}

// Ensure Client implements the reconciler's fetcher contract.
var _ deck.Fetcher = (*Client)(nil)
