package generate

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/layout"
	"github.com/matzehuels/siteview/pkg/observability"
	"github.com/matzehuels/siteview/pkg/store"
)

// DefaultEndpoint is the generation service URL used when none is configured.
const DefaultEndpoint = "http://127.0.0.1:5000/generate-layouts"

// Client fetches one batch of candidate layouts.
type Client interface {
	// Generate issues a single request and returns the decoded layouts.
	// An empty or absent list is returned as a nil slice with no error.
	Generate(ctx context.Context) ([]layout.Layout, error)
	// Source describes where layouts come from, for logs and stored sets.
	Source() string
}

// =============================================================================
// HTTP
// =============================================================================

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(h *HTTPClient) { h.http = c }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) ClientOption {
	return func(h *HTTPClient) { h.headers[key] = value }
}

// HTTPClient calls the generation endpoint with a parameterless GET.
// No timeout or retry is applied; the caller's context bounds the request.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	headers  map[string]string
}

// NewHTTPClient creates a client for endpoint. An empty endpoint uses
// DefaultEndpoint.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &HTTPClient{
		endpoint: endpoint,
		http:     &http.Client{},
		headers:  map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source implements Client.
func (c *HTTPClient) Source() string { return c.endpoint }

// Generate implements Client.
func (c *HTTPClient) Generate(ctx context.Context) ([]layout.Layout, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid generation endpoint %q", c.endpoint)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "could not reach the layout generation service")
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	payload, err := layout.Decode(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "the layout generation service returned a malformed response")
	}
	return nonEmpty(payload.Layouts), nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return errors.Wrap(errors.ErrCodeUpstreamStatus,
		&errors.StatusError{StatusCode: resp.StatusCode, Status: resp.Status},
		"the layout generation service responded with %s", statusText(resp))
}

func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}

// =============================================================================
// File
// =============================================================================

// FileClient replays a saved generation response from disk.
type FileClient struct {
	path string
}

// NewFileClient creates a client that reads path on every Generate.
func NewFileClient(path string) *FileClient {
	return &FileClient{path: path}
}

// Source implements Client.
func (c *FileClient) Source() string { return "file:" + c.path }

// Generate implements Client.
func (c *FileClient) Generate(ctx context.Context) ([]layout.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "response file %s not found", c.path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open response file %s", c.path)
	}
	defer f.Close()

	payload, err := layout.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "%s is not a valid generation response", c.path)
	}
	return nonEmpty(payload.Layouts), nil
}

// =============================================================================
// Store
// =============================================================================

// StoreClient replays a previously stored candidate set.
type StoreClient struct {
	store store.Store
	id    string
}

// NewStoreClient creates a client that loads set id from s.
func NewStoreClient(s store.Store, id string) *StoreClient {
	return &StoreClient{store: s, id: id}
}

// Source implements Client.
func (c *StoreClient) Source() string { return "set:" + c.id }

// Generate implements Client.
func (c *StoreClient) Generate(ctx context.Context) ([]layout.Layout, error) {
	set, err := c.store.Get(ctx, c.id)
	if err != nil {
		return nil, err
	}
	return nonEmpty(set.Layouts), nil
}

func nonEmpty(list []layout.Layout) []layout.Layout {
	if len(list) == 0 {
		return nil
	}
	return list
}
