package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gilab/labsite/internal/client/tokenstore"
	"github.com/gilab/labsite/internal/logging"
	"github.com/google/uuid"
)

const (
	APIPrefix = "/api"

	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-ID"
)

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Client talks to the lab API. Create it with New.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  tokenstore.Store
	log     logging.Logger

	mu             sync.RWMutex
	onUnauthorized []func(ctx context.Context)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for the API served at baseURL (scheme and host, the
// "/api" prefix is added per request).
func New(baseURL string, tokens tokenstore.Store, opts ...Option) *Client {
	if tokens == nil {
		tokens = tokenstore.Disabled{}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "client")
	return c
}

// OnUnauthorized registers fn to run after any 401 reply, once the token
// has been cleared.
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
	c.mu.Unlock()
}

type requestConfig struct {
	header http.Header
}

type RequestOption func(*requestConfig)

// WithHeader sets a request header. Caller-set Authorization and
// Content-Type headers take precedence over the defaults.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) { rc.header.Set(key, value) }
}

// URL resolves path the way Do does: absolute http(s) URLs pass through,
// anything else is placed under the API prefix.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return c.baseURL + APIPrefix + path
}

// Do performs one request. body may be nil, a Multipart, or any value that
// encodes to JSON.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	method = strings.ToUpper(method)
	if _, ok := allowedMethods[method]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrMethod, method)
	}

	rc := requestConfig{header: http.Header{}}
	for _, opt := range opts {
		opt(&rc)
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = rc.header

	if req.Header.Get(HeaderContentType) == "" && contentType != "" {
		req.Header.Set(HeaderContentType, contentType)
	}
	if req.Header.Get(HeaderAuthorization) == "" {
		if token, ok := c.tokens.Get(ctx); ok {
			req.Header.Set(HeaderAuthorization, "Bearer "+token)
		}
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}

	log := c.log.With("method", method, "path", path, "request_id", req.Header.Get(HeaderRequestID))
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return nil, &Error{Kind: KindUnavailable, Message: "Request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn(ctx, "reading response failed", "status", resp.StatusCode, "error", err)
		return nil, &Error{Kind: KindUnavailable, Status: resp.StatusCode, Message: "Request failed", Err: err}
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode, "duration", time.Since(started))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.tokens.Clear(ctx)
		c.fireUnauthorized(ctx)
		return nil, &Error{
			Kind:    KindUnauthorized,
			Status:  resp.StatusCode,
			Message: errorMessage(raw, defaultUnauthorizedMessage, false),
			Payload: parsePayload(raw),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{
			Kind:    KindRequestFailed,
			Status:  resp.StatusCode,
			Message: errorMessage(raw, defaultFailureMessage, true),
			Payload: parsePayload(raw),
		}
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   raw,
		Value:  parseBody(raw),
	}, nil
}

func (c *Client) fireUnauthorized(ctx context.Context) {
	c.mu.RLock()
	hooks := append([]func(context.Context){}, c.onUnauthorized...)
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn(ctx)
	}
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "application/json", nil
	case Multipart:
		return bytes.NewReader(b.Body), b.ContentType, nil
	case *Multipart:
		return bytes.NewReader(b.Body), b.ContentType, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, body, opts...)
}
