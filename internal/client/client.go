// ABOUTME: HTTP gateway for the blog API
// ABOUTME: Attaches bearer tokens, unwraps response envelopes and evicts sessions on 401

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is used when no API URL is configured
const DefaultBaseURL = "http://localhost:8000/api/v1"

const defaultTimeout = 30 * time.Second

// SessionHook is the gateway's view of the session owner
type SessionHook interface {
	// Token returns the bearer token to attach, or "" when anonymous
	Token() string
	// Evict drops the current session after the API rejected its token
	Evict(reason error)
}

// DialContextFunc matches http.Transport.DialContext
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Client is the single gateway to the blog API
type Client struct {
	baseURL    string
	httpClient *http.Client
	requestID  func() string

	mu   sync.RWMutex
	hook SessionHook
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the default 30s request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithDialContext routes connections through dial, e.g. an SSH+SOCKS5 proxy
func WithDialContext(dial DialContextFunc) Option {
	return func(c *Client) {
		if dial == nil {
			return
		}
		c.httpClient.Transport = &http.Transport{
			DialContext: dial,
		}
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		requestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API endpoint
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BindSession installs the session owner consulted for tokens and evictions
func (c *Client) BindSession(h SessionHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = h
}

func (c *Client) session() SessionHook {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hook
}

// Request describes one API call. At most one of JSON and Multipart is set.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	JSON      any
	Multipart *Multipart

	// CredentialExchange marks login/register: no bearer is attached and a
	// 401 means rejected credentials rather than an expired session.
	CredentialExchange bool
}

// Response is a successful (2xx) API response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Send dispatches req and returns the raw response. Non-2xx statuses are
// returned as *APIError. Send never retries.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: ErrNetwork, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.handleErrorResponse(resp.StatusCode, body, req.CredentialExchange)
		if resp.StatusCode == http.StatusUnauthorized && !req.CredentialExchange {
			slog.Warn("API rejected session token", "method", req.Method, "path", req.Path)
			if hook := c.session(); hook != nil {
				hook.Evict(apiErr)
			}
		}
		return nil, apiErr
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Multipart != nil:
		buf, ct, err := req.Multipart.encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode form: %w", err)
		}
		body, contentType = buf, ct
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", c.requestID())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if !req.CredentialExchange {
		if hook := c.session(); hook != nil {
			if token := hook.Token(); token != "" {
				httpReq.Header.Set("Authorization", "Bearer "+token)
			}
		}
	}
	return httpReq, nil
}

// handleRequestError converts transport and context errors into network errors
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		return &APIError{Kind: ErrNetwork, Message: "request canceled", Err: err}
	case context.DeadlineExceeded:
		return &APIError{Kind: ErrNetwork, Message: "request timed out", Err: err}
	}
	return &APIError{Kind: ErrNetwork, Message: fmt.Sprintf("cannot connect to API at %s", c.baseURL), Err: err}
}

// errorBody covers both the envelope error shape and plain {"error": ...}
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(status int, body []byte, credentialExchange bool) *APIError {
	apiErr := &APIError{Kind: kindForStatus(status, credentialExchange), Status: status}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		apiErr.Message = fmt.Sprintf("API returned status %d", status)
		return apiErr
	}
	apiErr.Message = parsed.Message
	if apiErr.Message == "" {
		apiErr.Message = parsed.Error
	}
	apiErr.Fields = parsed.Errors
	return apiErr
}

// envelope is the {success, message, data} wrapper of every non-list response
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

func decodeData[T any](resp *Response) (T, error) {
	var env envelope[T]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		var zero T
		return zero, &APIError{Kind: ErrServer, Status: resp.StatusCode, Message: "invalid response from API", Err: err}
	}
	return env.Data, nil
}

// call sends req and unwraps the data field of the response envelope
func call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeData[T](resp)
}
