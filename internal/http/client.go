package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/identity-console/internal/auth"
	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// Logger is the structured logger used by the HTTP layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes one backend call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the JSON transport for the backend API. Non-2xx responses come
// back as *ops.APIError together with the response; transport failures come
// back as an *ops.APIError with a zero status.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	interceptors *ops.InterceptorChain
	logger       Logger
	debug        bool
	userAgent    string
	timeout      time.Duration
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables transport retries for 5xx, 429 and connection errors.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *ops.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a transport for baseURL. A nil tokenManager sends
// unauthenticated requests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenManager: tokenManager,
		userAgent:    constants.DefaultUserAgent,
		timeout:      constants.DefaultHTTPTimeout,
		retryMax:     constants.DefaultTransportRetryMax,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = client.retryMax
	retryClient.RetryWaitMin = client.retryWaitMin
	retryClient.RetryWaitMax = client.retryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = client.timeout
	retryClient.Logger = nil

	if client.logger != nil && client.retryMax > 0 {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	client.httpClient = retryClient

	return client
}

// BaseURL returns the URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req and reads the whole response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	intercepted, httpResp, started, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, ops.NewNetworkError(fmt.Errorf("reading response body: %w", err))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
	}

	return resp, c.finish(ctx, intercepted, resp.StatusCode, resp.Headers, body, started)
}

// Download sends req and streams a successful body to w.
func (c *Client) Download(ctx context.Context, req *Request, w io.Writer) (int64, error) {
	intercepted, httpResp, started, err := c.send(ctx, req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(httpResp.Body)

		return 0, c.finish(ctx, intercepted, httpResp.StatusCode, httpResp.Header, body, started)
	}

	written, err := io.Copy(w, httpResp.Body)
	if err != nil {
		return written, ops.NewNetworkError(fmt.Errorf("streaming response body: %w", err))
	}

	return written, c.finish(ctx, intercepted, httpResp.StatusCode, httpResp.Header, nil, started)
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch sends a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) send(ctx context.Context, req *Request) (*ops.Request, *http.Response, time.Time, error) {
	var bodyBytes []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, nil, time.Time{}, fmt.Errorf("encoding request body: %w", err)
		}

		bodyBytes = encoded
	}

	intercepted := &ops.Request{
		Method:   req.Method,
		Path:     req.Path,
		Headers:  make(http.Header),
		Body:     bodyBytes,
		Metadata: map[string]interface{}{},
	}

	for key, value := range req.Headers {
		intercepted.Headers.Set(key, value)
	}

	if c.interceptors != nil {
		err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, nil, time.Time{}, fmt.Errorf("getting auth token: %w", err)
		}

		if token != "" {
			intercepted.Headers.Set("Authorization", "Bearer "+token)
		}
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var rawBody interface{}
	if bodyBytes != nil {
		rawBody = bytes.NewReader(bodyBytes)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)

	if bodyBytes != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, values := range intercepted.Headers {
		httpReq.Header.Del(key)

		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if c.debug && c.logger != nil {
		fields := map[string]interface{}{
			"method": req.Method,
			"url":    target,
		}
		if bodyBytes != nil {
			fields["body"] = string(bodyBytes)
		}

		c.logger.Debug("HTTP Request", fields)
	}

	started := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, started, fmt.Errorf("request %s %s: %w", req.Method, req.Path, ctx.Err())
		}

		netErr := ops.NewNetworkError(err)
		_ = c.runResponseInterceptors(ctx, intercepted, &ops.Response{Duration: time.Since(started), Error: netErr})

		return nil, nil, started, netErr
	}

	return intercepted, httpResp, started, nil
}

func (c *Client) finish(ctx context.Context, req *ops.Request, status int, headers http.Header, body []byte, started time.Time) error {
	var apiErr *ops.APIError
	if status >= http.StatusBadRequest {
		apiErr = ops.ParseAPIError(status, body)
	}

	resp := &ops.Response{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
		Duration:   time.Since(started),
	}
	if apiErr != nil {
		resp.Error = apiErr
	}

	err := c.runResponseInterceptors(ctx, req, resp)
	if err != nil {
		return err
	}

	if apiErr != nil {
		return apiErr
	}

	return nil
}

func (c *Client) runResponseInterceptors(ctx context.Context, req *ops.Request, resp *ops.Response) error {
	if c.interceptors == nil {
		return nil
	}

	return c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
}

// leveledLogger bridges retryablehttp's key/value logging.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) fields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, l.fields(keysAndValues))
}
