// Package apiclient builds JSON HTTP clients bound to a base URL. Outgoing
// requests pass through RequestMiddleware, 2xx responses through
// ResponseMiddleware, and every failure comes back as an *Error that has
// already been passed to the Notifier.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/quant-web-client/internal/errors"
	"github.com/jrsteele09/quant-web-client/notify"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout  = 30 * time.Second
	contentTypeJSON = "application/json"
)

type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	requestMW  []RequestMiddleware
	responseMW []ResponseMiddleware
	notifier   notify.Notifier
	messages   Messages
	unwrap     bool
}

// Option modifies a Client at construction.
type Option func(*Client)

func WithName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithTransport replaces the otel-instrumented default transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

func WithRequestMiddleware(mw ...RequestMiddleware) Option {
	return func(c *Client) {
		c.requestMW = append(c.requestMW, mw...)
	}
}

// WithResponseMiddleware adds middleware run after the envelope stage.
func WithResponseMiddleware(mw ...ResponseMiddleware) Option {
	return func(c *Client) {
		c.responseMW = append(c.responseMW, mw...)
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

func WithMessages(m Messages) Option {
	return func(c *Client) {
		c.messages = m
	}
}

// WithoutUnwrap keeps the whole envelope as the decoded payload. Failed
// envelopes are still rejected.
func WithoutUnwrap() Option {
	return func(c *Client) {
		c.unwrap = false
	}
}

// New returns a client bound to baseURL with a 30s timeout.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		name:    baseURL,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		requestMW: []RequestMiddleware{RequestID()},
		notifier:  notify.Discard,
		messages:  StockMessages,
		unwrap:    true,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Do sends the request and decodes the (unwrapped) payload into out, which
// may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return c.fail(&Error{Kind: KindRequestSetup, Message: c.messages.Setup, Err: err})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(&Error{Kind: KindUnreachable, Message: c.messages.Unreachable, Err: err})
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(&Error{Kind: KindUnreachable, Status: resp.StatusCode, Message: c.messages.Unreachable, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.fail(Classify(resp.StatusCode, content, c.messages))
	}

	result, err := c.responseChain()(&Response{StatusCode: resp.StatusCode, Body: content})
	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			apiErr = &Error{Kind: KindRejected, Status: resp.StatusCode, Message: c.messages.Rejected, Err: err}
		}
		return c.fail(apiErr)
	}

	if out == nil || len(bytes.TrimSpace(result.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Body, out); err != nil {
		return c.fail(&Error{Kind: KindDecode, Status: resp.StatusCode, Message: c.messages.Generic, Err: err})
	}
	return nil
}

func (c *Client) responseChain() ResponseMiddleware {
	envelope := UnwrapEnvelope(c.messages)
	if !c.unwrap {
		envelope = RejectFailedEnvelope(c.messages)
	}
	return ChainResponse(append([]ResponseMiddleware{envelope}, c.responseMW...)...)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", c.baseURL+path, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	return ChainRequest(c.requestMW...)(req)
}

// fail notifies and logs err before handing it back.
func (c *Client) fail(err *Error) error {
	log.Debug().
		Err(err.Err).
		Str("client", c.name).
		Str("kind", err.Kind.String()).
		Int("status", err.Status).
		Msg(err.Message)
	c.notifier.Error(err.Message)
	return err
}
