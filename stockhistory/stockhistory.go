// Package stockhistory talks to whichever stock history backend the endpoint
// resolver currently selects. The active config is resolved again on every
// call, so a SwitchConfig takes effect on the next request.
package stockhistory

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jrsteele09/quant-web-client/apiclient"
	"github.com/jrsteele09/quant-web-client/endpoints"
	"github.com/jrsteele09/quant-web-client/internal/errors"
	"github.com/jrsteele09/quant-web-client/storage"
)

const DefaultDays = 30

// Payload is the backend response as decoded JSON. The two backends differ in
// shape, so no typed view is imposed.
type Payload map[string]any

type Client struct {
	resolver *endpoints.Resolver
	repo     storage.Repo
	options  []apiclient.Option
}

// NewClient returns a client driven by resolver. options are applied to every
// per-call apiclient.Client after the defaults.
func NewClient(resolver *endpoints.Resolver, repo storage.Repo, options ...apiclient.Option) (*Client, error) {
	if resolver == nil {
		return nil, errors.New("[NewClient] endpoint resolver is required")
	}
	if repo == nil {
		return nil, errors.New("[NewClient] storage repo is required")
	}
	return &Client{resolver: resolver, repo: repo, options: options}, nil
}

// Resolver returns the resolver used to pick the backend.
func (c *Client) Resolver() *endpoints.Resolver {
	return c.resolver
}

func (c *Client) GetStockHistory(ctx context.Context, code string, days int) (Payload, error) {
	query := url.Values{"days": {strconv.Itoa(days)}}
	return c.call(ctx, endpoints.OpHistory, map[string]string{"stockCode": code}, query)
}

func (c *Client) GetStockLatest(ctx context.Context, code string) (Payload, error) {
	return c.call(ctx, endpoints.OpLatest, map[string]string{"stockCode": code}, nil)
}

func (c *Client) HealthCheck(ctx context.Context) (Payload, error) {
	return c.call(ctx, endpoints.OpHealth, nil, nil)
}

func (c *Client) call(ctx context.Context, operation string, params map[string]string, query url.Values) (Payload, error) {
	cfg := c.resolver.Resolve()
	path, err := cfg.Path(operation, params)
	if err != nil {
		return nil, &apiclient.Error{Kind: apiclient.KindRequestSetup, Message: apiclient.HistoryMessages.Setup, Err: err}
	}

	out := Payload{}
	if err := c.newAPI(cfg).Get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) newAPI(cfg endpoints.Config) *apiclient.Client {
	name := "stock-history:" + cfg.Key
	opts := []apiclient.Option{
		apiclient.WithName(name),
		apiclient.WithoutUnwrap(),
		apiclient.WithMessages(apiclient.HistoryMessages),
		apiclient.WithRequestMiddleware(
			apiclient.BearerToken(apiclient.StorageTokenSource(c.repo)),
			apiclient.LogRequests(name),
		),
	}
	return apiclient.New(cfg.BaseURL, append(opts, c.options...)...)
}
