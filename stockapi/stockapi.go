// Package stockapi wraps the real-time stock service. Payloads are unwrapped
// from the service envelope; stock codes and day counts are forwarded as given.
package stockapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jrsteele09/quant-web-client/apiclient"
)

const (
	DefaultBaseURL = "http://localhost:8082/stock-service/api/v1"
	DefaultDays    = 30
)

type Client struct {
	api *apiclient.Client
}

// NewClient builds a client for the stock service at baseURL. Extra options
// are applied after the defaults.
func NewClient(baseURL string, options ...apiclient.Option) *Client {
	opts := []apiclient.Option{
		apiclient.WithName("stock-service"),
		apiclient.WithMessages(apiclient.StockMessages),
		apiclient.WithRequestMiddleware(apiclient.LogRequests("stock-service")),
		apiclient.WithResponseMiddleware(apiclient.LogResponses("stock-service")),
	}
	return New(apiclient.New(baseURL, append(opts, options...)...))
}

func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func stockPath(code, suffix string) string {
	return fmt.Sprintf("/stocks/%s/%s", url.PathEscape(code), suffix)
}

func daysQuery(days int) url.Values {
	return url.Values{"days": {strconv.Itoa(days)}}
}

func (c *Client) GetStockHistory(ctx context.Context, code string, days int) (*HistoryResponse, error) {
	var out HistoryResponse
	if err := c.api.Get(ctx, stockPath(code, "history"), daysQuery(days), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetStockLatest(ctx context.Context, code string) (*LatestResponse, error) {
	var out LatestResponse
	if err := c.api.Get(ctx, stockPath(code, "latest"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetStockInfo(ctx context.Context, code string) (*InfoResponse, error) {
	var out InfoResponse
	if err := c.api.Get(ctx, stockPath(code, "info"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetStockReturn(ctx context.Context, code string, days int) (*ReturnResponse, error) {
	var out ReturnResponse
	if err := c.api.Get(ctx, stockPath(code, "return"), daysQuery(days), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBatchStockData queries several stocks at once. queryType is QueryLatest
// or QueryHistory; days only matters for history queries.
func (c *Client) GetBatchStockData(ctx context.Context, codes []string, queryType string, days int) (*BatchResponse, error) {
	var out BatchResponse
	req := BatchRequest{StockCodes: codes, QueryType: queryType, Days: days}
	if err := c.api.Post(ctx, "/stocks/batch/latest", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStockHistoryAsync hits the service's asynchronous history endpoint. The
// call itself is synchronous from the client's point of view.
func (c *Client) GetStockHistoryAsync(ctx context.Context, code string, days int) (*HistoryResponse, error) {
	var out HistoryResponse
	if err := c.api.Get(ctx, stockPath(code, "history/async"), daysQuery(days), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetStockLatestAsync(ctx context.Context, code string) (*LatestResponse, error) {
	var out LatestResponse
	if err := c.api.Get(ctx, stockPath(code, "latest/async"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
