// Package authapi wraps the user service REST endpoints. Responses keep the
// {success, data, message} envelope so callers can inspect Success; failed
// envelopes and HTTP errors come back as *apiclient.Error.
package authapi

import (
	"context"
	"net/url"

	"github.com/jrsteele09/quant-web-client/apiclient"
	"github.com/jrsteele09/quant-web-client/storage"
	"github.com/jrsteele09/quant-web-client/users"
)

const DefaultBaseURL = "http://localhost:8080/api/v1"

const (
	pathRegister      = "/users/register"
	pathLogin         = "/users/login"
	pathLogout        = "/users/logout"
	pathRefresh       = "/users/refresh"
	pathProfile       = "/users/profile"
	pathCheckUsername = "/users/check-username"
	pathCheckEmail    = "/users/check-email"
	pathHealth        = "/health"
)

// Credentials is the login payload.
type Credentials struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
	DeviceInfo      string `json:"deviceInfo,omitempty"`
}

// LoginResponse is returned by login and refresh.
type LoginResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	TokenType    string         `json:"tokenType,omitempty"`
	ExpiresIn    int64          `json:"expiresIn,omitempty"` // seconds
	User         *users.Profile `json:"user,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type Client struct {
	api *apiclient.Client
}

// NewClient builds the user service client: envelopes are kept, the
// persisted access token is sent as a bearer token. Extra options are
// applied after the defaults.
func NewClient(baseURL string, repo storage.Repo, options ...apiclient.Option) *Client {
	opts := []apiclient.Option{
		apiclient.WithName("user-service"),
		apiclient.WithoutUnwrap(),
		apiclient.WithMessages(apiclient.AuthMessages),
		apiclient.WithRequestMiddleware(
			apiclient.BearerToken(apiclient.StorageTokenSource(repo)),
			apiclient.LogRequests("user-service"),
		),
	}
	return New(apiclient.New(baseURL, append(opts, options...)...))
}

// New wraps an apiclient.Client. The client should be built with
// apiclient.WithoutUnwrap so envelopes reach the caller.
func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func (c *Client) Register(ctx context.Context, data users.Registration) (*apiclient.Envelope[users.Profile], error) {
	var out apiclient.Envelope[users.Profile]
	if err := c.api.Post(ctx, pathRegister, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*apiclient.Envelope[LoginResponse], error) {
	var out apiclient.Envelope[LoginResponse]
	if err := c.api.Post(ctx, pathLogin, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) (*apiclient.Envelope[any], error) {
	var out apiclient.Envelope[any]
	if err := c.api.Post(ctx, pathLogout, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*apiclient.Envelope[LoginResponse], error) {
	var out apiclient.Envelope[LoginResponse]
	if err := c.api.Post(ctx, pathRefresh, refreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUserProfile(ctx context.Context) (*apiclient.Envelope[users.Profile], error) {
	var out apiclient.Envelope[users.Profile]
	if err := c.api.Get(ctx, pathProfile, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUserProfile(ctx context.Context, data users.ProfileUpdate) (*apiclient.Envelope[users.Profile], error) {
	var out apiclient.Envelope[users.Profile]
	if err := c.api.Put(ctx, pathProfile, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckUsername reports in Data whether username is still available.
func (c *Client) CheckUsername(ctx context.Context, username string) (*apiclient.Envelope[bool], error) {
	var out apiclient.Envelope[bool]
	if err := c.api.Get(ctx, pathCheckUsername, url.Values{"username": {username}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckEmail reports in Data whether email is still available.
func (c *Client) CheckEmail(ctx context.Context, email string) (*apiclient.Envelope[bool], error) {
	var out apiclient.Envelope[bool]
	if err := c.api.Get(ctx, pathCheckEmail, url.Values{"email": {email}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the raw health payload of the user service.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.api.Get(ctx, pathHealth, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
