package apiclient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/quant-web-client/internal/errors"
	"github.com/jrsteele09/quant-web-client/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const HeaderRequestID = "X-Request-ID"

// ErrNoToken is returned by a TokenSource that has no access token yet.
var ErrNoToken = errors.New("no access token")

// RequestMiddleware takes an outgoing request and returns the request to send.
// An error aborts the call as a KindRequestSetup failure.
type RequestMiddleware func(*http.Request) (*http.Request, error)

// ChainRequest composes middleware, applied in the order given.
func ChainRequest(mw ...RequestMiddleware) RequestMiddleware {
	return func(req *http.Request) (*http.Request, error) {
		var err error
		for _, m := range mw {
			if req, err = m(req); err != nil {
				return nil, err
			}
		}
		return req, nil
	}
}

// ChainResponse composes response middleware, applied in the order given.
func ChainResponse(mw ...ResponseMiddleware) ResponseMiddleware {
	return func(r *Response) (*Response, error) {
		var err error
		for _, m := range mw {
			if r, err = m(r); err != nil {
				return nil, err
			}
		}
		return r, nil
	}
}

// RequestID tags each request with a fresh X-Request-ID unless one is set.
func RequestID() RequestMiddleware {
	return func(req *http.Request) (*http.Request, error) {
		if req.Header.Get(HeaderRequestID) == "" {
			req.Header.Set(HeaderRequestID, uuid.NewString())
		}
		return req, nil
	}
}

// BearerToken adds an Authorization header from src. A source returning
// ErrNoToken leaves the request unchanged.
func BearerToken(src oauth2.TokenSource) RequestMiddleware {
	return func(req *http.Request) (*http.Request, error) {
		tok, err := src.Token()
		if errors.Is(err, ErrNoToken) {
			return req, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read access token")
		}
		tok.SetAuthHeader(req)
		return req, nil
	}
}

// LogRequests logs each outgoing request at debug level.
func LogRequests(name string) RequestMiddleware {
	return func(req *http.Request) (*http.Request, error) {
		log.Debug().
			Str("client", name).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Str("request_id", req.Header.Get(HeaderRequestID)).
			Msg("api request")
		return req, nil
	}
}

// LogResponses logs each 2xx response at debug level.
func LogResponses(name string) ResponseMiddleware {
	return func(r *Response) (*Response, error) {
		log.Debug().Str("client", name).Int("status", r.StatusCode).Int("bytes", len(r.Body)).Msg("api response")
		return r, nil
	}
}

type storageTokenSource struct {
	repo storage.Repo
}

// StorageTokenSource exposes the persisted access token as an oauth2.TokenSource.
func StorageTokenSource(repo storage.Repo) oauth2.TokenSource {
	return storageTokenSource{repo: repo}
}

func (s storageTokenSource) Token() (*oauth2.Token, error) {
	v, err := storage.Lookup(s.repo, storage.KeyToken)
	if err != nil {
		return nil, err
	}
	if v == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: v, TokenType: "Bearer"}, nil
}
