package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/quant-web-client/apiclient"
	"github.com/jrsteele09/quant-web-client/notify"
	"github.com/jrsteele09/quant-web-client/storage"
	"github.com/jrsteele09/quant-web-client/storage/repofake"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string `json:"value"`
}

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    apiclient.Kind
		message string
	}{
		{"404 without message", http.StatusNotFound, `{}`, apiclient.KindNotFound, "股票数据不存在"},
		{"404 with error text", http.StatusNotFound, `{"error":"No data found","stock_code":"X"}`, apiclient.KindNotFound, "No data found"},
		{"400 with message", http.StatusBadRequest, `{"code":400,"message":"无效的股票代码格式: X"}`, apiclient.KindParameter, "无效的股票代码格式: X"},
		{"400 without message", http.StatusBadRequest, ``, apiclient.KindParameter, "请求参数错误"},
		{"500 fallback", http.StatusInternalServerError, `not json`, apiclient.KindServer, "服务器错误"},
		{"502 fallback", http.StatusBadGateway, `{}`, apiclient.KindUpstreamUnavailable, "数据服务暂时不可用"},
		{"other status", http.StatusTeapot, `{"message":"short and stout"}`, apiclient.KindHTTP, "short and stout"},
		{"other status fallback", http.StatusUnauthorized, `[]`, apiclient.KindHTTP, "请求失败"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body)
			rec := &notify.Recorder{}
			c := apiclient.New(srv.URL, apiclient.WithNotifier(rec))

			err := c.Get(context.Background(), "/stocks/X/latest", nil, nil)
			require.Error(t, err)

			var apiErr *apiclient.Error
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tt.kind, apiErr.Kind)
			require.Equal(t, tt.status, apiErr.Status)
			require.Equal(t, tt.message, apiErr.Message)
			require.Equal(t, []string{tt.message}, rec.Errors())
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	rec := &notify.Recorder{}
	c := apiclient.New(addr, apiclient.WithNotifier(rec))
	err := c.Get(context.Background(), "/health", nil, nil)

	require.Equal(t, apiclient.KindUnreachable, apiclient.KindOf(err))
	require.Equal(t, "无法连接到股票数据服务", err.Error())
	require.Equal(t, []string{"无法连接到股票数据服务"}, rec.Errors())
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL, apiclient.WithTimeout(20*time.Millisecond), apiclient.WithMessages(apiclient.HistoryMessages))
	err := c.Get(context.Background(), "/health", nil, nil)
	require.Equal(t, apiclient.KindUnreachable, apiclient.KindOf(err))
	require.Equal(t, "网络错误，请检查连接", err.Error())
}

func TestClient_RequestSetup(t *testing.T) {
	t.Run("bad base url", func(t *testing.T) {
		c := apiclient.New("http://[::1")
		err := c.Get(context.Background(), "/health", nil, nil)
		require.Equal(t, apiclient.KindRequestSetup, apiclient.KindOf(err))
		require.Equal(t, "请求配置错误", err.Error())
	})

	t.Run("unencodable body", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{}`)
		c := apiclient.New(srv.URL)
		err := c.Post(context.Background(), "/stocks/batch/latest", map[string]any{"ch": make(chan int)}, nil)
		require.Equal(t, apiclient.KindRequestSetup, apiclient.KindOf(err))
	})

	t.Run("middleware failure", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{}`)
		failing := func(*http.Request) (*http.Request, error) { return nil, errors.New("boom") }
		c := apiclient.New(srv.URL, apiclient.WithRequestMiddleware(failing))
		err := c.Get(context.Background(), "/", nil, nil)
		require.Equal(t, apiclient.KindRequestSetup, apiclient.KindOf(err))
	})
}

func TestClient_EnvelopeUnwrap(t *testing.T) {
	t.Run("data is returned", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"code":200,"message":"Success","data":{"value":"x"}}`)
		var out payload
		require.NoError(t, apiclient.New(srv.URL).Get(context.Background(), "/", nil, &out))
		require.Equal(t, "x", out.Value)
	})

	t.Run("raw payload without data", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"value":"raw"}`)
		var out payload
		require.NoError(t, apiclient.New(srv.URL).Get(context.Background(), "/", nil, &out))
		require.Equal(t, "raw", out.Value)
	})

	t.Run("falsy data falls back to envelope", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"success":true,"data":0,"message":"zero"}`)
		var out map[string]any
		require.NoError(t, apiclient.New(srv.URL).Get(context.Background(), "/", nil, &out))
		require.Equal(t, "zero", out["message"])
		require.Equal(t, float64(0), out["data"])
	})

	t.Run("array payload", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `[1,2,3]`)
		var out []int
		require.NoError(t, apiclient.New(srv.URL).Get(context.Background(), "/", nil, &out))
		require.Equal(t, []int{1, 2, 3}, out)
	})

	t.Run("empty body", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, ``)
		var out payload
		require.NoError(t, apiclient.New(srv.URL).Get(context.Background(), "/", nil, &out))
		require.Empty(t, out.Value)
	})

	t.Run("undecodable payload", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"data":{"value":1}}`)
		var out payload
		err := apiclient.New(srv.URL).Get(context.Background(), "/", nil, &out)
		require.Equal(t, apiclient.KindDecode, apiclient.KindOf(err))
	})
}

func TestClient_EnvelopeRejected(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"success false", `{"success":false,"message":"用户名或密码错误"}`, "用户名或密码错误"},
		{"error true", `{"error":true}`, "请求失败"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, tt.body)
			rec := &notify.Recorder{}
			c := apiclient.New(srv.URL, apiclient.WithNotifier(rec))

			err := c.Get(context.Background(), "/", nil, &payload{})
			require.Equal(t, apiclient.KindRejected, apiclient.KindOf(err))
			require.Equal(t, tt.message, err.Error())
			require.Equal(t, []string{tt.message}, rec.Errors())
		})
	}
}

func TestClient_WithoutUnwrap(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"success":true,"data":{"value":"x"},"message":"ok"}`)
	c := apiclient.New(srv.URL, apiclient.WithoutUnwrap())

	var out apiclient.Envelope[payload]
	require.NoError(t, c.Get(context.Background(), "/", nil, &out))
	require.True(t, out.Success)
	require.Equal(t, "x", out.Data.Value)
	require.Equal(t, "ok", out.Message)
}

func TestClient_RequestShape(t *testing.T) {
	var got *http.Request
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	repo := repofake.NewFakeRepo()
	c := apiclient.New(srv.URL, apiclient.WithRequestMiddleware(apiclient.BearerToken(apiclient.StorageTokenSource(repo))))

	require.NoError(t, c.Get(context.Background(), "/stocks/A/history", url.Values{"days": {"30"}}, nil))
	require.Equal(t, http.MethodGet, got.Method)
	require.Equal(t, "/stocks/A/history", got.URL.Path)
	require.Equal(t, "30", got.URL.Query().Get("days"))
	require.Equal(t, "application/json", got.Header.Get("Content-Type"))
	require.Empty(t, got.Header.Get("Authorization"))
	require.NotEmpty(t, got.Header.Get(apiclient.HeaderRequestID))

	require.NoError(t, repo.Set(storage.KeyToken, "abc"))
	require.NoError(t, c.Put(context.Background(), "/users/profile", map[string]string{"fullName": "Alice"}, nil))
	require.Equal(t, http.MethodPut, got.Method)
	require.Equal(t, "Bearer abc", got.Header.Get("Authorization"))
	require.Equal(t, "Alice", gotBody["fullName"])
}

func TestClient_ResponseMiddleware(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"data":{"value":"x"}}`)
	var seen string
	c := apiclient.New(srv.URL, apiclient.WithResponseMiddleware(
		func(r *apiclient.Response) (*apiclient.Response, error) {
			seen = string(r.Body)
			return r, nil
		},
		func(r *apiclient.Response) (*apiclient.Response, error) {
			return nil, errors.New("rejected by policy")
		},
	))

	err := c.Get(context.Background(), "/", nil, nil)
	require.Equal(t, `{"value":"x"}`, seen)
	require.Equal(t, apiclient.KindRejected, apiclient.KindOf(err))
	require.Equal(t, "请求失败", err.Error())
}

func TestMessageOf(t *testing.T) {
	require.Equal(t, "fallback", apiclient.MessageOf(nil, "fallback"))
	require.Equal(t, "plain", apiclient.MessageOf(errors.New("plain"), "fallback"))
	require.Equal(t, "没有刷新令牌", apiclient.MessageOf(apiclient.NewPreconditionError("没有刷新令牌", nil), "fallback"))
	require.Equal(t, apiclient.KindPrecondition, apiclient.KindOf(apiclient.NewPreconditionError("x", nil)))
	require.Equal(t, "not_found", apiclient.KindNotFound.String())
}
