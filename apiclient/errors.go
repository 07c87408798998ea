package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/quant-web-client/internal/errors"
)

// Kind classifies a failed call.
type Kind int

const (
	KindUnknown Kind = iota
	KindParameter
	KindNotFound
	KindServer
	KindUpstreamUnavailable
	KindHTTP
	KindUnreachable
	KindRequestSetup
	KindRejected
	KindDecode
	KindPrecondition
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindParameter:           "parameter",
	KindNotFound:            "not_found",
	KindServer:              "server",
	KindUpstreamUnavailable: "upstream_unavailable",
	KindHTTP:                "http",
	KindUnreachable:         "unreachable",
	KindRequestSetup:        "request_setup",
	KindRejected:            "rejected",
	KindDecode:              "decode",
	KindPrecondition:        "precondition",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single error type returned by every API call. Message is
// human readable and safe to show to the user.
type Error struct {
	Kind    Kind
	Status  int // HTTP status when a response was received
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// MessageOf returns the user facing message of err, or fallback when err
// carries none.
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// NewPreconditionError reports a failure detected before any request was made.
func NewPreconditionError(message string, err error) *Error {
	return &Error{Kind: KindPrecondition, Message: message, Err: err}
}

// Messages are the fallback texts used when the server supplies none.
type Messages struct {
	Parameter   string // 400
	NotFound    string // 404
	Server      string // 500
	Upstream    string // 502
	Generic     string // other statuses, undecodable payloads
	Unreachable string // no response
	Setup       string // request never sent
	Rejected    string // success:false / error:true envelope
}

var StockMessages = Messages{
	Parameter:   "请求参数错误",
	NotFound:    "股票数据不存在",
	Server:      "服务器错误",
	Upstream:    "数据服务暂时不可用",
	Generic:     "请求失败",
	Unreachable: "无法连接到股票数据服务",
	Setup:       "请求配置错误",
	Rejected:    "请求失败",
}

var HistoryMessages = Messages{
	Parameter:   "请求参数错误",
	NotFound:    "股票数据不存在",
	Server:      "服务器错误",
	Upstream:    "数据服务暂时不可用",
	Generic:     "请求失败",
	Unreachable: "网络错误，请检查连接",
	Setup:       "请求配置错误",
	Rejected:    "请求失败",
}

var AuthMessages = Messages{
	Parameter:   "请求参数错误",
	NotFound:    "请求的资源不存在",
	Server:      "服务器错误",
	Upstream:    "服务暂时不可用",
	Generic:     "请求失败",
	Unreachable: "无法连接到服务器",
	Setup:       "请求配置错误",
	Rejected:    "请求失败",
}

// Classify maps a non-2xx response to an *Error. The server message (a
// string "message" or "error" field) wins over the fallback text.
func Classify(status int, body []byte, msgs Messages) *Error {
	e := &Error{Status: status, Err: fmt.Errorf("http status %d", status)}
	switch status {
	case http.StatusBadRequest:
		e.Kind, e.Message = KindParameter, msgs.Parameter
	case http.StatusNotFound:
		e.Kind, e.Message = KindNotFound, msgs.NotFound
	case http.StatusInternalServerError:
		e.Kind, e.Message = KindServer, msgs.Server
	case http.StatusBadGateway:
		e.Kind, e.Message = KindUpstreamUnavailable, msgs.Upstream
	default:
		e.Kind, e.Message = KindHTTP, msgs.Generic
	}
	if m := serverMessage(body); m != "" {
		e.Message = m
	}
	return e
}

func serverMessage(body []byte) string {
	fields, ok := objectFields(body)
	if !ok {
		return ""
	}
	for _, name := range []string{"message", "error"} {
		var s string
		if raw, ok := fields[name]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}
