package apiclient

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Envelope is the {success, data, message} wrapper used by the backends.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Response is the received payload handed to ResponseMiddleware.
type Response struct {
	StatusCode int
	Body       []byte
}

// ResponseMiddleware transforms a 2xx response or rejects it with an error.
type ResponseMiddleware func(*Response) (*Response, error)

// UnwrapEnvelope rejects failed envelopes and replaces the body with the
// envelope's data. When data is missing or falsy (null, false, 0, "") the
// whole payload is kept as the body; callers relying on a falsy data value
// receive the envelope instead.
func UnwrapEnvelope(msgs Messages) ResponseMiddleware {
	return func(r *Response) (*Response, error) {
		fields, ok := objectFields(r.Body)
		if !ok {
			return r, nil
		}
		if err := rejected(fields, r.StatusCode, msgs); err != nil {
			return nil, err
		}
		if data, ok := fields["data"]; ok && truthy(data) {
			return &Response{StatusCode: r.StatusCode, Body: data}, nil
		}
		return r, nil
	}
}

// RejectFailedEnvelope rejects failed envelopes and otherwise passes the
// payload through untouched.
func RejectFailedEnvelope(msgs Messages) ResponseMiddleware {
	return func(r *Response) (*Response, error) {
		fields, ok := objectFields(r.Body)
		if !ok {
			return r, nil
		}
		if err := rejected(fields, r.StatusCode, msgs); err != nil {
			return nil, err
		}
		return r, nil
	}
}

// rejected reports success:false or error:true as a KindRejected error.
func rejected(fields map[string]json.RawMessage, status int, msgs Messages) *Error {
	var success, failed bool
	if raw, ok := fields["success"]; ok && json.Unmarshal(raw, &success) == nil && !success {
		failed = true
	}
	var errFlag bool
	if raw, ok := fields["error"]; ok && json.Unmarshal(raw, &errFlag) == nil && errFlag {
		failed = true
	}
	if !failed {
		return nil
	}

	message := msgs.Rejected
	var m string
	if raw, ok := fields["message"]; ok && json.Unmarshal(raw, &m) == nil && m != "" {
		message = m
	}
	return &Error{Kind: KindRejected, Status: status, Message: message}
}

// objectFields decodes body as a JSON object. ok is false for any other shape.
func objectFields(body []byte) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func truthy(raw json.RawMessage) bool {
	v := string(bytes.TrimSpace(raw))
	switch v {
	case "", "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f != 0
	}
	return true
}
