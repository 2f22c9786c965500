package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// RateLimiter is charged once per attempt: WaitIfNeeded before dispatch and
// RecordRequest after it, whether or not the attempt succeeded.
type RateLimiter interface {
	WaitIfNeeded(ctx context.Context) error
	RecordRequest(ctx context.Context)
}

type noopLimiter struct{}

func (noopLimiter) WaitIfNeeded(context.Context) error { return nil }
func (noopLimiter) RecordRequest(context.Context)      {}

// RequestOptions are the per-call parts of a request.
type RequestOptions struct {
	Query   url.Values
	Body    interface{}       // JSON-encoded when non-nil
	Headers map[string]string // override the defaults on conflict
	Timeout time.Duration     // overrides the configured timeout when > 0
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// JSON decodes the body as an object. Bodies that are not a JSON object
// return an error.
func (r *Response) JSON() (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return nil, err
	}
	return m, nil
}
