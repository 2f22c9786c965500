package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/config"
	"whatsapp-catalog-service/internal/metrics"
)

const maxLoggedBody = 500

// Executor sends authenticated Graph API requests with timeouts, rate
// limiting and retries, and turns failures into apierrors types.
type Executor struct {
	httpClient  *http.Client
	accessToken string
	userAgent   string
	timeout     time.Duration
	limiter     RateLimiter
	pacer       *rate.Limiter
	retrier     *Retrier
	logger      *logrus.Entry
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) ExecutorOption {
	return func(e *Executor) { e.httpClient = c }
}

// WithRetrier replaces the retry policy derived from the configuration.
func WithRetrier(r *Retrier) ExecutorOption {
	return func(e *Executor) { e.retrier = r }
}

// NewExecutor builds an executor from a configuration snapshot. A nil
// limiter disables the hourly window.
func NewExecutor(cfg *config.Config, limiter RateLimiter, logger *logrus.Logger, opts ...ExecutorOption) *Executor {
	if limiter == nil {
		limiter = noopLimiter{}
	}
	pacer := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		pacer = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	e := &Executor{
		// per-attempt deadlines come from the request context
		httpClient:  &http.Client{},
		accessToken: cfg.AccessToken,
		userAgent:   cfg.UserAgent,
		timeout:     cfg.RequestTimeout,
		limiter:     limiter,
		pacer:       pacer,
		retrier:     NewRetrier(RetryConfigFrom(cfg)),
		logger:      logger.WithField("component", "executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs method on rawURL. It returns the response for any 2xx
// status, *apierrors.RemoteAPIError for other statuses once retries are
// spent, and *apierrors.TransportError when no status was received.
func (e *Executor) Execute(ctx context.Context, method, rawURL string, opts *RequestOptions) (*Response, error) {
	if e.accessToken == "" {
		return nil, &apierrors.ConfigurationError{Field: "access token", Operation: "call the catalog API"}
	}
	if opts == nil {
		opts = &RequestOptions{}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &apierrors.TransportError{Op: method + " " + rawURL, Err: err}
	}
	if len(opts.Query) > 0 {
		q := u.Query()
		for k, vs := range opts.Query {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}
	op := method + " " + u.Path

	var body []byte
	if opts.Body != nil {
		body, err = json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	var last *Response
	result := e.retrier.Do(ctx, func(ctx context.Context) (int, time.Duration, error) {
		resp, err := e.attempt(ctx, method, u.String(), body, opts)
		last = resp
		if err != nil {
			return 0, 0, err
		}
		return resp.StatusCode, ParseRetryAfter(resp.Header), nil
	})

	log := e.logger.WithFields(logrus.Fields{
		"method":   method,
		"path":     u.Path,
		"attempts": result.Attempts,
	})
	if result.Retries() > 0 {
		log = log.WithField("delays", result.Delays)
		metrics.RecordRetries(result.Retries())
	}

	if result.LastError != nil {
		log.WithError(result.LastError).Error("Catalog API request failed")
		return nil, &apierrors.TransportError{Op: op, Err: result.LastError}
	}
	if last.OK() {
		return last, nil
	}

	var payload map[string]interface{}
	if decoded, err := last.JSON(); err == nil {
		payload = decoded
	}
	apiErr := apierrors.NewRemoteAPIError(last.StatusCode, payload)
	log.WithFields(logrus.Fields{
		"status":    last.StatusCode,
		"exhausted": result.Exhausted,
	}).Warn(apiErr.Message)
	return nil, apiErr
}

// attempt is one dispatch: pace, wait for budget, send, record, read.
func (e *Executor) attempt(ctx context.Context, method, fullURL string, body []byte, opts *RequestOptions) (*Response, error) {
	if err := e.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	if err := e.limiter.WaitIfNeeded(ctx); err != nil {
		return nil, err
	}

	timeout := e.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, fullURL, reqBody)
	if err != nil {
		return nil, &permanentError{err: err}
	}

	req.Header.Set("Authorization", "Bearer "+e.accessToken)
	req.Header.Set("Content-Type", "application/json")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	e.logger.WithFields(logrus.Fields{"method": method, "path": req.URL.Path}).Debug("Sending catalog API request")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	e.limiter.RecordRequest(ctx)
	if err != nil {
		metrics.RecordGraphRequest(method, 0, time.Since(start))
		return nil, err
	}
	metrics.RecordGraphRequest(method, resp.StatusCode, time.Since(start))
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"body":   truncate(respBody, maxLoggedBody),
	}).Debug("Catalog API response")

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
