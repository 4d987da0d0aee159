// Package upstream performs outbound GET requests to third-party APIs and
// maps their failures onto the apperr taxonomy.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/neexbeast/clima-rs/internal/apperr"
)

// DefaultTimeout applies when the caller passes a non-positive timeout.
const DefaultTimeout = 10 * time.Second

const (
	maxBodyBytes  = 8 << 20
	maxErrorBytes = 4 << 10
)

// Client is an HTTP client guarded by a circuit breaker. Only transport
// failures and unexpected statuses count against the breaker; 401 and 404
// are answers, not outages. A request abandoned by its own caller never
// counts.
type Client struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// New constructs a Client named after the upstream it talks to.
func New(name string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			IsSuccessful: func(err error) bool {
				var ab *abandonedError
				if errors.As(err, &ab) {
					return true
				}
				kind := apperr.KindOf(err)
				return err == nil || (kind != apperr.KindNetworkFailure && kind != apperr.KindUpstreamError)
			},
		}),
	}
}

// Response is a successful upstream reply.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Get performs a GET request. Non-2xx statuses become *apperr.Error values:
// 401 Unauthorized, 404 NotFound, anything else UpstreamError with the body.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	op := "GET " + redact(rawURL)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.do(ctx, op, rawURL, header)
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedError{err: err}
		}
		return resp, err
	})
	if err != nil {
		var ab *abandonedError
		if errors.As(err, &ab) {
			return nil, ab.err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperr.New(apperr.KindNetworkFailure, op, err)
		}
		return nil, err
	}

	resp, ok := result.(*Response)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", op, result)
	}
	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON body into dst.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, dst any) error {
	resp, err := c.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return apperr.New(apperr.KindUpstreamError, "decoding response from "+redact(rawURL), err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, rawURL string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "creating request for "+op, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.KindNetworkFailure, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, &apperr.Error{Kind: apperr.KindUnauthorized, Op: op, Status: resp.StatusCode}
		case http.StatusNotFound:
			return nil, &apperr.Error{Kind: apperr.KindNotFound, Op: op, Status: resp.StatusCode}
		default:
			return nil, apperr.Upstream(op, resp.StatusCode, string(snippet))
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.New(apperr.KindNetworkFailure, "reading body of "+op, err)
	}

	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// abandonedError marks a failure caused by the caller's context ending
// rather than by the upstream.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

// redact drops the query string, which carries API keys.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
