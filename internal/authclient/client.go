// Package authclient calls the external auth service that exchanges one-time
// auth codes for a verified player identity. Token issuance and validation
// live entirely on that service; this is only the outbound call.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// ErrRejected is returned when the auth service refuses the code.
var ErrRejected = errors.New("auth code rejected")

// Identity is the verified player the auth service vouches for.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type rejectResponse struct {
	Message string `json:"message"`
}

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VerifyAuthCode posts the code and returns the identity it resolves to.
// A 4xx refusal comes back wrapped around ErrRejected; transient 5xx
// responses retry with backoff.
func (c *Client) VerifyAuthCode(ctx context.Context, code string) (*Identity, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + "/ext_auth/verify_auth_code")
	req.Header.SetContentType("application/json")

	payload, err := json.Marshal(verifyRequest{Code: code})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req.SetBody(payload)

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("auth request failed: %w", err)
			if attempt == attempts {
				return nil, lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		status := resp.StatusCode()
		switch {
		case status >= 200 && status < 300:
			var id Identity
			if err := json.Unmarshal(resp.Body(), &id); err != nil {
				return nil, fmt.Errorf("decode response: %w", err)
			}
			return &id, nil
		case status >= 400 && status < 500:
			var rej rejectResponse
			_ = json.Unmarshal(resp.Body(), &rej)
			if rej.Message == "" {
				rej.Message = fmt.Sprintf("status %d", status)
			}
			return nil, fmt.Errorf("%w: %s", ErrRejected, rej.Message)
		default:
			lastErr = fmt.Errorf("auth service error: status=%d", status)
			if attempt == attempts || !shouldRetryStatus(status) {
				return nil, lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
		}
	}
	return nil, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
