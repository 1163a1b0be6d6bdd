package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "mangapages/pkg/errors"
	"mangapages/pkg/logger"
)

// Policy describes how the Transport retries requests
type Policy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// Backoff computes the delay before each retry
	Backoff BackoffStrategy
	// StatusForcelist lists response codes that trigger a retry
	StatusForcelist []int
	// RetryNetworkErrors retries connection and read failures
	RetryNetworkErrors bool
	// AttemptTimeout bounds each attempt separately; zero means no limit
	AttemptTimeout time.Duration
}

// DefaultPolicy retries up to four times on HTTP 500 and network errors
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:         4,
		Backoff:            DefaultFactorBackoff(),
		StatusForcelist:    []int{http.StatusInternalServerError},
		RetryNetworkErrors: true,
	}
}

func (p Policy) retriesStatus(code int) bool {
	for _, s := range p.StatusForcelist {
		if s == code {
			return true
		}
	}
	return false
}

// Transport is an http.RoundTripper that retries requests to a single
// mounted host according to a Policy. Requests to other hosts pass
// straight through to the base transport.
type Transport struct {
	base   http.RoundTripper
	host   string
	policy Policy
	logger logger.Logger
}

// NewTransport mounts policy on requests whose host equals host.
// An empty host applies the policy to every request.
func NewTransport(base http.RoundTripper, host string, policy Policy, log logger.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Transport{
		base:   base,
		host:   strings.ToLower(host),
		policy: policy,
		logger: log,
	}
}

// Policy returns the retry policy mounted on the transport
func (t *Transport) Policy() Policy {
	return t.policy
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.host != "" && !strings.EqualFold(req.URL.Host, t.host) {
		return t.base.RoundTrip(req)
	}

	var resp *http.Response
	sent := false
	parent := req.Context()
	cfg := &Config{
		MaxAttempts: t.policy.MaxRetries + 1,
		Backoff:     t.policy.Backoff,
		RetryIf: func(err error) bool {
			return parent.Err() == nil && t.shouldRetry(err)
		},
		Context: parent,
		Logger:  t.logger.WithField("url", req.URL.String()),
	}

	err := Do(func() error {
		attemptReq := req
		if sent {
			var err error
			if attemptReq, err = rewindRequest(req); err != nil {
				return err
			}
		}
		sent = true

		cancel := context.CancelFunc(func() {})
		if t.policy.AttemptTimeout > 0 {
			var ctx context.Context
			ctx, cancel = context.WithTimeout(parent, t.policy.AttemptTimeout)
			attemptReq = attemptReq.WithContext(ctx)
		}

		r, err := t.base.RoundTrip(attemptReq)
		if err != nil {
			cancel()
			if parent.Err() != nil {
				return err
			}
			return &errs.Error{
				Type:    errs.ErrorTypeNetwork,
				Message: err.Error(),
				Err:     err,
			}
		}

		if t.policy.retriesStatus(r.StatusCode) {
			drainAndClose(r.Body)
			cancel()
			return errs.FromStatus(r.StatusCode, req.URL.String())
		}

		r.Body = &cancelOnClose{ReadCloser: r.Body, cancel: cancel}
		resp = r
		return nil
	}, cfg)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// shouldRetry classifies a failed attempt. Cancellation of the caller's
// context is handled before this is consulted.
func (t *Transport) shouldRetry(err error) bool {
	var apiErr *errs.Error
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.Type {
	case errs.ErrorTypeNetwork:
		return t.policy.RetryNetworkErrors
	default:
		return t.policy.retriesStatus(apiErr.Code)
	}
}

// cancelOnClose releases an attempt's timeout once the response body is closed
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// rewindRequest returns a request that can be sent again, restoring the
// body through GetBody when one is present.
func rewindRequest(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return req, nil
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
