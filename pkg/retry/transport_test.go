package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "mangapages/pkg/errors"
	"mangapages/pkg/logger"
)

func fastPolicy() Policy {
	p := DefaultPolicy()
	p.Backoff = &FactorBackoff{Factor: 0.001}
	return p
}

func serverHost(t *testing.T, server *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	return u.Host
}

func TestTransportRetriesInternalServerError(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, serverHost(t, server), fastPolicy(), logger.NewNopLogger())}

	resp, err := client.Get(server.URL)
	if resp != nil {
		resp.Body.Close()
	}

	require.Error(t, err)
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
	assert.Equal(t, errs.ErrorTypeServerError, errs.TypeOf(err))
}

func TestTransportRecoversAfterTransientFailure(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, serverHost(t, server), fastPolicy(), logger.NewNopLogger())}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestTransportDoesNotRetryOtherStatuses(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusBadGateway, http.StatusServiceUnavailable} {
		var hits int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(status)
		}))

		client := &http.Client{Transport: NewTransport(nil, serverHost(t, server), fastPolicy(), logger.NewNopLogger())}
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, status, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "status %d", status)
		server.Close()
	}
}

func TestTransportSkipsUnmountedHosts(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, "mangadex.org", fastPolicy(), logger.NewNopLogger())}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

type failingRoundTripper struct {
	calls int
	err   error
}

func (f *failingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	return nil, f.err
}

func TestTransportRetriesNetworkErrors(t *testing.T) {
	base := &failingRoundTripper{err: errors.New("connection refused")}
	transport := NewTransport(base, "", fastPolicy(), logger.NewNopLogger())

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	require.NoError(t, err)

	_, err = transport.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 5, base.calls)
	assert.Equal(t, errs.ErrorTypeNetwork, errs.TypeOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestTransportNetworkErrorsDisabled(t *testing.T) {
	base := &failingRoundTripper{err: errors.New("connection reset")}
	policy := fastPolicy()
	policy.RetryNetworkErrors = false
	transport := NewTransport(base, "", policy, logger.NewNopLogger())

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	require.NoError(t, err)

	_, err = transport.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 1, base.calls)
}

func TestTransportStopsOnCancelledContext(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	policy := DefaultPolicy()
	policy.Backoff = &FactorBackoff{Factor: 3600, MaxDelay: time.Hour}
	client := &http.Client{Transport: NewTransport(nil, serverHost(t, server), policy, logger.NewNopLogger())}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestTransportTimesOutEachAttempt(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	policy := fastPolicy()
	policy.AttemptTimeout = 100 * time.Millisecond
	client := &http.Client{Transport: NewTransport(nil, serverHost(t, server), policy, logger.NewNopLogger())}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestTransportAttemptTimeoutExhaustsRetries(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	policy := fastPolicy()
	policy.AttemptTimeout = 50 * time.Millisecond
	client := &http.Client{Transport: NewTransport(nil, serverHost(t, server), policy, logger.NewNopLogger())}

	_, err := client.Get(server.URL)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeNetwork, errs.TypeOf(err))
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
}

func TestTransportReplaysBody(t *testing.T) {
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if len(bodies) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, serverHost(t, server), fastPolicy(), logger.NewNopLogger())}
	resp, err := client.Post(server.URL, "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"payload", "payload"}, bodies)
}
