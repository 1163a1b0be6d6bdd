package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "mangapages/pkg/errors"
	"mangapages/pkg/logger"
)

func TestFactorBackoff(t *testing.T) {
	backoff := DefaultFactorBackoff()

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 0},
		{2, 600 * time.Millisecond},
		{3, 1200 * time.Millisecond},
		{4, 2400 * time.Millisecond},
		{5, 4800 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestFactorBackoffCapped(t *testing.T) {
	backoff := &FactorBackoff{Factor: 0.3, MaxDelay: time.Second}
	assert.Equal(t, time.Second, backoff.NextDelay(10))

	uncapped := &FactorBackoff{Factor: 0.3}
	assert.Equal(t, DefaultMaxBackoff, uncapped.NextDelay(20))
}

func TestFactorBackoffZeroFactor(t *testing.T) {
	backoff := &FactorBackoff{}
	assert.Zero(t, backoff.NextDelay(4))
}

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &FactorBackoff{Factor: 0.0005},
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}
}

func TestDoSuccess(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		return nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoRetryThenSuccess(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, testConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	cause := errors.New("persistent error")
	err := Do(func() error {
		attempts++
		return cause
	}, testConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
}

func TestDoNonRetryableError(t *testing.T) {
	attempts := 0
	notFound := &errs.Error{Type: errs.ErrorTypeNotFound, Code: 404, Message: "missing"}
	cfg := testConfig(5)
	cfg.RetryIf = func(err error) bool {
		return errs.TypeOf(err) != errs.ErrorTypeNotFound
	}
	err := Do(func() error {
		attempts++
		return notFound
	}, cfg)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Same(t, notFound, err)
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &FactorBackoff{Factor: 1},
		Context:     ctx,
		Logger:      logger.NewNopLogger(),
	}

	attempts := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := Do(func() error {
		attempts++
		return errors.New("temporary error")
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.Equal(t, 2, attempts)
}

func TestDoLogsBackoffDelays(t *testing.T) {
	log := logger.NewTestLogger()
	cfg := testConfig(3)
	cfg.Backoff = &FactorBackoff{Factor: 0.001}
	cfg.Logger = log

	_ = Do(func() error { return errors.New("fail") }, cfg)

	retries := log.GetMessagesByLevel("WARN")
	require.Len(t, retries, 2)
	assert.EqualValues(t, 0, retries[0].Fields["delay_ms"])
	assert.EqualValues(t, 2, retries[1].Fields["delay_ms"])
	assert.True(t, log.HasMessage("max retry attempts exceeded"))
}

func TestWait(t *testing.T) {
	require.NoError(t, Wait(context.Background(), 0))
	require.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Wait(ctx, 0), context.Canceled)
}
