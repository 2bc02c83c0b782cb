package agents

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RetryTestSuite struct {
	suite.Suite
	cfg RetryConfig
}

func TestRetrySuite(t *testing.T) {
	suite.Run(t, new(RetryTestSuite))
}

func (s *RetryTestSuite) SetupTest() {
	// Tight delays keep the suite fast
	s.cfg = RetryConfig{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func (s *RetryTestSuite) TestWithRetry_SucceedsFirstTry() {
	calls := 0
	out, err := WithRetry(context.Background(), s.cfg, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	s.NoError(err)
	s.Equal("ok", out)
	s.Equal(1, calls)
}

func (s *RetryTestSuite) TestWithRetry_RecoversAfterTransientError() {
	calls := 0
	out, err := WithRetry(context.Background(), s.cfg, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	s.NoError(err)
	s.Equal("ok", out)
	s.Equal(3, calls)
}

func (s *RetryTestSuite) TestWithRetry_ExhaustsBudget() {
	boom := errors.New("always failing")
	calls := 0
	_, err := WithRetry(context.Background(), s.cfg, func(ctx context.Context) (int, error) {
		calls++
		return 0, boom
	})

	s.ErrorIs(err, boom)
	s.Equal(3, calls, "initial attempt plus MaxRetries")
}

func (s *RetryTestSuite) TestWithRetry_NonRetryableStopsImmediately() {
	calls := 0
	_, err := WithRetry(context.Background(), s.cfg, func(ctx context.Context) (int, error) {
		calls++
		return 0, &CompletionError{StatusCode: http.StatusUnauthorized}
	})

	var completionErr *CompletionError
	s.ErrorAs(err, &completionErr)
	s.Equal(1, calls, "auth errors must not be retried")
}

func (s *RetryTestSuite) TestWithRetry_RetryableStatusesAreRetried() {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway} {
		calls := 0
		_, err := WithRetry(context.Background(), s.cfg, func(ctx context.Context) (int, error) {
			calls++
			return 0, &CompletionError{StatusCode: status}
		})

		s.Error(err)
		s.Equal(3, calls, "status %d should be retried", status)
	}
}

func (s *RetryTestSuite) TestWithRetry_ContextCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(ctx, s.cfg, func(ctx context.Context) (int, error) {
		return 0, errors.New("transient")
	})

	s.ErrorIs(err, context.Canceled)
}

func (s *RetryTestSuite) TestCompletionError_Retryable() {
	s.True((&CompletionError{StatusCode: http.StatusTooManyRequests}).Retryable())
	s.True((&CompletionError{StatusCode: http.StatusServiceUnavailable}).Retryable())
	s.False((&CompletionError{StatusCode: http.StatusBadRequest}).Retryable())
	s.False((&CompletionError{StatusCode: http.StatusUnauthorized}).Retryable())
}
