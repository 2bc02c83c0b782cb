package ocr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type BreakerTestSuite struct {
	suite.Suite
	breaker *Breaker
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerTestSuite))
}

func (s *BreakerTestSuite) SetupTest() {
	s.breaker = NewBreaker(BreakerConfig{
		MaxFailures:     3,
		ResetTimeout:    20 * time.Millisecond,
		HalfOpenMaxSucc: 2,
	})
}

func (s *BreakerTestSuite) trip() {
	for i := 0; i < 3; i++ {
		s.breaker.RecordFailure()
	}
}

func (s *BreakerTestSuite) TestStartsClosed() {
	s.Equal(BreakerClosed, s.breaker.State())
	s.True(s.breaker.Allow())
}

func (s *BreakerTestSuite) TestOpensAfterMaxFailures() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.True(s.breaker.Allow(), "still closed below the failure limit")

	s.breaker.RecordFailure()
	s.Equal(BreakerOpen, s.breaker.State())
	s.False(s.breaker.Allow())
}

func (s *BreakerTestSuite) TestSuccessResetsFailureCount() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.breaker.RecordSuccess()

	s.Equal(0, s.breaker.FailureCount())
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.True(s.breaker.Allow(), "the counter restarted after the success")
}

func (s *BreakerTestSuite) TestHalfOpenAfterResetTimeout() {
	s.trip()
	s.False(s.breaker.Allow())

	time.Sleep(30 * time.Millisecond)

	s.True(s.breaker.Allow(), "a probe is allowed after the reset timeout")
	s.Equal(BreakerHalfOpen, s.breaker.State())
}

func (s *BreakerTestSuite) TestHalfOpenClosesAfterEnoughSuccesses() {
	s.trip()
	time.Sleep(30 * time.Millisecond)
	s.True(s.breaker.Allow())

	s.breaker.RecordSuccess()
	s.Equal(BreakerHalfOpen, s.breaker.State())

	s.breaker.RecordSuccess()
	s.Equal(BreakerClosed, s.breaker.State())
	s.Equal(0, s.breaker.FailureCount())
}

func (s *BreakerTestSuite) TestHalfOpenReopensOnFailure() {
	s.trip()
	time.Sleep(30 * time.Millisecond)
	s.True(s.breaker.Allow())

	s.breaker.RecordFailure()
	s.Equal(BreakerOpen, s.breaker.State())
	s.False(s.breaker.Allow())
}

func (s *BreakerTestSuite) TestReset() {
	s.trip()
	s.breaker.Reset()

	s.Equal(BreakerClosed, s.breaker.State())
	s.Equal(0, s.breaker.FailureCount())
	s.True(s.breaker.Allow())
}
