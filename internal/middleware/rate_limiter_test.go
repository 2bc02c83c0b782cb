package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type RateLimiterTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func TestRateLimiterTestSuite(t *testing.T) {
	suite.Run(t, new(RateLimiterTestSuite))
}

func (s *RateLimiterTestSuite) SetupTest() {
	s.echo = echo.New()
}

func (s *RateLimiterTestSuite) request(handler echo.HandlerFunc, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	s.NoError(handler(c))
	return rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (s *RateLimiterTestSuite) TestBurstThenLimited() {
	handler := RateLimiterWithConfig(2, 4)(okHandler)

	for i := 0; i < 4; i++ {
		rec := s.request(handler, "10.0.0.7:5000")
		s.Equal(http.StatusOK, rec.Code, "request %d is inside the burst", i)
	}

	rec := s.request(handler, "10.0.0.7:5000")
	s.Equal(http.StatusTooManyRequests, rec.Code)
}

func (s *RateLimiterTestSuite) TestClientsAreIndependent() {
	handler := RateLimiterWithConfig(1, 2)(okHandler)

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		rec := s.request(handler, addr)
		s.Equal(http.StatusOK, rec.Code, "fresh client %s has a full bucket", addr)
	}
}

func (s *RateLimiterTestSuite) TestConcurrentSameClient() {
	handler := RateLimiterWithConfig(5, 10)(okHandler)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed, limited := 0, 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := s.request(handler, "10.0.0.9:1234")
			mu.Lock()
			defer mu.Unlock()
			switch rec.Code {
			case http.StatusOK:
				allowed++
			case http.StatusTooManyRequests:
				limited++
			}
		}()
	}
	wg.Wait()

	s.Greater(allowed, 0)
	s.Greater(limited, 0)
	s.Equal(20, allowed+limited)
}

func (s *RateLimiterTestSuite) TestSweepDropsIdleClients() {
	limiters := newClientLimiters(5, 10)
	limiters.allow("stale")
	limiters.allow("fresh")

	limiters.mu.Lock()
	limiters.clients["stale"].lastSeen = time.Now().Add(-5 * time.Minute)
	limiters.mu.Unlock()

	limiters.sweep(3 * time.Minute)

	limiters.mu.Lock()
	defer limiters.mu.Unlock()
	s.NotContains(limiters.clients, "stale")
	s.Contains(limiters.clients, "fresh")
}

func (s *RateLimiterTestSuite) TestClientAddress() {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{"forwarded-for", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "127.0.0.1:1", "203.0.113.5"},
		{"real-ip", map[string]string{"X-Real-IP": "203.0.113.6"}, "127.0.0.1:1", "203.0.113.6"},
		{"forwarded-for wins", map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "203.0.113.6"}, "127.0.0.1:1", "203.0.113.5"},
		{"socket fallback", nil, "203.0.113.7:9999", "203.0.113.7"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			req.RemoteAddr = tc.remoteAddr
			c := s.echo.NewContext(req, httptest.NewRecorder())

			s.Equal(tc.expected, clientAddress(c))
		})
	}
}
