package middleware

import (
	"sync"
	"time"

	"fincoach/internal/errors"
	"fincoach/internal/handlers"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerSecond = 5
	defaultBurst             = 10

	clientIdleTimeout = 3 * time.Minute
	sweepInterval     = time.Minute
)

// clientLimiters keeps one token bucket per client address. Entries idle
// past clientIdleTimeout are swept so the map does not grow with every
// address ever seen.
type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	rps     rate.Limit
	burst   int
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(rps, burst int) *clientLimiters {
	return &clientLimiters{
		clients: make(map[string]*clientEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (l *clientLimiters) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[addr]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[addr] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (l *clientLimiters) sweep(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for addr, entry := range l.clients {
		if time.Since(entry.lastSeen) > idle {
			delete(l.clients, addr)
		}
	}
}

// RateLimiter limits each client to the default rate of 5 req/s, burst 10
func RateLimiter() echo.MiddlewareFunc {
	return RateLimiterWithConfig(defaultRequestsPerSecond, defaultBurst)
}

// RateLimiterWithConfig limits each client address to rps requests per
// second with the given burst. An analysis run is expensive (OCR plus four
// model calls), so the limit sits in front of the whole API.
func RateLimiterWithConfig(rps, burst int) echo.MiddlewareFunc {
	limiters := newClientLimiters(rps, burst)

	go func() {
		for range time.Tick(sweepInterval) {
			limiters.sweep(clientIdleTimeout)
		}
	}()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiters.allow(clientAddress(c)) {
				return handlers.SendError(c, errors.SystemRateLimitExceeded)
			}
			return next(c)
		}
	}
}

// clientAddress prefers proxy-set headers over the socket address
func clientAddress(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Request().Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.RealIP()
}
