package ocr

import (
	"errors"
	"sync"
	"time"
)

var ErrServiceUnavailable = errors.New("ocr service circuit is open")

// BreakerState tracks where the remote OCR breaker is in its lifecycle
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

type BreakerConfig struct {
	MaxFailures     int
	ResetTimeout    time.Duration
	HalfOpenMaxSucc int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:     5,
		ResetTimeout:    30 * time.Second,
		HalfOpenMaxSucc: 3,
	}
}

// Breaker shields the pipeline from a failing OCR service. After
// MaxFailures consecutive errors uploads are rejected immediately until
// ResetTimeout passes, then a half-open probe decides whether to resume.
type Breaker struct {
	mu                sync.RWMutex
	config            BreakerConfig
	state             BreakerState
	failures          int
	halfOpenSuccesses int
	lastFailureTime   time.Time
}

func NewBreaker(config BreakerConfig) *Breaker {
	return &Breaker{config: config, state: BreakerClosed}
}

func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && time.Since(b.lastFailureTime) > b.config.ResetTimeout {
		b.state = BreakerHalfOpen
		b.halfOpenSuccesses = 0
		return true
	}

	return b.state != BreakerOpen
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.config.HalfOpenMaxSucc {
			b.state = BreakerClosed
			b.failures = 0
			b.halfOpenSuccesses = 0
		}
	case BreakerClosed:
		b.failures = 0
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureTime = time.Now()

	switch b.state {
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.halfOpenSuccesses = 0
	case BreakerClosed:
		b.failures++
		if b.failures >= b.config.MaxFailures {
			b.state = BreakerOpen
			b.halfOpenSuccesses = 0
		}
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Breaker) FailureCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.failures
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = BreakerClosed
	b.failures = 0
	b.halfOpenSuccesses = 0
}
