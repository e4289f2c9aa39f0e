package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

// Breaker guards an outbound dependency. It opens after a run of
// consecutive failures, rejects calls while open, and probes with a
// bounded number of half-open requests before closing again.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	probeLimit       int

	state         CircuitState
	failures      int
	openedAt      time.Time
	probeInFlight int
	probePassed   int
	now           func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	cfg = NormalizeBreakerConfig(cfg)

	return &Breaker{
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		probeLimit:       cfg.ProbeLimit,
		state:            CircuitClosed,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed. Every allowed call must be
// followed by exactly one Observe.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen {
		if b.now().Sub(b.openedAt) < b.openTimeout {
			return ErrCircuitOpen
		}
		b.state = CircuitHalfOpen
		b.probeInFlight = 0
		b.probePassed = 0
	}

	if b.state == CircuitHalfOpen {
		if b.probeInFlight >= b.probeLimit {
			return ErrCircuitOpen
		}
		b.probeInFlight++
	}

	return nil
}

// Observe records the outcome of an allowed call. A nil err counts as
// success.
func (b *Breaker) Observe(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.observeSuccess()
		return
	}
	b.observeFailure()
}

func (b *Breaker) observeSuccess() {
	switch b.state {
	case CircuitClosed:
		b.failures = 0
	case CircuitHalfOpen:
		if b.probeInFlight > 0 {
			b.probeInFlight--
		}
		b.probePassed++
		if b.probePassed >= b.probeLimit && b.probeInFlight == 0 {
			b.state = CircuitClosed
			b.failures = 0
			b.openedAt = time.Time{}
		}
	}
}

func (b *Breaker) observeFailure() {
	switch b.state {
	case CircuitClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.trip()
		}
	case CircuitHalfOpen:
		if b.probeInFlight > 0 {
			b.probeInFlight--
		}
		b.trip()
	case CircuitOpen:
		b.openedAt = b.now()
	}
}

func (b *Breaker) trip() {
	b.state = CircuitOpen
	b.openedAt = b.now()
	b.probeInFlight = 0
	b.probePassed = 0
}

func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitHalfOpen
	}

	return b.state
}
