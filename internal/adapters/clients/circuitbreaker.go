package clients

import (
	"sync"
	"time"
)

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type CircuitBreakerConfig struct {
	// MaxFailures in a row open the breaker.
	MaxFailures int
	// Timeout is how long an open breaker rejects before letting probes in.
	Timeout time.Duration
	// HalfOpenLimit is both the number of concurrent probes and the number of
	// probe successes needed to close again.
	HalfOpenLimit int
}

// CircuitBreaker makes a dead quotes API fail fast, so widgets fall back
// immediately instead of waiting out the client timeout on every fetch.
//
//	closed    --MaxFailures failures-->  open
//	open      --Timeout elapsed------->  half-open
//	half-open --HalfOpenLimit successes-> closed
//	half-open --any failure----------->  open
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    State
	streak   int // consecutive failures when closed, successes when half-open
	probes   int // probes in flight while half-open
	openedAt time.Time
	notify   func(from, to State)
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// OnStateChange sets a callback run in its own goroutine after each transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.notify = fn
}

// Allow reports whether a call may go out. While half-open it reserves one
// of the probe slots, released by the matching Record call.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.cfg.Timeout {
			return false
		}
		cb.moveTo(StateHalfOpen)
	}
	if cb.state == StateHalfOpen {
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return false
		}
		cb.probes++
	}
	return true
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.streak = 0
	case StateHalfOpen:
		cb.releaseProbe()
		if cb.streak++; cb.streak >= cb.cfg.HalfOpenLimit {
			cb.moveTo(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		if cb.streak++; cb.streak >= cb.cfg.MaxFailures {
			cb.moveTo(StateOpen)
		}
	case StateHalfOpen:
		cb.releaseProbe()
		cb.moveTo(StateOpen)
	}
}

// Abandon releases a call's probe slot without counting it either way. It is
// for calls the caller gave up on, which say nothing about upstream health.
func (cb *CircuitBreaker) Abandon() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.releaseProbe()
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) releaseProbe() {
	if cb.probes > 0 {
		cb.probes--
	}
}

// moveTo requires cb.mu.
func (cb *CircuitBreaker) moveTo(next State) {
	prev := cb.state
	if prev == next {
		return
	}

	cb.state = next
	cb.streak = 0
	switch next {
	case StateOpen:
		cb.openedAt = cb.now()
	case StateHalfOpen, StateClosed:
		cb.probes = 0
	}

	if fn := cb.notify; fn != nil {
		go fn(prev, next)
	}
}
