package utils

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// CircuitBreaker guards calls to a flaky collaborator. After too many
// consecutive failures the circuit opens and calls fail fast until the
// cooldown elapses; the first success in the half-open state closes it
// again.
type CircuitBreaker struct {
	name        string
	maxFailures uint32
	cooldown    time.Duration

	mutex    sync.Mutex
	state    State
	failures uint32
	openedAt time.Time
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: 5,
		cooldown:    30 * time.Second,
		state:       StateClosed,
	}
}

func (cb *CircuitBreaker) Execute(ctx context.Context, req func() (interface{}, error)) (interface{}, error) {
	if err := cb.beforeRequest(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := req()
	cb.afterRequest(err == nil)
	return result, err
}

// State returns the current state, accounting for cooldown expiry.
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.refresh(time.Now())
	return cb.state
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.refresh(time.Now())
	if cb.state == StateOpen {
		return ErrCircuitOpen
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if success {
		cb.failures = 0
		cb.state = StateClosed
		return
	}

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		cb.openedAt = time.Now()
	}
}

func (cb *CircuitBreaker) refresh(now time.Time) {
	if cb.state == StateOpen && now.Sub(cb.openedAt) >= cb.cooldown {
		cb.state = StateHalfOpen
	}
}
