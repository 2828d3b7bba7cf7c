package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is refusing calls.
var ErrOpen = errors.New("circuit breaker open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

type Settings struct {
	Name string
	// FailureThreshold is the number of consecutive failures that trips
	// the breaker.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before allowing a
	// trial call.
	Cooldown time.Duration
}

// CircuitBreaker fails fast once a downstream dependency keeps erroring, so
// the outbox worker does not hammer a broker that is already down.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

func New(settings Settings) *CircuitBreaker {
	return &CircuitBreaker{
		name:      settings.Name,
		threshold: settings.FailureThreshold,
		cooldown:  settings.Cooldown,
		state:     StateClosed,
	}
}

// State reports the breaker's current state, promoting open to half-open
// when the cooldown has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) > cb.cooldown {
		cb.state = StateHalfOpen
	}
	return cb.state
}

// Execute runs fn unless the breaker is open. A success in half-open closes
// the breaker; a failure reopens it immediately.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.currentState() == StateOpen {
		cb.mu.Unlock()
		return ErrOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
			cb.state = StateOpen
		}
		return err
	}

	cb.state = StateClosed
	cb.failures = 0
	return nil
}
