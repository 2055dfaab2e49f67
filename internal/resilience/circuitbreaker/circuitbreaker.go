// Package circuitbreaker guards calls to an unreliable dependency with
// github.com/sony/gobreaker. After enough consecutive failures the circuit
// opens and calls fail with ErrOpen without running; after OpenTimeout a
// limited number of probe calls decide whether it closes again.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned instead of running the call while the circuit is open
// or its half-open probes are used up.
var ErrOpen = errors.New("circuit open")

// Config tunes a Breaker.
type Config struct {
	Name string

	// ConsecutiveFailures trips the circuit.
	ConsecutiveFailures uint32

	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration

	// HalfOpenProbes is how many calls may run while half-open.
	HalfOpenProbes uint32

	// Neutral reports errors that say nothing about the dependency's health,
	// such as the caller cancelling. They neither trip nor reset the count.
	Neutral func(error) bool
}

// ProxyConfig is used for the fallback fetch proxy: three failures in a row
// open the circuit for 30s, and caller cancellation is ignored.
func ProxyConfig() Config {
	return Config{
		Name:                "fallback-proxy",
		ConsecutiveFailures: 3,
		OpenTimeout:         30 * time.Second,
		HalfOpenProbes:      1,
		Neutral: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	}
}

// Breaker is safe for concurrent use.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New builds a Breaker. Zero ConsecutiveFailures and HalfOpenProbes become 1.
func New(cfg Config) *Breaker {
	threshold := max(cfg.ConsecutiveFailures, 1)
	neutral := cfg.Neutral

	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: max(cfg.HalfOpenProbes, 1),
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || (neutral != nil && neutral(err))
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})}
}

// Do runs fn through b. While the circuit rejects calls it returns an error
// wrapping ErrOpen and fn is not called.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	out, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, fmt.Errorf("%w: %s is %s", ErrOpen, b.cb.Name(), b.cb.State())
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// State is "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Open reports whether calls are currently rejected outright.
func (b *Breaker) Open() bool {
	return b.cb.State() == gobreaker.StateOpen
}
