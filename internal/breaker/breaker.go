// Package breaker guards calls to a remote dependency and serves a canned
// fallback while the dependency is failing.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/sony/gobreaker/v2"
)

var ErrOpen = errors.New("circuit open")

type Breaker[T any] struct {
	name     string
	cb       *gobreaker.CircuitBreaker[T]
	fallback func(error) T
	passes   func(error) bool
	log      *logger.Logger
}

type Option[T any] func(*Breaker[T])

// WithPassThrough lets matching errors reach the caller unchanged without
// counting as a failure.
func WithPassThrough[T any](fn func(error) bool) Option[T] {
	return func(b *Breaker[T]) { b.passes = fn }
}

func WithLogger[T any](log *logger.Logger) Option[T] {
	return func(b *Breaker[T]) { b.log = log }
}

// New opens the circuit after threshold consecutive failures and lets one
// trial call through once openFor has elapsed.
func New[T any](name string, threshold int, openFor time.Duration, fallback func(error) T, opts ...Option[T]) *Breaker[T] {
	if threshold <= 0 {
		threshold = 1
	}
	b := &Breaker[T]{
		name:     name,
		fallback: fallback,
		passes:   func(error) bool { return false },
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.cb = gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || b.passes(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				b.log.Warnf("breaker", "%s opened (was %s)", name, from)
				return
			}
			b.log.Infof("breaker", "%s %s", name, to)
		},
	})
	return b
}

func (b *Breaker[T]) Name() string { return b.name }

func (b *Breaker[T]) State() gobreaker.State { return b.cb.State() }

// Do runs fn unless the circuit is open. On failure or rejection it returns
// the fallback value together with a domain.UnavailableError.
func (b *Breaker[T]) Do(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (T, error) { return fn(ctx) })
	if err == nil || b.passes(err) {
		return res, err
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = ErrOpen
	}
	return b.fallback(err), domain.UnavailableError{Dependency: b.name, Err: err}
}
