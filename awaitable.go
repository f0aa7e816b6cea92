package reactive

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Awaitable adapts an Expression into a pull queue: every outcome of the
// expression is handed to exactly one WaitForChange call, in order.
//
// WaitForChange may be called from any goroutine. The expression itself, and
// Dispose, belong to the goroutine of its Context.
type Awaitable[T any] struct {
	expr *Expression[T]

	mu       sync.Mutex
	results  []result[T]
	waiters  []*waiter[T]
	disposed bool
}

type result[T any] struct {
	value T
	err   error
}

type waiter[T any] struct {
	ch chan result[T]
}

// NewAwaitable creates the expression and starts buffering its outcomes,
// starting with the first evaluation. Inside Scope.Run the awaitable, not its
// expression, is added to the running scope, so disposing the scope fails
// the pending waits before the expression is torn down.
func NewAwaitable[T any](rc *Context, fn func() (T, error)) *Awaitable[T] {
	rc = resolve(rc)

	a := &Awaitable[T]{}
	rc.rt.RunWithOwner(nil, func() {
		a.expr = NewExpression(rc, fn,
			func(v T) { a.deliver(result[T]{value: v}) },
			func(err error) {
				if err != nil {
					a.deliver(result[T]{err: err})
				}
			},
		)
	})
	rc.own(a)

	return a
}

// Expression returns the underlying expression.
func (a *Awaitable[T]) Expression() *Expression[T] {
	return a.expr
}

// WaitForChange returns the oldest outcome not yet consumed, waiting for a
// new one when none is buffered. An error from the expression is returned as
// is. When ctx is done first, the wait is withdrawn and an error wrapping
// ErrCanceled is returned; other waiters are not affected. After Dispose it
// returns ErrDisposed.
func (a *Awaitable[T]) WaitForChange(ctx context.Context) (T, error) {
	var zero T

	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return zero, ErrDisposed
	}
	if len(a.results) > 0 {
		r := a.results[0]
		a.results = a.results[1:]
		a.mu.Unlock()
		return r.value, r.err
	}

	w := &waiter[T]{ch: make(chan result[T], 1)}
	a.waiters = append(a.waiters, w)
	a.mu.Unlock()

	select {
	case r := <-w.ch:
		return r.value, r.err
	case <-ctx.Done():
	}

	a.mu.Lock()
	withdrawn := a.withdraw(w)
	a.mu.Unlock()

	if !withdrawn {
		// resolved while we were being canceled, the outcome wins
		r := <-w.ch
		return r.value, r.err
	}

	return zero, fmt.Errorf("%w: %w", ErrCanceled, context.Cause(ctx))
}

// Pending returns the number of blocked WaitForChange calls.
func (a *Awaitable[T]) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.waiters)
}

// Buffered returns the number of outcomes waiting to be consumed.
func (a *Awaitable[T]) Buffered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}

// Dispose disposes the expression, fails every pending wait with ErrDisposed
// and drops every buffered outcome.
func (a *Awaitable[T]) Dispose() {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}
	a.disposed = true
	waiters := a.waiters
	a.waiters = nil
	a.results = nil
	a.mu.Unlock()

	for _, w := range waiters {
		w.ch <- result[T]{err: ErrDisposed}
	}

	a.expr.Dispose()
}

func (a *Awaitable[T]) deliver(r result[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.disposed {
		return
	}

	if len(a.waiters) > 0 {
		w := a.waiters[0]
		a.waiters = a.waiters[1:]
		w.ch <- r
		return
	}

	a.results = append(a.results, r)
}

func (a *Awaitable[T]) withdraw(w *waiter[T]) bool {
	i := slices.Index(a.waiters, w)
	if i < 0 {
		return false
	}

	a.waiters = slices.Delete(a.waiters, i, i+1)
	return true
}
