// SPDX-License-Identifier: MIT

// Package pool runs groups of tasks with bounded concurrency. A panicking
// task is converted to an error instead of crashing the process, and the
// group context is cancelled on the first failure.
package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/genutil/log"
)

// ErrClosed is returned by Go after Wait has been called.
var ErrClosed = errors.New("pool: runner already closed")

// PanicError wraps a panic recovered from a task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Runner executes tasks with at most a fixed number running concurrently.
// The zero value is not usable; construct with New.
type Runner struct {
	group  *errgroup.Group
	ctx    context.Context
	closed atomic.Bool
}

// New returns a Runner bound to ctx. maxConcurrency caps the number of
// simultaneously running tasks; zero or negative means unbounded. The first
// task error cancels the context seen by the remaining tasks.
func New(ctx context.Context, maxConcurrency int) *Runner {
	g, ctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}
	return &Runner{group: g, ctx: ctx}
}

// Go schedules fn, blocking while the concurrency limit is saturated. A
// panic inside fn becomes a PanicError result for Wait.
func (r *Runner) Go(fn func(ctx context.Context) error) error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.group.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				logger := log.WithComponent("pool")
				logger.Error().
					Interface("panic", rec).
					Msg("recovered task panic")
				err = &PanicError{Value: rec, Stack: stack}
			}
		}()
		return fn(r.ctx)
	})
	return nil
}

// Wait blocks until all scheduled tasks finish and returns the first error.
// The Runner accepts no further tasks afterwards.
func (r *Runner) Wait() error {
	r.closed.Store(true)
	return r.group.Wait()
}

// ForEach runs fn once per item with at most maxConcurrency invocations in
// flight, stopping early on the first error or context cancellation.
func ForEach[T any](ctx context.Context, items []T, maxConcurrency int, fn func(ctx context.Context, item T) error) error {
	r := New(ctx, maxConcurrency)
	for _, item := range items {
		if err := r.ctx.Err(); err != nil {
			break
		}
		item := item
		if err := r.Go(func(ctx context.Context) error {
			return fn(ctx, item)
		}); err != nil {
			break
		}
	}
	return r.Wait()
}

// Map applies fn to every item with bounded concurrency and returns the
// results in input order. On error the partial results are discarded.
func Map[T, R any](ctx context.Context, items []T, maxConcurrency int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	r := New(ctx, maxConcurrency)
	for i, item := range items {
		i, item := i, item
		if err := r.Go(func(ctx context.Context) error {
			v, err := fn(ctx, item)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		}); err != nil {
			return nil, err
		}
	}
	if err := r.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
