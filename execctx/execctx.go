// SPDX-License-Identifier: MIT

// Package execctx carries ambient execution state on a context.Context as a
// chain of scopes. Inner scopes shadow outer ones, and a flattened snapshot
// can cross process or goroutine boundaries and be restored on the far side.
package execctx

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ManuGH/genutil/log"
)

type ctxKey struct{}

// scope is one frame in the chain. Frames are immutable once created, so a
// context carrying one may be shared across goroutines.
type scope struct {
	parent *scope
	values map[string]any
}

// KeyNotFoundError reports a key absent from every scope in the chain.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("execution context has no value for key %q", e.Key)
}

// With returns a context with a new scope holding the given key/value pairs.
// kv is interpreted as alternating keys and values; an odd trailing key is
// ignored.
func With(ctx context.Context, kv ...any) context.Context {
	values := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		values[key] = kv[i+1]
	}
	return context.WithValue(ctx, ctxKey{}, &scope{
		parent: current(ctx),
		values: values,
	})
}

func current(ctx context.Context) *scope {
	s, _ := ctx.Value(ctxKey{}).(*scope)
	return s
}

// Value looks key up through the scope chain, innermost first.
func Value(ctx context.Context, key string) (any, error) {
	for s := current(ctx); s != nil; s = s.parent {
		if v, ok := s.values[key]; ok {
			return v, nil
		}
	}
	return nil, &KeyNotFoundError{Key: key}
}

// ValueDefault returns the value for key, or def when absent.
func ValueDefault(ctx context.Context, key string, def any) any {
	if v, err := Value(ctx, key); err == nil {
		return v
	}
	return def
}

// Snapshot flattens the scope chain into a single map, inner scopes winning.
// The result is safe to hand to another goroutine or serialize across a
// process boundary.
func Snapshot(ctx context.Context) map[string]any {
	var chain []*scope
	for s := current(ctx); s != nil; s = s.parent {
		chain = append(chain, s)
	}

	out := make(map[string]any)
	// Outermost first so inner values overwrite.
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].values {
			out[k] = v
		}
	}
	return out
}

// Restore returns a context carrying snapshot as a single scope.
func Restore(ctx context.Context, snapshot map[string]any) context.Context {
	values := make(map[string]any, len(snapshot))
	for k, v := range snapshot {
		values[k] = v
	}
	return context.WithValue(ctx, ctxKey{}, &scope{values: values})
}

// EnsureRequestID returns a context that carries a request ID in both the
// execution scope and the logging context, generating a UUID when none is
// present yet.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := log.RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	ctx = log.ContextWithRequestID(ctx, id)
	return With(ctx, log.FieldRequestID, id), id
}

// EnsureCorrelationID mirrors EnsureRequestID for the correlation ID.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := log.CorrelationIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	ctx = log.ContextWithCorrelationID(ctx, id)
	return With(ctx, log.FieldCorrelationID, id), id
}
