// SPDX-License-Identifier: MIT

// Package iterx provides helpers for working with iterators: batching,
// filtering, mapping, and flattening of nested sequences.
package iterx

import "iter"

// Batch regroups seq into slices of up to n elements. The final batch may be
// shorter. Batch panics if n is not positive.
func Batch[V any](seq iter.Seq[V], n int) iter.Seq[[]V] {
	if n <= 0 {
		panic("iterx: batch size must be positive")
	}
	return func(yield func([]V) bool) {
		batch := make([]V, 0, n)
		for v := range seq {
			batch = append(batch, v)
			if len(batch) == n {
				if !yield(batch) {
					return
				}
				batch = make([]V, 0, n)
			}
		}
		if len(batch) > 0 {
			yield(batch)
		}
	}
}

// Filter yields the elements of seq for which pred returns true.
func Filter[V any](seq iter.Seq[V], pred func(V) bool) iter.Seq[V] {
	return func(yield func(V) bool) {
		for v := range seq {
			if pred(v) && !yield(v) {
				return
			}
		}
	}
}

// Map yields fn applied to each element of seq.
func Map[In, Out any](seq iter.Seq[In], fn func(In) Out) iter.Seq[Out] {
	return func(yield func(Out) bool) {
		for v := range seq {
			if !yield(fn(v)) {
				return
			}
		}
	}
}

// Flatten yields the elements of each inner sequence in order.
func Flatten[V any](seq iter.Seq[iter.Seq[V]]) iter.Seq[V] {
	return func(yield func(V) bool) {
		for inner := range seq {
			for v := range inner {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// FlattenFunc expands every element of seq into a sub-sequence and yields
// the sub-sequences' elements in order. Useful when each top-level item
// produces several derived items, e.g. a parent row with related rows.
func FlattenFunc[In, Out any](seq iter.Seq[In], expand func(In) iter.Seq[Out]) iter.Seq[Out] {
	return func(yield func(Out) bool) {
		for v := range seq {
			for out := range expand(v) {
				if !yield(out) {
					return
				}
			}
		}
	}
}

// Of returns a sequence over the given values.
func Of[V any](vals ...V) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range vals {
			if !yield(v) {
				return
			}
		}
	}
}

// FirstNonZero returns the first value that is not the zero value of T, or
// the zero value if all are.
func FirstNonZero[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

// IndexOf returns the index of the first element matching pred, or -1 and
// false if none matches.
func IndexOf[S ~[]E, E any](s S, pred func(E) bool) (int, bool) {
	for i, v := range s {
		if pred(v) {
			return i, true
		}
	}
	return -1, false
}

// IndicesWhere returns the indices of all elements matching pred.
func IndicesWhere[S ~[]E, E any](s S, pred func(E) bool) []int {
	var out []int
	for i, v := range s {
		if pred(v) {
			out = append(out, i)
		}
	}
	return out
}
