// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunner_RunsAllTasks(t *testing.T) {
	r := New(context.Background(), 4)

	var count atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, r.Go(func(ctx context.Context) error {
			count.Add(1)
			return nil
		}))
	}
	require.NoError(t, r.Wait())
	assert.Equal(t, int32(20), count.Load())
}

func TestRunner_ConcurrencyBound(t *testing.T) {
	const limit = 3
	r := New(context.Background(), limit)

	var inFlight, peak atomic.Int32
	for i := 0; i < 30; i++ {
		require.NoError(t, r.Go(func(ctx context.Context) error {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			return nil
		}))
	}
	require.NoError(t, r.Wait())
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestRunner_FirstErrorWins(t *testing.T) {
	r := New(context.Background(), 1)
	boom := errors.New("boom")

	require.NoError(t, r.Go(func(ctx context.Context) error { return boom }))
	require.NoError(t, r.Go(func(ctx context.Context) error { return errors.New("later") }))

	assert.ErrorIs(t, r.Wait(), boom)
}

func TestRunner_ErrorCancelsContext(t *testing.T) {
	r := New(context.Background(), 2)
	boom := errors.New("boom")

	require.NoError(t, r.Go(func(ctx context.Context) error { return boom }))
	require.NoError(t, r.Go(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("context was not cancelled")
		}
	}))

	assert.ErrorIs(t, r.Wait(), boom)
}

func TestRunner_PanicBecomesError(t *testing.T) {
	r := New(context.Background(), 1)

	require.NoError(t, r.Go(func(ctx context.Context) error {
		panic("kaboom")
	}))

	err := r.Wait()
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestRunner_ClosedAfterWait(t *testing.T) {
	r := New(context.Background(), 1)
	require.NoError(t, r.Wait())

	err := r.Go(func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestForEach(t *testing.T) {
	var sum atomic.Int64
	err := ForEach(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(ctx context.Context, n int) error {
		sum.Add(int64(n))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), sum.Load())
}

func TestForEach_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	items := make([]int, 100)
	err := ForEach(context.Background(), items, 1, func(ctx context.Context, _ int) error {
		if calls.Add(1) == 1 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, calls.Load(), int32(100), "scheduling should stop after the failure")
}

func TestMap(t *testing.T) {
	got, err := Map(context.Background(), []int{1, 2, 3}, 2, func(ctx context.Context, n int) (int, error) {
		return n * n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9}, got)
}

func TestMap_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := Map(context.Background(), []int{1, 2, 3}, 2, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	assert.ErrorIs(t, err, boom)
}
