// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addStage(name string, n int) Stage[int] {
	return Stage[int]{
		Name: name,
		Run: func(_ context.Context, v int) (int, error) {
			return v + n, nil
		},
	}
}

func TestPipeline_ThreadsIntermediateResult(t *testing.T) {
	p := New("adder",
		addStage("plus1", 1),
		addStage("plus10", 10),
		addStage("plus100", 100),
	)

	got, err := p.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 111, got)
}

func TestPipeline_Empty(t *testing.T) {
	p := New[int]("empty")

	got, err := p.Run(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestPipeline_StageError(t *testing.T) {
	boom := errors.New("boom")
	p := New("failing",
		addStage("ok", 1),
		Stage[int]{Name: "bad", Run: func(context.Context, int) (int, error) {
			return 0, boom
		}},
		addStage("unreached", 100),
	)

	_, err := p.Run(context.Background(), 0)
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "bad", stageErr.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_FilterTransformsValue(t *testing.T) {
	double := func(_ context.Context, _ string, v int) (int, error) {
		return v * 2, nil
	}

	p := New("doubling",
		addStage("plus1", 1),
		addStage("plus1-again", 1),
	).WithFilters(double)

	// (0+1)*2 + 1 = 3; no filter after the final stage.
	got, err := p.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestPipeline_FilterStop(t *testing.T) {
	stopAfterFirst := func(_ context.Context, stage string, v int) (int, error) {
		if stage == "plus1" {
			return v + 1000, ErrStop
		}
		return v, nil
	}

	p := New("stopping",
		addStage("plus1", 1),
		addStage("unreached", 1),
	).WithFilters(stopAfterFirst)

	got, err := p.Run(context.Background(), 0)
	require.NoError(t, err, "ErrStop is a graceful exit")
	assert.Equal(t, 1001, got)
}

func TestPipeline_FilterAbort(t *testing.T) {
	abort := errors.New("bad intermediate state")
	failFilter := func(_ context.Context, _ string, v int) (int, error) {
		return v, abort
	}

	p := New("aborting",
		addStage("plus1", 1),
		addStage("unreached", 1),
	).WithFilters(failFilter)

	_, err := p.Run(context.Background(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, abort)
}

func TestPipeline_NoFilterAfterFinalStage(t *testing.T) {
	calls := 0
	counting := func(_ context.Context, _ string, v int) (int, error) {
		calls++
		return v, nil
	}

	p := New("three",
		addStage("a", 1),
		addStage("b", 1),
		addStage("c", 1),
	).WithFilters(counting)

	_, err := p.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "filters run between stages only")
}

func TestPipeline_From(t *testing.T) {
	p := New("adder",
		addStage("plus1", 1),
		addStage("plus10", 10),
		addStage("plus100", 100),
	)

	truncated, err := p.From("plus10")
	require.NoError(t, err)
	assert.Equal(t, []string{"plus10", "plus100"}, truncated.Stages())

	got, err := truncated.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 110, got)

	// Parent unchanged.
	assert.Equal(t, 3, p.Len())
}

func TestPipeline_FromUnknownStage(t *testing.T) {
	p := New("adder", addStage("plus1", 1))

	_, err := p.From("missing")
	require.Error(t, err)

	var unknown *UnknownStageError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Stage)
}

func TestPipeline_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := New("cancelled",
		Stage[int]{Name: "canceller", Run: func(context.Context, int) (int, error) {
			cancel()
			return 1, nil
		}},
		addStage("unreached", 1),
	)

	_, err := p.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
