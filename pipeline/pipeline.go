// SPDX-License-Identifier: MIT

// Package pipeline chains a series of stage functions and dispatches them as
// a unit, feeding each stage the result of the previous one. Transition
// filters run between stages and may transform the intermediate value, stop
// the pipeline gracefully, or abort it.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/genutil/log"
)

// ErrStop is returned by a transition filter to signal that the pipeline
// should exit gracefully with the filter's returned value as the result.
var ErrStop = errors.New("pipeline: stop")

// Stage is a named step in a pipeline.
type Stage[T any] struct {
	Name string
	Run  func(ctx context.Context, v T) (T, error)
}

// Filter runs between stages. It receives the name of the stage that just
// completed and the intermediate value, and returns the (possibly
// transformed) value. Returning ErrStop ends the pipeline successfully with
// the returned value; any other error aborts the pipeline.
type Filter[T any] func(ctx context.Context, stage string, v T) (T, error)

// StageError wraps an error returned by a stage with the stage name.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// UnknownStageError reports a stage name that is not part of the pipeline.
type UnknownStageError struct {
	Stage string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("stage %q is not defined in the pipeline", e.Stage)
}

// Pipeline is an ordered sequence of stages with optional transition filters.
type Pipeline[T any] struct {
	name    string
	stages  []Stage[T]
	filters []Filter[T]
}

// New creates a pipeline with the given display name and stages.
func New[T any](name string, stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{name: name, stages: stages}
}

// WithFilters returns a copy of the pipeline with the given transition
// filters appended.
func (p *Pipeline[T]) WithFilters(filters ...Filter[T]) *Pipeline[T] {
	clone := *p
	clone.filters = append(append([]Filter[T]{}, p.filters...), filters...)
	return &clone
}

// Len returns the number of stages.
func (p *Pipeline[T]) Len() int { return len(p.stages) }

// Run executes the stages in order, threading the intermediate value through
// each one. Context cancellation is checked between stages. A pipeline with
// no stages returns the input unchanged.
func (p *Pipeline[T]) Run(ctx context.Context, in T) (T, error) {
	logger := log.WithComponentFromContext(ctx, "pipeline")
	v := in

	for i, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return v, err
		}

		logger.Debug().
			Str("pipeline", p.name).
			Str(log.FieldStage, stage.Name).
			Msg("running stage")

		var err error
		v, err = stage.Run(ctx, v)
		if err != nil {
			return v, &StageError{Stage: stage.Name, Err: err}
		}

		if i == len(p.stages)-1 {
			break
		}

		v, err = p.applyFilters(ctx, stage.Name, v)
		if errors.Is(err, ErrStop) {
			logger.Debug().
				Str("pipeline", p.name).
				Str(log.FieldStage, stage.Name).
				Msg("transition filter stopped pipeline")
			return v, nil
		}
		if err != nil {
			logger.Warn().Err(err).
				Str("pipeline", p.name).
				Str(log.FieldStage, stage.Name).
				Msg("transition filter aborted pipeline")
			return v, fmt.Errorf("transition after stage %q: %w", stage.Name, err)
		}
	}

	return v, nil
}

func (p *Pipeline[T]) applyFilters(ctx context.Context, stage string, v T) (T, error) {
	for _, filter := range p.filters {
		var err error
		v, err = filter(ctx, stage, v)
		if err != nil {
			return v, err
		}
	}
	return v, nil
}

// From returns a pipeline truncated to start at the named stage. The
// truncated pipeline shares the parent's filters.
func (p *Pipeline[T]) From(stageName string) (*Pipeline[T], error) {
	for i, stage := range p.stages {
		if stage.Name == stageName {
			return &Pipeline[T]{
				name:    p.name,
				stages:  p.stages[i:],
				filters: p.filters,
			}, nil
		}
	}
	return nil, &UnknownStageError{Stage: stageName}
}

// Stages returns the stage names in execution order.
func (p *Pipeline[T]) Stages() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name
	}
	return names
}
