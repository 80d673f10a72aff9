package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-autotrace/pkg/pipeline/model"
)

// manyFn is the common shape every step function is turned into.
type manyFn[I, O any] func(ctx context.Context, input I) ([]O, error)

func (p *Pipeline) onStepOutput(parent, step *model.StepInfo, iteration, computation time.Duration) error {
	for _, opt := range p.opts {
		err := opt.OnStepOutput(parent, step, iteration, computation)
		if err != nil {
			return errors.Wrap(err, "unable to run step output hook")
		}
	}

	return nil
}

func sequentialFn[I, O any](ctx context.Context, pipe *Pipeline, goIdx int, input *model.Step[I], output *model.Step[O], fn manyFn[I, O]) error {
	parent := input.Info()

	for {
		start := time.Now()

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}

			startFn := time.Now()

			outs, err := fn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}

			endFn := time.Since(startFn)

			for _, out := range outs {
				// check the context again so busy workers stop feeding a cancelled pipeline
				select {
				case <-ctx.Done():
					return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
				case output.Output <- out:
				}
			}

			err = pipe.onStepOutput(parent, output.Details, time.Since(start), endFn)
			if err != nil {
				return err
			}
		}
	}
}

func concurrentFn[I, O any](ctx context.Context, pipe *Pipeline, input *model.Step[I], output *model.Step[O], fn manyFn[I, O]) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(output.Details.Concurrent)

	// every worker stops as soon as one of them fails
	for goIdx := range output.Details.Concurrent {
		errGrp.Go(func() error {
			return sequentialFn(dCtx, pipe, goIdx, input, output, fn)
		})
	}

	return errGrp.Wait()
}

func runStep[I, O any](ctx context.Context, pipe *Pipeline, input *model.Step[I], output *model.Step[O], fn manyFn[I, O]) error {
	if output.Details.Concurrent <= 1 {
		return sequentialFn(ctx, pipe, 0, input, output, fn)
	}

	return concurrentFn(ctx, pipe, input, output, fn)
}

func addStep[I, O any](pipe *Pipeline, name string, input *model.Step[I], fn manyFn[I, O], opts ...StepOption[O]) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	step := newStep(model.NormalStepType, name, opts...)

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(input.Info(), step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare step")
		}
	}

	errC := make(chan error, 1)

	pipe.register(name, errC, func(ctx context.Context) {
		defer close(errC)
		defer close(step.Output)

		err := runStep(ctx, pipe, input, step, fn)
		if err != nil {
			errC <- err
		}
	})

	return step, nil
}

// AddStepOneToOne adds a stage emitting exactly one output per input.
func AddStepOneToOne[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	return addStep(pipe, name, input, func(ctx context.Context, in I) ([]O, error) {
		out, err := oneToOneFn(ctx, in)
		if err != nil {
			return nil, err
		}

		return []O{out}, nil
	}, opts...)
}

// AddStepOneToOneOrZero adds a stage emitting at most one output per input. Inputs for
// which the function reports false are dropped.
func AddStepOneToOneOrZero[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, bool, error), opts ...StepOption[O]) (*model.Step[O], error) {
	return addStep(pipe, name, input, func(ctx context.Context, in I) ([]O, error) {
		out, ok, err := oneToOneFn(ctx, in)
		if err != nil || !ok {
			return nil, err
		}

		return []O{out}, nil
	}, opts...)
}

// AddStepOneToMany adds a stage emitting any number of outputs per input, in slice order.
func AddStepOneToMany[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToManyFn func(context.Context, I) ([]O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	return addStep(pipe, name, input, manyFn[I, O](oneToManyFn), opts...)
}
