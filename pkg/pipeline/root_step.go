package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-autotrace/pkg/pipeline/model"
)

// AddRootStep adds a stage producing the pipeline input. stepFn must stop sending once
// ctx is done.
func AddRootStep[O any](pipe *Pipeline, name string, stepFn func(ctx context.Context, rootChan chan<- O) error, opts ...StepOption[O]) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	step := newStep(model.RootStepType, name, opts...)

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(model.StartStep.Details, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare root step")
		}
	}

	errC := make(chan error, 1)

	pipe.register(name, errC, func(ctx context.Context) {
		defer func() {
			if !step.KeepOpen {
				close(step.Output)
			}

			close(errC)
		}()

		err := stepFn(ctx, step.Output)
		if err != nil {
			errC <- err
		}
	})

	return step, nil
}
