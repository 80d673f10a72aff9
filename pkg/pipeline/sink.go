package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-autotrace/pkg/pipeline/model"
)

func prepareSink[I any](pipe *Pipeline, name string, input *model.Step[I]) (*model.StepInfo, error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	info := &model.StepInfo{
		Type:       model.SinkStepType,
		Name:       name,
		Concurrent: 1,
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareSink(input.Info(), info)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare sink")
		}
	}

	return info, nil
}

func (p *Pipeline) afterSink(info *model.StepInfo) error {
	for _, opt := range p.opts {
		err := opt.AfterSink(info, time.Since(p.startTime))
		if err != nil {
			return errors.Wrap(err, "unable to run after sink hook")
		}
	}

	return nil
}

func (p *Pipeline) onSinkOutput(parent, info *model.StepInfo, iteration, computation time.Duration) error {
	for _, opt := range p.opts {
		err := opt.OnSinkOutput(parent, info, iteration, computation)
		if err != nil {
			return errors.Wrap(err, "unable to run sink output hook")
		}
	}

	return nil
}

func consumeSink[I any](ctx context.Context, pipe *Pipeline, input *model.Step[I], info *model.StepInfo, sinkFn func(ctx context.Context, input I) error) error {
	for {
		start := time.Now()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-input.Output:
			if !ok {
				return pipe.afterSink(info)
			}

			startFn := time.Now()

			err := sinkFn(ctx, in)
			if err != nil {
				return err
			}

			err = pipe.onSinkOutput(input.Info(), info, time.Since(start), time.Since(startFn))
			if err != nil {
				return err
			}
		}
	}
}

// AddSink adds the final stage, called once per input item.
func AddSink[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	info, err := prepareSink(pipe, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)

	pipe.register(name, errC, func(ctx context.Context) {
		defer close(errC)

		err := consumeSink(ctx, pipe, input, info, sinkFn)
		if err != nil {
			errC <- err
		}
	})

	return nil
}

// AddSinkFromChan adds a final stage that owns the whole input channel.
func AddSinkFromChan[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input <-chan I) error) error {
	info, err := prepareSink(pipe, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)

	pipe.register(name, errC, func(ctx context.Context) {
		defer close(errC)

		err := sinkFn(ctx, input.Output)
		if err == nil {
			err = pipe.afterSink(info)
		}

		if err != nil {
			errC <- err
		}
	})

	return nil
}
