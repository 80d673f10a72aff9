package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-autotrace/pkg/pipeline/model"
)

// Pipeline is a pipeline of steps.
type Pipeline struct {
	ctx       context.Context
	cancel    context.CancelFunc
	errcList  *errorChans
	opts      []model.PipelineOption
	startTime time.Time
	goFn      []func(ctx context.Context)
	started   bool
}

// New creates a new pipeline. Nothing runs until Run is called; ctx bounds the whole run.
func New(ctx context.Context, opts ...model.PipelineOption) (*Pipeline, error) {
	dCtx, cancel := context.WithCancel(ctx)

	pipe := &Pipeline{
		ctx:       dCtx,
		cancel:    cancel,
		errcList:  &errorChans{},
		startTime: time.Now(),
		opts:      opts,
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			cancel()

			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// waitForPipeline drains every error channel. The first error cancels the remaining
// stages and is the one returned.
func waitForPipeline(cancel context.CancelFunc, errs ...*errorChan) error {
	var first error

	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err

			cancel()
		}
	}

	return first
}

// Run starts every stage and waits until all of them have stopped.
func (p *Pipeline) Run() error {
	if p.started {
		return ErrAlreadyStarted
	}

	p.started = true
	p.startTime = time.Now()

	defer p.cancel()

	for _, fn := range p.goFn {
		go fn(p.ctx)
	}

	err := waitForPipeline(p.cancel, p.errcList.list...)
	if err != nil {
		return err
	}

	return p.finishRun()
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

// register adds a stage body. The body owns errC and must close it when done.
func (p *Pipeline) register(name string, errC chan error, fn func(ctx context.Context)) {
	p.errcList.add(newErrorChan(name, errC))
	p.goFn = append(p.goFn, fn)
}
