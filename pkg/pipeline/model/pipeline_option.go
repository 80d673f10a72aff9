package model

import "time"

// PipelineOption is notified while a pipeline is built and while it runs.
type PipelineOption interface {
	// New initialises the option when the pipeline is created.
	New() error

	pipelineStepOption
	pipelineSinkOption

	// Finish runs once every stage has stopped without error.
	Finish() error
}

type pipelineStepOption interface {
	// PrepareStep runs when a root step or a step is added to the pipeline.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepOutput runs every time a step is done with one input.
	OnStepOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
}

type pipelineSinkOption interface {
	// PrepareSink runs when a sink is added to the pipeline.
	PrepareSink(parentStep, step *StepInfo) error
	// OnSinkOutput runs every time the sink is done with one input.
	OnSinkOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
	// AfterSink runs when the sink input is exhausted.
	AfterSink(step *StepInfo, totalDuration time.Duration) error
}
