package model

// StepType tells which kind of stage a StepInfo describes.
type StepType string

const (
	RootStepType   StepType = "root"
	NormalStepType StepType = "step"
	SinkStepType   StepType = "sink"
)

// StepInfo describes a stage to the pipeline options.
type StepInfo struct {
	Type       StepType
	Name       string
	Concurrent int
}

// StartStep and EndStep are the virtual ends of every pipeline graph.
var (
	StartStep = &Step[any]{Details: &StepInfo{Name: "start"}}
	EndStep   = &Step[any]{Details: &StepInfo{Name: "end"}}
)

// Step is the output side of a stage. Downstream stages read from Output.
type Step[O any] struct {
	Output   chan O
	KeepOpen bool
	Details  *StepInfo
}

// Info returns the step details, or the start step details for a bare channel wrapped
// in a Step without any.
func (s *Step[O]) Info() *StepInfo {
	if s == nil || s.Details == nil {
		return StartStep.Details
	}

	return s.Details
}
