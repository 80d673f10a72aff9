package pipeline

import "github.com/askiada/go-autotrace/pkg/pipeline/model"

// StepOption configures the output step of a stage.
type StepOption[O any] func(s *model.Step[O])

// StepConcurrency sets how many workers consume the stage input.
func StepConcurrency[O any](concurrent int) StepOption[O] {
	return func(s *model.Step[O]) {
		s.Details.Concurrent = concurrent
	}
}

// StepKeepOpen leaves the root step output open once the root function returns.
// The caller then owns closing it.
func StepKeepOpen[O any]() StepOption[O] {
	return func(s *model.Step[O]) {
		s.KeepOpen = true
	}
}

func newStep[O any](stepType model.StepType, name string, opts ...StepOption[O]) *model.Step[O] {
	step := &model.Step[O]{
		Output: make(chan O),
		Details: &model.StepInfo{
			Type:       stepType,
			Name:       name,
			Concurrent: 1,
		},
	}

	for _, opt := range opts {
		opt(step)
	}

	if step.Details.Concurrent < 1 {
		step.Details.Concurrent = 1
	}

	return step
}
