package pipeline_test

import (
	"context"
	"testing"

	"github.com/askiada/go-autotrace/pkg/pipeline/model"
)

func inputStep(t *testing.T, total int) *model.Step[int] {
	t.Helper()

	inputChan := make(chan int)

	go func() {
		defer close(inputChan)

		for i := range total {
			inputChan <- i
		}
	}()

	return &model.Step[int]{Output: inputChan}
}

func rootFn(total int) func(ctx context.Context, rootChan chan<- int) error {
	return func(ctx context.Context, rootChan chan<- int) error {
		for i := range total {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rootChan <- i:
			}
		}

		return nil
	}
}

func collect(t *testing.T, output <-chan int) <-chan []int {
	t.Helper()

	res := make(chan []int, 1)

	go func() {
		got := []int{}
		for out := range output {
			got = append(got, out)
		}

		res <- got
	}()

	return res
}
