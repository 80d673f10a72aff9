package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	err1 = errors.New("error 1")
	err2 = errors.New("error 2")
)

func TestErrorChansAdd(t *testing.T) {
	t.Parallel()

	ecs := errorChans{}
	ec1 := newErrorChan("quantize", nil)
	ec2 := newErrorChan("fit", nil)

	var wg sync.WaitGroup

	for _, ec := range []*errorChan{ec1, ec2} {
		wg.Add(1)

		go func() {
			defer wg.Done()
			ecs.add(ec)
		}()
	}

	wg.Wait()
	assert.ElementsMatch(t, []*errorChan{ec1, ec2}, ecs.list)
}

func sendAll(errs ...error) <-chan error {
	c := make(chan error, len(errs))
	for _, err := range errs {
		c <- err
	}

	close(c)

	return c
}

func TestMergeErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		chans []*errorChan
		want  []error
	}{
		"all nil channels": {
			chans: []*errorChan{newErrorChan("a", nil), newErrorChan("b", nil)},
		},
		"closed without errors": {
			chans: []*errorChan{newErrorChan("a", sendAll())},
		},
		"one channel two errors": {
			chans: []*errorChan{newErrorChan("a", nil), newErrorChan("b", sendAll(err1, err2))},
			want:  []error{err1, err2},
		},
		"two channels": {
			chans: []*errorChan{newErrorChan("a", sendAll(err1)), newErrorChan("b", sendAll(err2))},
			want:  []error{err1, err2},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := []error{}
			for err := range mergeErrors(tc.chans...) {
				got = append(got, err)
			}

			require.Len(t, got, len(tc.want))

			sort.Slice(got, func(i, j int) bool {
				return got[i].Error() < got[j].Error()
			})

			for i, want := range tc.want {
				require.ErrorIs(t, got[i], want)
			}
		})
	}
}

func TestMergeErrorsPrefixesStageName(t *testing.T) {
	t.Parallel()

	err := <-mergeErrors(newErrorChan("despeckle", sendAll(err1)))
	assert.EqualError(t, err, "despeckle: error 1")
}

func TestWaitForPipelineCancelsOnFirstError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blocked := make(chan error, 1)

	// this stage only stops once the pipeline context is cancelled
	go func() {
		defer close(blocked)
		<-ctx.Done()
		blocked <- ctx.Err()
	}()

	err := waitForPipeline(cancel,
		newErrorChan("failing", sendAll(err1)),
		newErrorChan("blocked", blocked),
	)
	require.ErrorIs(t, err, err1)
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestWaitForPipelineNoError(t *testing.T) {
	t.Parallel()

	called := false
	err := waitForPipeline(func() { called = true }, newErrorChan("a", sendAll()), newErrorChan("b", nil))
	require.NoError(t, err)
	assert.False(t, called)
}
