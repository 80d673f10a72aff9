package trace_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-autotrace/pkg/bitmap"
	"github.com/askiada/go-autotrace/pkg/trace"
)

// not parallel: the logger is package state
func TestSetLogger(t *testing.T) {
	assert.False(t, trace.Logger().Enabled(context.Background(), slog.LevelError))

	var buf bytes.Buffer

	trace.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { trace.SetLogger(nil) })

	bm, err := bitmap.NewFilled(10, 10, bitmap.RGB(0, 0, 0))
	require.NoError(t, err)

	_, err = trace.Trace(context.Background(), bm, trace.DefaultOptions())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg=quantized layers=1`)
	assert.Contains(t, out, `msg=fitted`)
	assert.Contains(t, out, `msg="trace complete" width=10 height=10 paths=1`)

	trace.SetLogger(nil)
	assert.False(t, trace.Logger().Enabled(context.Background(), slog.LevelError))
}
