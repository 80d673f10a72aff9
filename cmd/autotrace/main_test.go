package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-autotrace/pkg/bitmap"
	"github.com/askiada/go-autotrace/pkg/trace"
	"github.com/askiada/go-autotrace/pkg/vector"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()

	bm, err := bitmap.NewFilled(20, 10, bitmap.RGB(255, 255, 255))
	require.NoError(t, err)
	bm.FillRect(image.Rect(2, 2, 8, 8), bitmap.RGB(255, 0, 0))
	bm.FillRect(image.Rect(12, 2, 18, 8), bitmap.RGB(0, 0, 255))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, bm.Image()))

	return buf.Bytes()
}

func writePNG(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "squares.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t), 0o600))

	return path
}

func decodeVector(t *testing.T, data []byte) vector.Vector {
	t.Helper()

	var vec vector.Vector
	require.NoError(t, json.Unmarshal(data, &vec))

	return vec
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	white := bitmap.RGB(255, 255, 255)

	tcs := map[string]struct {
		args  []string
		check func(t *testing.T, c *cli)
	}{
		"defaults": {
			args: []string{"in.png"},
			check: func(t *testing.T, c *cli) {
				assert.Equal(t, trace.DefaultOptions(), c.opts)
				assert.Zero(t, c.concurrency)
			},
		},
		"background": {
			args: []string{"-background-color", "#fff", "in.png"},
			check: func(t *testing.T, c *cli) {
				require.NotNil(t, c.opts.BackgroundColor)
				assert.Equal(t, white, *c.opts.BackgroundColor)
			},
		},
		"fitting": {
			args: []string{"--corner-threshold=80", "-error-threshold", "1.5", "-line-threshold=0.5", "-filter-iterations", "2", "in.png"},
			check: func(t *testing.T, c *cli) {
				assert.InDelta(t, 80, c.opts.CornerThreshold, 0)
				assert.InDelta(t, 1.5, c.opts.ErrorThreshold, 0)
				assert.InDelta(t, 0.5, c.opts.LineThreshold, 0)
				assert.Equal(t, 2, c.opts.FilterIterations)
			},
		},
		"centerline": {
			args: []string{"-centerline", "-preserve-width", "-width-weight-factor", "3", "in.png"},
			check: func(t *testing.T, c *cli) {
				assert.True(t, c.opts.Centerline)
				assert.True(t, c.opts.PreserveWidth)
				assert.InDelta(t, 3, c.opts.WidthWeightFactor, 0)
			},
		},
		"despeckle and colours": {
			args: []string{"-despeckle-level", "5", "-despeckle-tightness", "1", "-color-count", "8", "in.png"},
			check: func(t *testing.T, c *cli) {
				assert.Equal(t, 5, c.opts.DespeckleLevel)
				assert.InDelta(t, 1, c.opts.DespeckleTightness, 0)
				assert.Equal(t, 8, c.opts.ColorCount)
			},
		},
		"run settings": {
			args: []string{"-concurrency", "3", "-timings", "-indent", "-output", "out.json", "-"},
			check: func(t *testing.T, c *cli) {
				assert.Equal(t, 3, c.concurrency)
				assert.True(t, c.timings)
				assert.True(t, c.indent)
				assert.Equal(t, "out.json", c.output)
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, input, err := parseFlags(tc.args, io.Discard)
			require.NoError(t, err)
			assert.Equal(t, tc.args[len(tc.args)-1], input)
			tc.check(t, c)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string][]string{
		"no input":         {},
		"two inputs":       {"a.png", "b.png"},
		"bad colour":       {"-background-color", "nope", "in.png"},
		"bad number":       {"-corner-threshold", "sharp", "in.png"},
		"unknown flag":     {"-colour-count", "3", "in.png"},
		"missing argument": {"-output"},
	}

	for name, args := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var stderr bytes.Buffer
			_, _, err := parseFlags(args, &stderr)
			require.Error(t, err)
			assert.Contains(t, stderr.String(), "usage: autotrace")
		})
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-background-color", "#ffffff", writePNG(t)}, nil, &stdout, &stderr)
	require.NoError(t, err)

	vec := decodeVector(t, stdout.Bytes())
	require.Len(t, vec.Paths, 2)
	assert.Equal(t, bitmap.RGB(255, 0, 0), vec.Paths[0].Color)
	assert.Equal(t, bitmap.RGB(0, 0, 255), vec.Paths[1].Color)
	assert.Equal(t, 20, vec.Width)
	assert.Empty(t, stderr.String())
}

func TestRunFromStdin(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"-background-color", "#fff", "-indent", "-"},
		bytes.NewReader(encodePNG(t)), &stdout, io.Discard)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "\n  \"paths\": [")
	assert.Len(t, decodeVector(t, stdout.Bytes()).Paths, 2)
}

func TestRunWritesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.json")
	graph := filepath.Join(dir, "stages.dot")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-background-color", "#fff",
		"-output", out,
		"-pipeline-graph", graph,
		"-timings",
		"-concurrency", "2",
		writePNG(t),
	}, nil, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, decodeVector(t, data).Paths, 2)

	dot, err := os.ReadFile(graph)
	require.NoError(t, err)
	assert.Contains(t, string(dot), "strict digraph {")
	assert.Contains(t, string(dot), `"quantize" -> "despeckle"`)
	assert.Contains(t, string(dot), `"assemble" -> "end"`)

	assert.Contains(t, stderr.String(), `msg="stage timing" stage=fit items=2`)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	notImage := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("not an image"), 0o600))

	tcs := map[string]struct {
		args []string
		want error
	}{
		"undecodable input": {args: []string{notImage}, want: trace.ErrInvalidInput},
		"option out of range": {
			args: []string{"-despeckle-level", "21", writePNG(t)},
			want: trace.ErrOptionOutOfRange,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := run(context.Background(), tc.args, nil, io.Discard, io.Discard)
			require.ErrorIs(t, err, tc.want)
		})
	}

	err := run(context.Background(), []string{filepath.Join(dir, "missing.png")}, nil, io.Discard, io.Discard)
	require.ErrorIs(t, err, os.ErrNotExist)
}

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true

	return c.err
}

func TestCloseFile(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk full")
	errEarlier := errors.New("encode failed")

	tcs := map[string]struct {
		closeErr error
		prior    error
		want     error
	}{
		"clean close":           {},
		"close failure is kept": {closeErr: errDisk, want: errDisk},
		"earlier error wins":    {closeErr: errDisk, prior: errEarlier, want: errEarlier},
		"earlier error is kept": {prior: errEarlier, want: errEarlier},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := &closer{err: tc.closeErr}
			err := tc.prior
			closeFile(c, "out.json", &err)

			assert.True(t, c.closed)
			if tc.want == nil {
				require.NoError(t, err)

				return
			}
			require.ErrorIs(t, err, tc.want)
			if tc.prior == nil {
				assert.Contains(t, err.Error(), "unable to close out.json")
			}
		})
	}
}
