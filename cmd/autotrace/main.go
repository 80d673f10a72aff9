// Command autotrace traces a raster image and prints the resulting vector as JSON.
//
//	autotrace [flags] input.png > output.json
//
// The input may be "-" to read from stdin. Every trace option has a flag of the same name,
// with dashes instead of underscores.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/askiada/go-autotrace/pkg/bitmap"
	"github.com/askiada/go-autotrace/pkg/pipeline/drawer"
	"github.com/askiada/go-autotrace/pkg/pipeline/measure"
	"github.com/askiada/go-autotrace/pkg/pipeline/model"
	"github.com/askiada/go-autotrace/pkg/trace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}

	if err != nil {
		stop()
		log.Fatalf("autotrace: %v", err)
	}
}

// colorFlag is an optional colour flag.
type colorFlag struct {
	c *bitmap.Color
}

func (f *colorFlag) String() string {
	if f.c == nil {
		return ""
	}

	return f.c.Hex()
}

func (f *colorFlag) Set(s string) error {
	c, err := bitmap.ParseColor(s)
	if err != nil {
		return err
	}

	f.c = &c

	return nil
}

type cli struct {
	opts        trace.Options
	background  colorFlag
	output      string
	graphOutput string
	timings     bool
	verbose     bool
	indent      bool
	concurrency int
}

func parseFlags(args []string, stderr io.Writer) (*cli, string, error) {
	c := &cli{opts: trace.DefaultOptions()}
	o := &c.opts

	fs := flag.NewFlagSet("autotrace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: autotrace [flags] <image|->\n\nflags:\n")
		fs.PrintDefaults()
	}

	fs.Var(&c.background, "background-color", "colour left untraced, as #rrggbb")
	fs.IntVar(&o.Charcode, "charcode", o.Charcode, "glyph to trace from a font input (ignored for images)")
	fs.IntVar(&o.ColorCount, "color-count", o.ColorCount, "reduce the image to at most this many colours, 0 keeps them all")
	fs.Float64Var(&o.CornerAlwaysThreshold, "corner-always-threshold", o.CornerAlwaysThreshold, "angle in degrees below which a point is always a corner")
	fs.IntVar(&o.CornerSurround, "corner-surround", o.CornerSurround, "points considered on each side of a corner candidate")
	fs.Float64Var(&o.CornerThreshold, "corner-threshold", o.CornerThreshold, "angle in degrees below which a point may be a corner")
	fs.BoolVar(&o.RemoveAdjacentCorners, "remove-adjacent-corners", o.RemoveAdjacentCorners, "drop corners next to another corner")
	fs.IntVar(&o.TangentSurround, "tangent-surround", o.TangentSurround, "points used to estimate a tangent")
	fs.Float64Var(&o.ErrorThreshold, "error-threshold", o.ErrorThreshold, "largest distance in pixels between a point and its spline")
	fs.IntVar(&o.FilterIterations, "filter-iterations", o.FilterIterations, "smoothing passes before fitting")
	fs.Float64Var(&o.LineReversionThreshold, "line-reversion-threshold", o.LineReversionThreshold, "curves straighter than this become lines")
	fs.Float64Var(&o.LineThreshold, "line-threshold", o.LineThreshold, "point runs closer than this to their chord become lines")
	fs.IntVar(&o.DespeckleLevel, "despeckle-level", o.DespeckleLevel, "remove regions smaller than this many pixels, 0 to use noise-removal")
	fs.Float64Var(&o.DespeckleTightness, "despeckle-tightness", o.DespeckleTightness, "how ragged a small region may be before it is removed")
	fs.Float64Var(&o.NoiseRemoval, "noise-removal", o.NoiseRemoval, "despeckle strength in [0, 1] when despeckle-level is 0")
	fs.BoolVar(&o.Centerline, "centerline", o.Centerline, "trace the centre of strokes instead of their outline")
	fs.BoolVar(&o.PreserveWidth, "preserve-width", o.PreserveWidth, "keep the stroke width of centerline paths")
	fs.Float64Var(&o.WidthWeightFactor, "width-weight-factor", o.WidthWeightFactor, "how much wide strokes relax the fitting error")

	fs.StringVar(&c.output, "output", "", "write the vector to this file instead of stdout")
	fs.BoolVar(&c.indent, "indent", false, "indent the JSON output")
	fs.IntVar(&c.concurrency, "concurrency", 0, "workers per stage, 0 for one per CPU")
	fs.StringVar(&c.graphOutput, "pipeline-graph", "", "write the stage graph in DOT format to this file")
	fs.BoolVar(&c.timings, "timings", false, "log the time spent in every stage")
	fs.BoolVar(&c.verbose, "v", false, "log every stage at debug level")

	err := fs.Parse(args)
	if err != nil {
		return nil, "", err
	}

	if fs.NArg() != 1 {
		fs.Usage()

		return nil, "", errors.Errorf("expected one input image, got %d arguments", fs.NArg())
	}

	c.opts.BackgroundColor = c.background.c

	return c, fs.Arg(0), nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	c, input, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if c.verbose {
		trace.SetLogger(logger)
		defer trace.SetLogger(nil)
	}

	bm, err := readBitmap(input, stdin)
	if err != nil {
		return err
	}

	options := []trace.Option{}
	if c.concurrency > 0 {
		options = append(options, trace.WithConcurrency(c.concurrency))
	}

	var msr measure.Measure
	if c.timings || c.graphOutput != "" {
		msr = measure.NewDefaultMeasure()
	}

	pipeOpts := []model.PipelineOption{}
	if msr != nil {
		pipeOpts = append(pipeOpts, measure.PipelineMeasure(msr))
	}

	if c.graphOutput != "" {
		f, createErr := os.Create(c.graphOutput)
		if createErr != nil {
			return errors.Wrap(createErr, "unable to create pipeline graph file")
		}
		defer closeFile(f, c.graphOutput, &err)

		pipeOpts = append(pipeOpts, drawer.PipelineDrawer(drawer.NewDOTDrawer(f), msr))
	}

	if len(pipeOpts) > 0 {
		options = append(options, trace.WithPipelineOptions(pipeOpts...))
	}

	vec, err := trace.Trace(ctx, bm, c.opts, options...)
	if err != nil {
		return err
	}

	if c.timings {
		for _, st := range measure.Summary(msr) {
			logger.Info("stage timing",
				"stage", st.Name,
				"items", st.Items,
				"average", st.Average,
				"total", st.Total,
			)
		}
	}

	return writeVector(vec, c.output, c.indent, stdout)
}

func readBitmap(input string, stdin io.Reader) (_ *bitmap.Bitmap, err error) {
	r := stdin
	if input != "-" {
		f, openErr := os.Open(input)
		if openErr != nil {
			return nil, errors.Wrap(openErr, "unable to open input image")
		}
		defer closeFile(f, input, &err)

		r = f
	}

	bm, _, err := bitmap.Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", input)
	}

	return bm, nil
}

func writeVector(vec any, output string, indent bool, stdout io.Writer) (err error) {
	w := stdout
	if output != "" {
		f, createErr := os.Create(output)
		if createErr != nil {
			return errors.Wrap(createErr, "unable to create output file")
		}
		defer closeFile(f, output, &err)

		w = f
	}

	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}

	err = enc.Encode(vec)
	if err != nil {
		return errors.Wrap(err, "unable to encode vector")
	}

	return nil
}

// closeFile closes c and, unless *errp already holds an error, reports the close failure
// through it. A written file is only complete once it is closed.
func closeFile(c io.Closer, name string, errp *error) {
	closeErr := c.Close()
	if closeErr != nil && *errp == nil {
		*errp = errors.Wrapf(closeErr, "unable to close %s", name)
	}
}
