// Package trace converts a bitmap into coloured vector paths.
//
// A trace runs as a pipeline of stages: the bitmap is split into one layer per colour,
// every layer is despeckled, optionally thinned to its skeleton, outlined, and each outline
// is cut at its corners and fitted with splines. The fitted paths are finally ordered so
// that containers come before what they contain.
package trace

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-autotrace/internal/corner"
	"github.com/askiada/go-autotrace/internal/despeckle"
	"github.com/askiada/go-autotrace/internal/fit"
	"github.com/askiada/go-autotrace/internal/outline"
	"github.com/askiada/go-autotrace/internal/quantize"
	"github.com/askiada/go-autotrace/internal/raster"
	"github.com/askiada/go-autotrace/internal/thin"
	"github.com/askiada/go-autotrace/pkg/bitmap"
	"github.com/askiada/go-autotrace/pkg/pipeline"
	"github.com/askiada/go-autotrace/pkg/vector"
)

// Stage names, as reported in errors, timings and the stage graph.
const (
	StageQuantize  = "quantize"
	StageDespeckle = "despeckle"
	StageThin      = "thin"
	StageOutline   = "outline"
	StageFit       = "fit"
	StageAssemble  = "assemble"
)

// pathKey is the discovery position of an outline: its layer, then its rank in the layer.
type pathKey struct {
	layer int
	seq   int
}

func (k pathKey) less(o pathKey) bool {
	if k.layer != o.layer {
		return k.layer < o.layer
	}

	return k.seq < o.seq
}

type layerJob struct {
	index    int
	color    bitmap.Color
	mask     *raster.Mask
	skeleton *thin.Skeleton
}

// layerInfo is what the assembler needs to know about a whole layer to nest paths.
type layerInfo struct {
	index int
	mask  *raster.Mask
	// background holds the 4-connected background components of mask.
	background *raster.Labels
	// holeOf maps a background component enclosed by the layer to its hole outline.
	holeOf map[int]int
}

type outlineJob struct {
	key     pathKey
	color   bitmap.Color
	outline outline.Outline
	layer   *layerInfo
}

type fitted struct {
	key     pathKey
	path    vector.Path
	outline outline.Outline
	layer   *layerInfo
}

type tracer struct {
	bm   *bitmap.Bitmap
	opts Options
	cfg  *config
}

// Trace converts bm into a Vector. It fails with ErrInvalidInput on a malformed bitmap and
// with ErrOptionOutOfRange on invalid options; any other failure comes from ctx. There is
// no partial result.
func Trace(ctx context.Context, bm *bitmap.Bitmap, opts Options, options ...Option) (*vector.Vector, error) {
	err := bm.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "unable to trace bitmap")
	}

	err = opts.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "unable to trace bitmap")
	}

	err = ctx.Err()
	if err != nil {
		return nil, errors.Wrap(err, "unable to trace bitmap")
	}

	t := &tracer{bm: bm, opts: opts, cfg: newConfig(options...)}
	start := time.Now()

	results, err := t.run(ctx)
	if err != nil {
		return nil, err
	}

	vec, err := t.assemble(results)
	if err != nil {
		return nil, errors.Wrap(err, "unable to assemble paths")
	}

	Logger().Info("trace complete",
		"width", bm.Width,
		"height", bm.Height,
		"paths", vec.Len(),
		"duration", time.Since(start),
	)

	return vec, nil
}

func (t *tracer) run(ctx context.Context) ([]fitted, error) {
	pipe, err := pipeline.New(ctx, t.cfg.pipelineOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	layers, err := pipeline.AddRootStep(pipe, StageQuantize, t.quantize)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add %s", StageQuantize)
	}

	cleaned, err := pipeline.AddStepOneToOneOrZero(pipe, StageDespeckle, layers, t.despeckle,
		pipeline.StepConcurrency[layerJob](t.cfg.concurrency))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add %s", StageDespeckle)
	}

	if t.opts.Centerline {
		cleaned, err = pipeline.AddStepOneToOne(pipe, StageThin, cleaned, t.thin,
			pipeline.StepConcurrency[layerJob](t.cfg.concurrency))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add %s", StageThin)
		}
	}

	outlines, err := pipeline.AddStepOneToMany(pipe, StageOutline, cleaned, t.outline,
		pipeline.StepConcurrency[outlineJob](t.cfg.concurrency))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add %s", StageOutline)
	}

	paths, err := pipeline.AddStepOneToOne(pipe, StageFit, outlines, t.fit,
		pipeline.StepConcurrency[fitted](t.cfg.concurrency))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add %s", StageFit)
	}

	var results []fitted

	err = pipeline.AddSink(pipe, StageAssemble, paths, func(_ context.Context, f fitted) error {
		results = append(results, f)

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add %s", StageAssemble)
	}

	err = pipe.Run()
	if err != nil {
		return nil, errors.Wrap(err, "unable to run trace pipeline")
	}

	return results, nil
}

func (t *tracer) quantize(ctx context.Context, out chan<- layerJob) error {
	layers := quantize.Quantize(t.bm, t.opts.ColorCount, t.opts.BackgroundColor)
	Logger().Debug("quantized", "layers", len(layers), "color_count", t.opts.ColorCount)

	for i, l := range layers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- layerJob{index: i, color: l.Color, mask: l.Mask}:
		}
	}

	return nil
}

// despeckle drops layers left without any pixel.
func (t *tracer) despeckle(_ context.Context, job layerJob) (layerJob, bool, error) {
	level := despeckle.Level(t.opts.DespeckleLevel, t.opts.NoiseRemoval)
	job.mask = despeckle.Despeckle(job.mask, level, t.opts.DespeckleTightness)

	if job.mask.Empty() {
		Logger().Debug("layer despeckled away", "layer", job.index, "color", job.color.String())

		return job, false, nil
	}

	return job, true, nil
}

func (t *tracer) thin(_ context.Context, job layerJob) (layerJob, error) {
	job.skeleton = thin.Thin(job.mask, t.opts.PreserveWidth)

	return job, nil
}

func (t *tracer) outline(_ context.Context, job layerJob) ([]outlineJob, error) {
	info := &layerInfo{index: job.index, mask: job.mask}

	var outlines []outline.Outline
	if job.skeleton != nil {
		outlines = outline.TraceSkeleton(job.skeleton)
	} else {
		outlines = outline.Trace(job.mask)
		info.background = raster.Holes(job.mask)
		info.holeOf = make(map[int]int)

		for seq, o := range outlines {
			if o.Hole {
				info.holeOf[info.background.At(o.Outside.X, o.Outside.Y)] = seq
			}
		}
	}

	Logger().Debug("outlined", "layer", job.index, "color", job.color.String(), "outlines", len(outlines))

	jobs := make([]outlineJob, len(outlines))
	for seq, o := range outlines {
		jobs[seq] = outlineJob{
			key:     pathKey{layer: job.index, seq: seq},
			color:   job.color,
			outline: o,
			layer:   info,
		}
	}

	return jobs, nil
}

func (t *tracer) fit(_ context.Context, job outlineJob) (fitted, error) {
	o := job.outline
	corners := corner.Detect(o.Points, o.Closed, t.opts.cornerParams())
	splines := fit.FitOutline(o.Points, corners, o.Closed, o.Widths, t.opts.fitParams())
	splines = fit.Classify(splines, o.Closed, t.opts.ErrorThreshold)

	path := vector.Path{
		Splines:   splines,
		Color:     job.color,
		Clockwise: o.Clockwise,
		Open:      !o.Closed,
	}

	if t.opts.Centerline && t.opts.PreserveWidth && len(o.Widths) > 0 {
		var sum float64
		for _, w := range o.Widths {
			sum += w
		}

		path.StrokeWidth = sum / float64(len(o.Widths))
	}

	Logger().Debug("fitted",
		"layer", job.key.layer,
		"outline", job.key.seq,
		"points", o.Len(),
		"corners", len(corner.Indices(corners)),
		"splines", len(splines),
	)

	return fitted{key: job.key, path: path, outline: o, layer: job.layer}, nil
}
