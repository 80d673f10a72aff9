package trace

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/askiada/go-autotrace/internal/corner"
	"github.com/askiada/go-autotrace/internal/fit"
	"github.com/askiada/go-autotrace/pkg/bitmap"
	"github.com/askiada/go-autotrace/pkg/pipeline/model"
)

// Options controls every stage of a trace. It is read-only once a trace starts.
type Options struct {
	// BackgroundColor pixels are not traced.
	BackgroundColor *bitmap.Color `json:"background_color,omitempty"`
	// Charcode selects a glyph for font input and has no effect on bitmaps.
	Charcode int `json:"charcode"`
	// ColorCount reduces the image to at most that many colours; 0 keeps every colour.
	ColorCount int `json:"color_count"`

	CornerAlwaysThreshold float64 `json:"corner_always_threshold"`
	CornerSurround        int     `json:"corner_surround"`
	CornerThreshold       float64 `json:"corner_threshold"`
	RemoveAdjacentCorners bool    `json:"remove_adjacent_corners"`
	TangentSurround       int     `json:"tangent_surround"`

	ErrorThreshold         float64 `json:"error_threshold"`
	FilterIterations       int     `json:"filter_iterations"`
	LineReversionThreshold float64 `json:"line_reversion_threshold"`
	LineThreshold          float64 `json:"line_threshold"`

	DespeckleLevel     int     `json:"despeckle_level"`
	DespeckleTightness float64 `json:"despeckle_tightness"`
	// NoiseRemoval sets the despeckle level when DespeckleLevel is 0.
	NoiseRemoval float64 `json:"noise_removal"`

	Centerline        bool    `json:"centerline"`
	PreserveWidth     bool    `json:"preserve_width"`
	WidthWeightFactor float64 `json:"width_weight_factor"`
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		CornerAlwaysThreshold:  60,
		CornerSurround:         4,
		CornerThreshold:        100,
		TangentSurround:        3,
		ErrorThreshold:         2,
		FilterIterations:       4,
		LineReversionThreshold: 0.01,
		LineThreshold:          1,
		DespeckleTightness:     2,
		NoiseRemoval:           0.99,
		WidthWeightFactor:      6,
	}
}

type check struct {
	name string
	ok   bool
}

// Validate fails with ErrOptionOutOfRange on the first option outside its range.
func (o Options) Validate() error {
	checks := []check{
		{"charcode", o.Charcode >= 0 && o.Charcode <= 255},
		{"color_count", o.ColorCount >= 0 && o.ColorCount <= 256},
		{"corner_always_threshold", o.CornerAlwaysThreshold >= 0 && o.CornerAlwaysThreshold <= 180},
		{"corner_surround", o.CornerSurround >= 0},
		{"corner_threshold", o.CornerThreshold >= 0 && o.CornerThreshold <= 180},
		{"tangent_surround", o.TangentSurround >= 1},
		{"error_threshold", o.ErrorThreshold > 0},
		{"filter_iterations", o.FilterIterations >= 0},
		{"line_reversion_threshold", o.LineReversionThreshold >= 0},
		{"line_threshold", o.LineThreshold >= 0},
		{"despeckle_level", o.DespeckleLevel >= 0 && o.DespeckleLevel <= 20},
		{"despeckle_tightness", o.DespeckleTightness >= 0 && o.DespeckleTightness <= 8},
		{"noise_removal", o.NoiseRemoval >= 0 && o.NoiseRemoval <= 1},
		{"width_weight_factor", o.WidthWeightFactor > 0},
	}

	for _, c := range checks {
		if !c.ok {
			return errors.Wrap(ErrOptionOutOfRange, c.name)
		}
	}

	return nil
}

func (o Options) cornerParams() corner.Params {
	return corner.Params{
		Threshold:       o.CornerThreshold,
		AlwaysThreshold: o.CornerAlwaysThreshold,
		Surround:        o.CornerSurround,
		TangentSurround: o.TangentSurround,
		RemoveAdjacent:  o.RemoveAdjacentCorners,
	}
}

func (o Options) fitParams() fit.Params {
	return fit.Params{
		ErrorThreshold:         o.ErrorThreshold,
		FilterIterations:       o.FilterIterations,
		LineThreshold:          o.LineThreshold,
		LineReversionThreshold: o.LineReversionThreshold,
		TangentSurround:        o.TangentSurround,
		PreserveWidth:          o.Centerline && o.PreserveWidth,
		WidthWeightFactor:      o.WidthWeightFactor,
	}
}

type config struct {
	concurrency  int
	pipelineOpts []model.PipelineOption
}

func newConfig(opts ...Option) *config {
	cfg := &config{concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}

	return cfg
}

// Option configures how a trace runs, as opposed to what it computes.
type Option func(*config)

// WithConcurrency sets the number of workers of every parallel stage.
func WithConcurrency(n int) Option {
	return func(c *config) {
		c.concurrency = n
	}
}

// WithPipelineOptions registers options (timings, stage graph) on the stage pipeline.
func WithPipelineOptions(opts ...model.PipelineOption) Option {
	return func(c *config) {
		c.pipelineOpts = append(c.pipelineOpts, opts...)
	}
}
