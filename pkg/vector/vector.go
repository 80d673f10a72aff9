// Package vector is the output model of a trace: coloured paths made of cubic Bézier splines.
package vector

import (
	"math"

	"honnef.co/go/curve"

	"github.com/askiada/go-autotrace/pkg/bitmap"
)

// PolynomialDegree tells how a spline was classified by the fitter.
type PolynomialDegree int

const (
	Linear PolynomialDegree = iota + 1
	Quadratic
	Cubic
	ParallelEllipse
	Ellipse
	Circle
)

func (d PolynomialDegree) String() string {
	switch d {
	case Linear:
		return "LINEAR"
	case Quadratic:
		return "QUADRATIC"
	case Cubic:
		return "CUBIC"
	case ParallelEllipse:
		return "PARALLEL_ELLIPSE"
	case Ellipse:
		return "ELLIPSE"
	case Circle:
		return "CIRCLE"
	default:
		return "UNKNOWN"
	}
}

// Curved reports whether the degree describes a bent spline.
func (d PolynomialDegree) Curved() bool {
	return d != Linear
}

// Point is a location in image space, y pointing down. Z is always 0.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pt returns the planar point (x, y).
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Curve drops Z.
func (p Point) Curve() curve.Point {
	return curve.Pt(p.X, p.Y)
}

// FromCurve lifts a planar point.
func FromCurve(p curve.Point) Point {
	return Point{X: p.X, Y: p.Y}
}

// Distance between the planar projections of p and o.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Spline is one cubic Bézier segment. Linear splines repeat their end points as control
// points and quadratic ones are stored degree-elevated, so every spline evaluates as a cubic.
type Spline struct {
	Points    [4]Point         `json:"points"`
	Degree    PolynomialDegree `json:"degree"`
	Linearity float64          `json:"linearity"`
}

// NewSpline builds a spline from a cubic Bézier.
func NewSpline(c curve.CubicBez, degree PolynomialDegree, linearity float64) Spline {
	return Spline{
		Points:    [4]Point{FromCurve(c.P0), FromCurve(c.P1), FromCurve(c.P2), FromCurve(c.P3)},
		Degree:    degree,
		Linearity: linearity,
	}
}

// NewLine returns the linear spline from p0 to p3.
func NewLine(p0, p3 curve.Point, linearity float64) Spline {
	return NewSpline(curve.CubicBez{P0: p0, P1: p0, P2: p3, P3: p3}, Linear, linearity)
}

// Cubic returns the spline as a planar cubic Bézier.
func (s Spline) Cubic() curve.CubicBez {
	return curve.CubicBez{
		P0: s.Points[0].Curve(),
		P1: s.Points[1].Curve(),
		P2: s.Points[2].Curve(),
		P3: s.Points[3].Curve(),
	}
}

func (s Spline) Start() Point { return s.Points[0] }
func (s Spline) End() Point   { return s.Points[3] }

// Evaluate returns the point at parameter t in [0, 1].
func (s Spline) Evaluate(t float64) Point {
	return FromCurve(s.Cubic().Eval(t))
}

// Path is a chain of splines filled or stroked with a single colour.
type Path struct {
	Splines   []Spline     `json:"splines"`
	Color     bitmap.Color `json:"color"`
	Clockwise bool         `json:"clockwise"`
	Open      bool         `json:"open"`
	// StrokeWidth is the mean stroke width of a centerline path traced with width
	// preservation, 0 otherwise.
	StrokeWidth float64 `json:"stroke_width,omitempty"`
}

// Len returns the number of splines.
func (p *Path) Len() int {
	return len(p.Splines)
}

// Contiguous reports whether every spline starts where the previous one ends, and for a
// closed path whether the last spline ends where the first one starts.
func (p *Path) Contiguous(tolerance float64) bool {
	for i := 1; i < len(p.Splines); i++ {
		if p.Splines[i].Start().Distance(p.Splines[i-1].End()) > tolerance {
			return false
		}
	}

	if !p.Open && len(p.Splines) > 0 {
		return p.Splines[len(p.Splines)-1].End().Distance(p.Splines[0].Start()) <= tolerance
	}

	return true
}

// Vector is the result of tracing a bitmap.
type Vector struct {
	Paths             []Path        `json:"paths"`
	Width             int           `json:"width"`
	Height            int           `json:"height"`
	BackgroundColor   *bitmap.Color `json:"background_color,omitempty"`
	Centerline        bool          `json:"centerline"`
	PreserveWidth     bool          `json:"preserve_width"`
	WidthWeightFactor float64       `json:"width_weight_factor"`
}

// Len returns the number of paths.
func (v *Vector) Len() int {
	return len(v.Paths)
}
